// Package vcf provides variant types, variant identifier parsing and VCF reading.
package vcf

import "fmt"

// Variant represents a single genomic variant.
type Variant struct {
	Chrom  string // Chromosome name (e.g., "8", "chr8")
	Pos    int64  // 1-based genomic position
	ID     string // Variant identifier (e.g., rs ID)
	Ref    string // Reference allele
	Alt    string // Alternate allele
	Qual   string // Quality column, kept verbatim
	Filter string // Filter status (PASS or filter name)
	Info   string // Raw INFO column
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsComplexIndel returns true if both alleles span more than one base.
// These variants cannot be scored.
func (v *Variant) IsComplexIndel() bool {
	return len(v.Ref) > 1 && len(v.Alt) > 1
}

// IsMultiAllelic returns true if the ALT column lists more than one allele.
func (v *Variant) IsMultiAllelic() bool {
	for i := 0; i < len(v.Alt); i++ {
		if v.Alt[i] == ',' {
			return true
		}
	}
	return false
}

// String formats the variant as chrom-pos-ref-alt.
func (v *Variant) String() string {
	return fmt.Sprintf("%s-%d-%s-%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}
