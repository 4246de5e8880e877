// Package scorecache provides range lookups against precomputed SpliceAI score files.
//
// Score files are keyed by masking, variant class and assembly. Each key maps to one
// block-compressed, position-indexed VCF; a key with no backing file is a normal miss.
package scorecache

import (
	"fmt"
	"strings"

	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// Masking selects raw or masked delta scores.
type Masking string

// VariantClass separates single nucleotide variants from insertions and deletions.
type VariantClass string

// Assembly is a UCSC genome assembly name.
type Assembly string

const (
	Raw    Masking = "raw"
	Masked Masking = "masked"

	SNV   VariantClass = "snv"
	Indel VariantClass = "indel"

	HG19 Assembly = "hg19"
	HG38 Assembly = "hg38"
)

// DefaultDistance is the only scoring distance precomputed score files exist for.
const DefaultDistance = 50

// Key identifies one precomputed score file.
type Key struct {
	Masking Masking
	Class   VariantClass
	Build   Assembly
}

// String returns the key in masking.class.assembly form, e.g. "raw.snv.hg38".
func (k Key) String() string {
	return string(k.Masking) + "." + string(k.Class) + "." + string(k.Build)
}

// FileName returns the conventional file name for the key's score file.
func (k Key) FileName() string {
	return "spliceai_scores." + k.String() + ".vcf.gz"
}

// AllKeys returns every key a full deployment can serve.
func AllKeys() []Key {
	var keys []Key
	for _, m := range []Masking{Masked, Raw} {
		for _, c := range []VariantClass{Indel, SNV} {
			for _, a := range []Assembly{HG19, HG38} {
				keys = append(keys, Key{Masking: m, Class: c, Build: a})
			}
		}
	}
	return keys
}

// ParseKey parses a masking.class.assembly string.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid score cache key %q: expected masking.class.assembly", s)
	}
	k := Key{Masking: Masking(parts[0]), Class: VariantClass(parts[1]), Build: Assembly(parts[2])}
	if k.Masking != Raw && k.Masking != Masked {
		return Key{}, fmt.Errorf("invalid score cache key %q: masking must be raw or masked", s)
	}
	if k.Class != SNV && k.Class != Indel {
		return Key{}, fmt.Errorf("invalid score cache key %q: class must be snv or indel", s)
	}
	if k.Build != HG19 && k.Build != HG38 {
		return Key{}, fmt.Errorf("invalid score cache key %q: assembly must be hg19 or hg38", s)
	}
	return k, nil
}

// AssemblyForGenomeVersion maps "37" to hg19 and "38" to hg38.
func AssemblyForGenomeVersion(genomeVersion string) (Assembly, bool) {
	switch genomeVersion {
	case "37":
		return HG19, true
	case "38":
		return HG38, true
	}
	return "", false
}

// DeriveKey derives the score file key for a variant request.
// The second return value is false when mask or genome version fall outside
// their domains; such requests never have a backing file.
func DeriveKey(v *vcf.Variant, genomeVersion string, mask int) (Key, bool) {
	var m Masking
	switch mask {
	case 0:
		m = Raw
	case 1:
		m = Masked
	default:
		return Key{}, false
	}

	a, ok := AssemblyForGenomeVersion(genomeVersion)
	if !ok {
		return Key{}, false
	}

	class := Indel
	if v.IsSNV() {
		class = SNV
	}
	return Key{Masking: m, Class: class, Build: a}, true
}
