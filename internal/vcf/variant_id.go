package vcf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Variant identifier grammar: chr8-140300615-C-G, 8:140300615:C:G, 8 140300615 C G,
// or 8:140300615 C>G. Separators may repeat. Bases must be upper case.
// Mitochondrial contigs may be written M, MT or T.
var reVariantID = regexp.MustCompile(
	`^(?:chr)?(1[0-9]|2[0-2]|[1-9]|X|Y|MT|M|T)` +
		`[-\s:]+` +
		`([0-9]{1,9})` +
		`[-\s:]+` +
		`([ACGT]+)` +
		`[-\s:>]+` +
		`([ACGT]+)$`)

// ParseVariantID parses a free-text variant identifier into a Variant.
// The "chr" prefix is stripped; no other normalization is applied.
func ParseVariantID(s string) (*Variant, error) {
	m := reVariantID.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, &ParseError{Message: fmt.Sprintf("Unable to parse variant: %s", s)}
	}

	pos, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{Message: fmt.Sprintf("Unable to parse variant: %s", s)}
	}

	return &Variant{
		Chrom: m[1],
		Pos:   pos,
		Ref:   m[3],
		Alt:   m[4],
	}, nil
}
