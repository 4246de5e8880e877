// Package liftover converts coordinates between the hg19 and hg38 assemblies.
//
// The coordinate mapping itself is delegated to a Mapper, normally the UCSC
// liftOver tool. The Transformer adds request handling on top: position
// requests become one-base intervals and variant requests carry their alleles
// across, reverse complemented when the target lies on the minus strand.
package liftover

import (
	"context"
	"fmt"
	"strings"
)

// Direction is the assembly pair of a liftover request.
type Direction string

const (
	HG19ToHG38 Direction = "hg19-to-hg38"
	HG38ToHG19 Direction = "hg38-to-hg19"
)

// Directions lists the supported directions.
var Directions = []Direction{HG19ToHG38, HG38ToHG19}

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown liftover direction %q", s)
}

// Format is the shape of a liftover request.
type Format string

const (
	FormatInterval Format = "interval"
	FormatVariant  Format = "variant"
	FormatPosition Format = "position"
)

// Formats lists the supported formats.
var Formats = []Format{FormatInterval, FormatVariant, FormatPosition}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown liftover format %q", s)
}

// Mapping is an interval on the target assembly.
type Mapping struct {
	Chrom  string
	Start  int64
	End    int64
	Strand string
}

// Mapper maps a 0-based half-open interval to the target assembly of dir.
// A region without a target mapping yields an *UnmappedError.
type Mapper interface {
	MapInterval(ctx context.Context, dir Direction, chrom string, start, end int64) (*Mapping, error)
}

// NormalizeChrom returns chrom with exactly one "chr" prefix.
func NormalizeChrom(chrom string) string {
	return "chr" + strings.ReplaceAll(chrom, "chr", "")
}

// UnmappedError reports a region that has no mapping in the target assembly.
// Reason is the explanation the mapper gave, if any.
type UnmappedError struct {
	Reason string
}

func (e *UnmappedError) Error() string {
	if e.Reason == "" {
		return "Lift over failed for unknown reasons"
	}
	return "Lift over failed: " + e.Reason
}

// ToolError reports a mapping tool that could not be run to completion.
type ToolError struct {
	Err error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("liftOver command failed: %v", e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// InvalidAlleleError reports an allele containing something other than A, C, G, T or N.
type InvalidAlleleError struct {
	Allele string
}

func (e *InvalidAlleleError) Error() string {
	return fmt.Sprintf("invalid allele %q: only A, C, G, T and N are allowed", e.Allele)
}
