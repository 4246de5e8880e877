package liftover

import (
	"context"
	"fmt"
)

// Request is a liftover request. Interval requests use Start and End
// (0-based, half-open). Position and variant requests use the 1-based Pos;
// variant requests also carry Ref and Alt.
type Request struct {
	Direction Direction
	Format    Format
	Chrom     string
	Start     int64
	End       int64
	Pos       int64
	Ref       string
	Alt       string
}

// Result is the outcome of a liftover request.
type Result struct {
	Direction    Direction `json:"hg"`
	Format       Format    `json:"format"`
	Chrom        string    `json:"chrom"`
	Start        int64     `json:"start"`
	End          int64     `json:"end"`
	OutputChrom  string    `json:"output_chrom"`
	OutputStart  int64     `json:"output_start"`
	OutputEnd    int64     `json:"output_end"`
	OutputStrand string    `json:"output_strand"`

	Pos       int64 `json:"pos,omitempty"`
	OutputPos int64 `json:"output_pos,omitempty"`

	Ref       string `json:"ref,omitempty"`
	Alt       string `json:"alt,omitempty"`
	OutputRef string `json:"output_ref,omitempty"`
	OutputAlt string `json:"output_alt,omitempty"`
}

// Transformer runs liftover requests against a Mapper.
type Transformer struct {
	mapper Mapper
}

// NewTransformer creates a transformer backed by m.
func NewTransformer(m Mapper) *Transformer {
	return &Transformer{mapper: m}
}

// Liftover maps the request to the target assembly.
func (t *Transformer) Liftover(ctx context.Context, req Request) (*Result, error) {
	start, end := req.Start, req.End
	switch req.Format {
	case FormatInterval:
	case FormatPosition, FormatVariant:
		if req.Pos < 1 {
			return nil, fmt.Errorf("invalid position %d", req.Pos)
		}
		start, end = req.Pos-1, req.Pos
	default:
		return nil, fmt.Errorf("unknown liftover format %q", req.Format)
	}

	if req.Format == FormatVariant {
		for _, a := range []string{req.Ref, req.Alt} {
			if !ValidAllele(a) {
				return nil, &InvalidAlleleError{Allele: a}
			}
		}
	}

	m, err := t.mapper.MapInterval(ctx, req.Direction, req.Chrom, start, end)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Direction:    req.Direction,
		Format:       req.Format,
		Chrom:        NormalizeChrom(req.Chrom),
		Start:        start,
		End:          end,
		OutputChrom:  m.Chrom,
		OutputStart:  m.Start,
		OutputEnd:    m.End,
		OutputStrand: m.Strand,
	}
	if req.Format == FormatInterval {
		return res, nil
	}

	res.Pos = req.Pos
	res.OutputPos = m.End
	if req.Format == FormatPosition {
		return res, nil
	}

	res.Ref, res.Alt = req.Ref, req.Alt
	res.OutputRef, res.OutputAlt = req.Ref, req.Alt
	if m.Strand == "-" {
		// Alleles were validated above.
		res.OutputRef, _ = ReverseComplement(req.Ref)
		res.OutputAlt, _ = ReverseComplement(req.Alt)
	}
	return res, nil
}
