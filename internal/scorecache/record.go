package scorecache

import (
	"fmt"
	"strconv"
	"strings"
)

// infoPrefix introduces the packed annotation inside a score record's INFO column.
const infoPrefix = "SpliceAI="

// ScoreFields names the pipe-delimited fields of a packed annotation, allele first.
var ScoreFields = []string{
	"ALLELE", "SYMBOL",
	"DS_AG", "DS_AL", "DS_DG", "DS_DL",
	"DP_AG", "DP_AL", "DP_DG", "DP_DL",
}

// Record is one line of a score file.
type Record struct {
	Chrom  string
	Pos    int64
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	Info   string
}

// ParseRecord parses a tab-delimited score file line.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("score record: expected 8 columns, found %d", len(fields))
	}
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("score record: invalid position %q", fields[1])
	}
	return &Record{
		Chrom:  fields[0],
		Pos:    pos,
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Qual:   fields[5],
		Filter: fields[6],
		Info:   fields[7],
	}, nil
}

// Matches reports whether the record describes exactly the given variant.
func (r *Record) Matches(chrom string, pos int64, ref, alt string) bool {
	return r.Chrom == chrom && r.Pos == pos && r.Ref == ref && r.Alt == alt
}

// Start returns the 0-based start of the reference allele.
func (r *Record) Start() int64 { return r.Pos - 1 }

// End returns the 0-based exclusive end of the reference allele.
func (r *Record) End() int64 { return r.Pos - 1 + int64(len(r.Ref)) }

// Overlaps reports whether the record's reference allele overlaps the
// 0-based half-open interval [start, end).
func (r *Record) Overlaps(start, end int64) bool {
	return r.Start() < end && r.End() > start
}

// Annotations returns the packed annotations carried in the INFO column,
// allele field included. A record covering several genes yields several.
func (r *Record) Annotations() []string {
	for _, kv := range strings.Split(r.Info, ";") {
		if !strings.HasPrefix(kv, infoPrefix) {
			continue
		}
		value := kv[len(infoPrefix):]
		if value == "" || value == "." {
			return nil
		}
		return strings.Split(value, ",")
	}
	return nil
}

// String formats the record as a tab-delimited line without trailing newline.
func (r *Record) String() string {
	return strings.Join([]string{
		r.Chrom, strconv.FormatInt(r.Pos, 10), r.ID, r.Ref, r.Alt, r.Qual, r.Filter, r.Info,
	}, "\t")
}

// StripAllele drops the leading allele field of a packed annotation.
func StripAllele(annotation string) string {
	if i := strings.IndexByte(annotation, '|'); i >= 0 {
		return annotation[i+1:]
	}
	return annotation
}

// Score holds the typed fields of a packed annotation.
type Score struct {
	Allele string
	Symbol string
	DSAG   float64
	DSAL   float64
	DSDG   float64
	DSDL   float64
	DPAG   int
	DPAL   int
	DPDG   int
	DPDL   int
}

// MaxDelta returns the largest of the four delta scores.
func (s Score) MaxDelta() float64 {
	m := s.DSAG
	for _, d := range []float64{s.DSAL, s.DSDG, s.DSDL} {
		if d > m {
			m = d
		}
	}
	return m
}

// ParseScore parses a packed annotation. It accepts both the full
// allele|symbol|... form and the allele-stripped symbol|... form.
func ParseScore(annotation string) (Score, error) {
	fields := strings.Split(annotation, "|")
	var s Score
	switch len(fields) {
	case len(ScoreFields):
		s.Allele = fields[0]
		fields = fields[1:]
	case len(ScoreFields) - 1:
	default:
		return Score{}, fmt.Errorf("packed annotation %q: expected %d or %d fields, found %d",
			annotation, len(ScoreFields), len(ScoreFields)-1, len(fields))
	}
	s.Symbol = fields[0]

	deltas := []*float64{&s.DSAG, &s.DSAL, &s.DSDG, &s.DSDL}
	for i, d := range deltas {
		v, err := strconv.ParseFloat(fields[1+i], 64)
		if err != nil {
			return Score{}, fmt.Errorf("packed annotation %q: invalid %s %q", annotation, ScoreFields[2+i], fields[1+i])
		}
		*d = v
	}

	positions := []*int{&s.DPAG, &s.DPAL, &s.DPDG, &s.DPDL}
	for i, p := range positions {
		v, err := strconv.Atoi(fields[5+i])
		if err != nil {
			return Score{}, fmt.Errorf("packed annotation %q: invalid %s %q", annotation, ScoreFields[6+i], fields[5+i])
		}
		*p = v
	}

	return s, nil
}
