// Package output provides score output formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// TabWriter writes resolved scores in tab-delimited format, one line per
// transcript score.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Uploaded_variation",
			"ID",
			"Source",
			"SYMBOL",
			"DS_AG",
			"DS_AL",
			"DS_DG",
			"DS_DL",
			"DP_AG",
			"DP_AL",
			"DP_DG",
			"DP_DL",
			"MAX_DS",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes every score of a successful result. v is the input record
// the result was resolved from.
func (tw *TabWriter) Write(v *vcf.Variant, res *resolve.Result) error {
	id := v.ID
	if id == "" {
		id = "."
	}

	for _, s := range res.Scores {
		score, err := scorecache.ParseScore(s)
		if err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}

		// Keep the delta fields exactly as the scorer printed them.
		fields := strings.Split(s, "|")
		if len(fields) == len(scorecache.ScoreFields) {
			fields = fields[1:]
		}

		values := make([]string, 0, len(tw.columns))
		values = append(values, v.String(), id, string(res.Source))
		values = append(values, fields...)
		values = append(values, fmt.Sprintf("%.2f", score.MaxDelta()))

		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
