package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

const infoKey = "SpliceAI"

// infoHeader matches the INFO header the SpliceAI tool writes.
var infoHeader = fmt.Sprintf(
	"##INFO=<ID=%s,Number=.,Type=String,Description=\"SpliceAIv1.3 variant annotation. "+
		"These include delta scores (DS) and delta positions (DP) for acceptor gain (AG), "+
		"acceptor loss (AL), donor gain (DG), and donor loss (DL). Format: %s\">",
	infoKey, strings.Join(scorecache.ScoreFields, "|"))

// VCFWriter writes the input records back out with a SpliceAI INFO field.
// Records without scores are written unannotated.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with the SpliceAI INFO
// line inserted before #CHROM. An existing SpliceAI INFO line is replaced.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID="+infoKey+",") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(infoHeader + "\n"); err != nil {
				return err
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one record. Scores are allele-stripped, so the record's ALT
// is put back in front of each.
func (vw *VCFWriter) Write(v *vcf.Variant, res *resolve.Result) error {
	info := vw.formatInfo(v.Info)

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.ID))
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(v.Alt)
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.Qual))
	lb.WriteByte('\t')
	lb.WriteString(orDot(v.Filter))
	lb.WriteByte('\t')

	switch {
	case len(res.Scores) == 0:
		lb.WriteString(info)
	case info == ".":
		lb.WriteString(infoKey + "=")
	default:
		lb.WriteString(info)
		lb.WriteString(";" + infoKey + "=")
	}
	for i, s := range res.Scores {
		if i > 0 {
			lb.WriteByte(',')
		}
		lb.WriteString(v.Alt)
		lb.WriteByte('|')
		lb.WriteString(s)
	}

	lb.WriteByte('\n')
	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// formatInfo strips any existing SpliceAI field from the raw INFO string.
func (vw *VCFWriter) formatInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	// Fast path: no SpliceAI field present
	if !strings.Contains(rawInfo, infoKey) {
		return rawInfo
	}

	var kept []string
	for _, field := range strings.Split(rawInfo, ";") {
		if strings.HasPrefix(field, infoKey+"=") || field == infoKey {
			continue
		}
		kept = append(kept, field)
	}

	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
