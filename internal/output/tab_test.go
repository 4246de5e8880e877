package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := strings.TrimSuffix(buf.String(), "\n")
	cols := strings.Split(header, "\t")
	assert.Len(t, cols, 13)
	assert.Equal(t, "#Uploaded_variation", cols[0])
	assert.Equal(t, "SYMBOL", cols[3])
	assert.Equal(t, "MAX_DS", cols[12])
}

func TestTabWriter_Write_TRAPPC9(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	v := &vcf.Variant{Chrom: "8", Pos: 140300615, ID: "rs1", Ref: "C", Alt: "G"}
	res := &resolve.Result{
		Variant: "8-140300615-C-G",
		Scores: []string{
			"TRAPPC9|0.01|0.02|0.00|0.00|-2|10|0|0",
			"CHRAC1|0.00|0.00|0.35|0.00|1|2|3|4",
		},
		Source: resolve.SourceLookup,
	}

	require.NoError(t, w.Write(v, res))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "8-140300615-C-G\trs1\tlookup\tTRAPPC9\t0.01\t0.02\t0.00\t0.00\t-2\t10\t0\t0\t0.02", lines[0])
	assert.Equal(t, "8-140300615-C-G\trs1\tlookup\tCHRAC1\t0.00\t0.00\t0.35\t0.00\t1\t2\t3\t4\t0.35", lines[1])
}

func TestTabWriter_Write_AlleleField(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	v := &vcf.Variant{Chrom: "1", Pos: 739023, Ref: "C", Alt: "CT"}
	res := &resolve.Result{
		Scores: []string{"CT|AL669831.1|0.00|0.00|0.00|0.00|-1|-37|-48|-37"},
		Source: resolve.SourceComputed,
	}

	require.NoError(t, w.Write(v, res))
	require.NoError(t, w.Flush())

	assert.Equal(t, "1-739023-C-CT\t.\tcomputed\tAL669831.1\t0.00\t0.00\t0.00\t0.00\t-1\t-37\t-48\t-37\t0.00\n", buf.String())
}

func TestTabWriter_Write_Malformed(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	v := &vcf.Variant{Chrom: "1", Pos: 1, Ref: "A", Alt: "C"}
	err := w.Write(v, &resolve.Result{Scores: []string{"GENE|x"}})
	assert.Error(t, err)
}

func TestTabWriter_Write_NoScores(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	v := &vcf.Variant{Chrom: "1", Pos: 1, Ref: "A", Alt: "C"}
	require.NoError(t, w.Write(v, &resolve.Result{}))
	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String())
}
