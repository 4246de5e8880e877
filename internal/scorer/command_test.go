package scorer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/spliceai-lookup/internal/toolrun"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// fakeSpliceAI annotates every input record with two transcripts and records
// its arguments and input path next to itself.
const fakeSpliceAI = `#!/bin/sh
dir=$(dirname "$0")
echo "$@" > "$dir/args.txt"
while [ $# -gt 0 ]; do
  case "$1" in
    -I) in="$2" ;;
    -O) out="$2" ;;
  esac
  shift 2
done
echo "$in" > "$dir/input_path.txt"
grep '^#' "$in" > "$out"
grep -v '^#' "$in" | awk -F'\t' -v OFS='\t' '{ $8 = "SpliceAI=" $5 "|GENE1|0.01|0.02|0.00|0.00|-2|10|0|0," $5 "|GENE2|0.00|0.00|0.30|0.00|1|2|3|4"; print }' >> "$out"
`

const fakeNoScore = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    -I) in="$2" ;;
    -O) out="$2" ;;
  esac
  shift 2
done
cp "$in" "$out"
`

const fakeFailing = `#!/bin/sh
echo "reference allele mismatch" >&2
exit 1
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spliceai")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

var testAnnotators = Annotators{
	"37": {Annotation: "grch37", Reference: "/ref/hg19.fa"},
	"38": {Annotation: "grch38", Reference: "/ref/hg38.fa"},
}

func TestCommand_Score(t *testing.T) {
	script := writeScript(t, fakeSpliceAI)
	c := NewCommand(script, testAnnotators)

	v := &vcf.Variant{Chrom: "8", Pos: 140300615, Ref: "C", Alt: "G"}
	scores, err := c.Score(context.Background(), v, "38", 500, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"G|GENE1|0.01|0.02|0.00|0.00|-2|10|0|0",
		"G|GENE2|0.00|0.00|0.30|0.00|1|2|3|4",
	}, scores)

	args, err := os.ReadFile(filepath.Join(filepath.Dir(script), "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-R /ref/hg38.fa -A grch38 -D 500 -M 1")

	inputPath, err := os.ReadFile(filepath.Join(filepath.Dir(script), "input_path.txt"))
	require.NoError(t, err)
	_, err = os.Stat(strings.TrimSpace(string(inputPath)))
	assert.True(t, os.IsNotExist(err), "temporary input removed")
}

func TestCommand_NoScore(t *testing.T) {
	c := NewCommand(writeScript(t, fakeNoScore), testAnnotators)

	v := &vcf.Variant{Chrom: "8", Pos: 1, Ref: "C", Alt: "G"}
	scores, err := c.Score(context.Background(), v, "37", 50, 0)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestCommand_ToolFailure(t *testing.T) {
	c := NewCommand(writeScript(t, fakeFailing), testAnnotators)

	v := &vcf.Variant{Chrom: "8", Pos: 1, Ref: "C", Alt: "G"}
	_, err := c.Score(context.Background(), v, "38", 50, 0)
	require.Error(t, err)

	var ee *toolrun.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "reference allele mismatch", ee.Stderr)
}

func TestCommand_UnknownGenomeVersion(t *testing.T) {
	c := NewCommand(writeScript(t, fakeSpliceAI), testAnnotators)

	v := &vcf.Variant{Chrom: "8", Pos: 1, Ref: "C", Alt: "G"}
	_, err := c.Score(context.Background(), v, "36", 50, 0)

	var ue *UnknownGenomeVersionError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "36", ue.GenomeVersion)
}

func TestInputVCF(t *testing.T) {
	v := &vcf.Variant{Chrom: "8", Pos: 140300615, Ref: "C", Alt: "G"}
	got := inputVCF(v)

	p, err := vcf.NewParserFromReader(strings.NewReader(got))
	require.NoError(t, err)
	parsed, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, "8-140300615-C-G", parsed.String())
}

func TestParseOutputVCF_IgnoresOtherRecords(t *testing.T) {
	out := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"8\t140300615\t.\tC\tT\t.\t.\tSpliceAI=T|X|0|0|0|0|0|0|0|0\n" +
		"8\t140300615\t.\tC\tG\t.\t.\tSpliceAI=G|Y|0|0|0|0|0|0|0|0\n"

	v := &vcf.Variant{Chrom: "8", Pos: 140300615, Ref: "C", Alt: "G"}
	scores, err := parseOutputVCF(out, v)
	require.NoError(t, err)
	assert.Equal(t, []string{"G|Y|0|0|0|0|0|0|0|0"}, scores)
}
