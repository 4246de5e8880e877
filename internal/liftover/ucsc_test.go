package liftover

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
)

// Each fake copies its input BED and records its arguments next to itself.
const fakeHeader = `#!/bin/sh
dir=$(dirname "$0")
cp "$1" "$dir/input.bed"
echo "$@" > "$dir/args.txt"
`

const fakeMapped = fakeHeader + `printf 'chr8\t139288376\t139288377\t.\t0\t-\n' > "$3"
: > "$4"
`

const fakeDeleted = fakeHeader + `: > "$3"
printf '#Deleted in new\nchr8\t140300614\t140300615\t.\t0\t+\n' > "$4"
`

const fakeNoReason = fakeHeader + `: > "$3"
: > "$4"
`

const fakeCrash = fakeHeader + `echo "can't read chain file" >&2
exit 255
`

func writeFake(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "liftOver")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func readBeside(t *testing.T, script, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(script), name))
	require.NoError(t, err)
	return string(data)
}

func TestUCSCTool_Mapped(t *testing.T) {
	script := writeFake(t, fakeMapped)
	tool := NewUCSCTool(script, DefaultChains)

	m, err := tool.MapInterval(context.Background(), HG19ToHG38, "8", 140300614, 140300615)
	require.NoError(t, err)
	assert.Equal(t, &Mapping{Chrom: "chr8", Start: 139288376, End: 139288377, Strand: "-"}, m)

	assert.Equal(t, "chr8\t140300614\t140300615\t.\t0\t+\n", readBeside(t, script, "input.bed"))

	args := strings.Fields(readBeside(t, script, "args.txt"))
	require.Len(t, args, 4)
	assert.Equal(t, "hg19ToHg38.over.chain.gz", args[1])
	_, err = os.Stat(args[0])
	assert.True(t, os.IsNotExist(err), "temporary files removed")
}

func TestUCSCTool_Unmapped(t *testing.T) {
	tool := NewUCSCTool(writeFake(t, fakeDeleted), DefaultChains)

	_, err := tool.MapInterval(context.Background(), HG38ToHG19, "chr8", 140300614, 140300615)
	var ue *UnmappedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "Deleted in new", ue.Reason)
	assert.Equal(t, "Lift over failed: Deleted in new", err.Error())
}

func TestUCSCTool_UnmappedUnknownReason(t *testing.T) {
	tool := NewUCSCTool(writeFake(t, fakeNoReason), DefaultChains)

	_, err := tool.MapInterval(context.Background(), HG38ToHG19, "chr8", 1, 2)
	var ue *UnmappedError
	require.True(t, errors.As(err, &ue))
	assert.Empty(t, ue.Reason)
	assert.Equal(t, "Lift over failed for unknown reasons", err.Error())
}

func TestUCSCTool_ToolFailure(t *testing.T) {
	script := writeFake(t, fakeCrash)
	tool := NewUCSCTool(script, DefaultChains)

	_, err := tool.MapInterval(context.Background(), HG19ToHG38, "8", 1, 2)
	var te *ToolError
	require.True(t, errors.As(err, &te))
	var ee *toolrun.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "can't read chain file", ee.Stderr)
	assert.True(t, strings.HasPrefix(err.Error(), "liftOver command failed: "))

	args := strings.Fields(readBeside(t, script, "args.txt"))
	_, err = os.Stat(args[0])
	assert.True(t, os.IsNotExist(err), "temporary files removed after failure")
}

func TestUCSCTool_MissingChain(t *testing.T) {
	tool := NewUCSCTool(writeFake(t, fakeMapped), map[Direction]string{HG19ToHG38: "a.chain"})

	_, err := tool.MapInterval(context.Background(), HG38ToHG19, "8", 1, 2)
	var te *ToolError
	assert.True(t, errors.As(err, &te))
}

func TestParseMapped(t *testing.T) {
	m, err := parseMapped([]byte("chr1\t10\t20\t.\t0\t+\n"))
	require.NoError(t, err)
	assert.Equal(t, &Mapping{Chrom: "chr1", Start: 10, End: 20, Strand: "+"}, m)

	m, err = parseMapped([]byte("chr1\t10\t20\t.\t0\n"))
	require.NoError(t, err)
	assert.Nil(t, m, "five fields is unmapped")

	m, err = parseMapped(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = parseMapped([]byte("chr1\tx\t20\t.\t0\t+\n"))
	assert.Error(t, err)
}

func TestUnmappedReason(t *testing.T) {
	assert.Equal(t, "Partially deleted in new", unmappedReason([]byte("#Partially deleted in new\nchr1\t1\t2\n")))
	assert.Equal(t, "", unmappedReason(nil))
}
