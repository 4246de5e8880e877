package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/spliceai-lookup/internal/scorecache"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func findTestFile(t *testing.T, name string) string {
	t.Helper()
	for _, p := range []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Fatalf("test file not found: %s", name)
	return ""
}

var rawSNV38 = scorecache.Key{Masking: scorecache.Raw, Class: scorecache.SNV, Build: scorecache.HG38}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.Equal(t, "", s.Path())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scores.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestImportAndFetch(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	n, err := s.ImportScores(ctx, rawSNV38, findTestFile(t, "spliceai_scores.raw.snv.hg38.vcf.gz"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	count, err := s.Count(rawSNV38)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []scorecache.Key{rawSNV38}, keys)

	lines, err := s.Fetcher(rawSNV38).Fetch(ctx, "8", 140300614, 140300616)
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.Equal(t,
		"8\t140300615\t.\tC\tA\t.\t.\tSpliceAI=A|TRAPPC9|0.00|0.00|0.01|0.00|-2|10|0|0",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "8\t140300616\t"))
}

func TestFetch_OtherKeyEmpty(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	_, err := s.ImportScores(ctx, rawSNV38, findTestFile(t, "spliceai_scores.raw.snv.hg38.vcf.gz"))
	require.NoError(t, err)

	masked := scorecache.Key{Masking: scorecache.Masked, Class: scorecache.SNV, Build: scorecache.HG38}
	lines, err := s.Fetcher(masked).Fetch(ctx, "8", 140300614, 140300616)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = s.Fetcher(rawSNV38).Fetch(ctx, "8", 140300616, 140300616)
	require.NoError(t, err)
	assert.Empty(t, lines, "empty range")
}

func TestImport_ReplacesAndRecordsFingerprint(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()
	path := findTestFile(t, "spliceai_scores.raw.snv.hg38.vcf.gz")

	_, err := s.ImportScores(ctx, rawSNV38, path)
	require.NoError(t, err)
	_, err = s.ImportScores(ctx, rawSNV38, path)
	require.NoError(t, err)

	count, err := s.Count(rawSNV38)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count, "second import replaces the first")

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.True(t, s.Current(rawSNV38, fp))

	imp, ok, err := s.LastImport(rawSNV38)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(9), imp.RecordCount)

	changed := fp
	changed.ModTime = fp.ModTime.Add(time.Second)
	assert.False(t, s.Current(rawSNV38, changed))
}

func TestLastImport_None(t *testing.T) {
	s := openInMemory(t)
	_, ok, err := s.LastImport(rawSNV38)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImport_MissingFile(t *testing.T) {
	s := openInMemory(t)
	_, err := s.ImportScores(context.Background(), rawSNV38, filepath.Join(t.TempDir(), "nope.vcf.gz"))
	assert.Error(t, err)
}

func writeScoreVCF(t *testing.T, name string, records ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		strings.Join(records, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImport_FailureKeepsPreviousImport(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	good := writeScoreVCF(t, "good.vcf",
		"8\t140300615\t.\tC\tG\t.\t.\tSpliceAI=G|TRAPPC9|0.01|0.02|0.00|0.00|-2|10|0|0",
		"8\t140300616\t.\tT\tA\t.\t.\tSpliceAI=A|TRAPPC9|0.00|0.00|0.00|0.00|0|0|0|0")
	n, err := s.ImportScores(ctx, rawSNV38, good)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	bad := writeScoreVCF(t, "bad.vcf",
		"8\t140300615\t.\tC\tG\t.\t.\tSpliceAI=G|TRAPPC9|0.01|0.02|0.00|0.00|-2|10|0|0",
		"8\tnot-a-position\t.\tC\tG\t.\t.\t.")
	_, err = s.ImportScores(ctx, rawSNV38, bad)
	require.Error(t, err)

	count, err := s.Count(rawSNV38)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "records of the previous import survive")

	imp, ok, err := s.LastImport(rawSNV38)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, good, imp.Source.Path)

	fp, err := StatFile(good)
	require.NoError(t, err)
	assert.True(t, s.Current(rawSNV38, fp))
}

func TestImport_CancelledReimportKeepsRecords(t *testing.T) {
	s := openInMemory(t)
	path := findTestFile(t, "spliceai_scores.raw.snv.hg38.vcf.gz")

	_, err := s.ImportScores(context.Background(), rawSNV38, path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ImportScores(ctx, rawSNV38, path)
	require.ErrorIs(t, err, context.Canceled)

	count, err := s.Count(rawSNV38)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.True(t, s.Current(rawSNV38, fp))
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, fp.Path)
	assert.Equal(t, int64(5), fp.Size)

	_, err = StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
