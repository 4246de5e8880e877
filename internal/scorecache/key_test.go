package scorecache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/spliceai-lookup/internal/vcf"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name          string
		ref, alt      string
		genomeVersion string
		mask          int
		want          Key
	}{
		{"raw snv hg38", "C", "G", "38", 0, Key{Raw, SNV, HG38}},
		{"masked snv hg19", "C", "G", "37", 1, Key{Masked, SNV, HG19}},
		{"raw insertion hg38", "C", "CT", "38", 0, Key{Raw, Indel, HG38}},
		{"masked deletion hg19", "CT", "C", "37", 1, Key{Masked, Indel, HG19}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeriveKey(&vcf.Variant{Ref: tt.ref, Alt: tt.alt}, tt.genomeVersion, tt.mask)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveKey_OutOfDomain(t *testing.T) {
	snv := &vcf.Variant{Chrom: "8", Pos: 140300615, Ref: "C", Alt: "G"}

	_, ok := DeriveKey(snv, "36", 0)
	assert.False(t, ok, "unknown genome version")

	_, ok = DeriveKey(snv, "38", 2)
	assert.False(t, ok, "unknown mask")
}

func TestKey_FileName(t *testing.T) {
	k := Key{Masking: Masked, Class: Indel, Build: HG19}
	assert.Equal(t, "masked.indel.hg19", k.String())
	assert.Equal(t, "spliceai_scores.masked.indel.hg19.vcf.gz", k.FileName())
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey("raw.snv.hg38")
	require.NoError(t, err)
	assert.Equal(t, Key{Raw, SNV, HG38}, k)

	for _, bad := range []string{"", "raw.snv", "raw.snv.hg18", "none.snv.hg38", "raw.mnv.hg38", "raw.snv.hg38.x"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	assert.Len(t, keys, 8)

	seen := make(map[Key]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		_, err := ParseKey(k.String())
		assert.NoError(t, err)
	}
}
