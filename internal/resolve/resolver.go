// Package resolve turns a variant identifier into per-transcript SpliceAI
// delta scores.
//
// Scores are looked up in the precomputed score files first. Lookups are only
// attempted at the default scoring distance, the distance the files were
// computed with. On a miss the model scores the variant directly.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/scorer"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// DefaultMask is the default masking setting: raw scores.
const DefaultMask = 0

// Lookups are skipped for long alleles; the score files do not cover them reliably.
const (
	maxLookupRefLen = 5
	maxLookupAltLen = 2
)

// Source tells where a result's scores came from.
type Source string

const (
	SourceLookup   Source = "lookup"
	SourceComputed Source = "computed"
)

// ScoreCache fetches raw score file lines by key. *scorecache.Set implements it.
type ScoreCache interface {
	Fetch(ctx context.Context, k scorecache.Key, chrom string, start, end int64) ([]string, error)
}

// Result is the outcome of resolving one variant. On failure only Variant,
// Error and Err are set.
type Result struct {
	Variant       string   `json:"variant"`
	GenomeVersion string   `json:"genome_version,omitempty"`
	Chrom         string   `json:"chrom,omitempty"`
	Pos           int64    `json:"pos,omitempty"`
	Ref           string   `json:"ref,omitempty"`
	Alt           string   `json:"alt,omitempty"`
	Scores        []string `json:"scores,omitempty"`
	Source        Source   `json:"source,omitempty"`
	Error         string   `json:"error,omitempty"`

	Err error `json:"-"`
}

func errorResult(variant string, err error) *Result {
	return &Result{
		Variant: variant,
		Error:   "ERROR: " + err.Error(),
		Err:     err,
	}
}

// Resolver resolves variants against a score cache with a model fallback.
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	cache  ScoreCache
	scorer scorer.Scorer
	logger *zap.Logger
}

// NewResolver creates a resolver. cache may be nil, in which case every
// variant is scored by the model.
func NewResolver(cache ScoreCache, s scorer.Scorer) *Resolver {
	return &Resolver{
		cache:  cache,
		scorer: s,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for cache failures.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve parses variantText and returns its scores. genomeVersion is "37"
// or "38" and mask is 0 (raw) or 1 (masked). Failures are reported in the
// result, never as a Go error.
func (r *Resolver) Resolve(ctx context.Context, variantText, genomeVersion string, distance, mask int) *Result {
	v, err := vcf.ParseVariantID(variantText)
	if err != nil {
		return errorResult(variantText, err)
	}

	if v.IsComplexIndel() {
		return errorResult(variantText, &UnsupportedVariantError{Variant: v.String()})
	}

	var scores []string
	var source Source
	if distance == scorecache.DefaultDistance && (len(v.Ref) <= maxLookupRefLen || len(v.Alt) <= maxLookupAltLen) {
		scores = r.lookup(ctx, v, genomeVersion, mask)
		source = SourceLookup
	}

	if len(scores) == 0 {
		scores, err = r.scorer.Score(ctx, v, genomeVersion, distance, mask)
		if err != nil {
			return errorResult(variantText, &ModelScoringError{Err: err})
		}
		source = SourceComputed
	}

	if len(scores) == 0 {
		return errorResult(variantText, &ScoreUnavailableError{Variant: variantText})
	}

	stripped := make([]string, len(scores))
	for i, s := range scores {
		stripped[i] = scorecache.StripAllele(s)
	}

	return &Result{
		Variant:       variantText,
		GenomeVersion: genomeVersion,
		Chrom:         v.Chrom,
		Pos:           v.Pos,
		Ref:           v.Ref,
		Alt:           v.Alt,
		Scores:        stripped,
		Source:        source,
	}
}

// lookup returns the packed annotations of the score file record that
// matches v exactly. Cache failures are logged and read as a miss.
func (r *Resolver) lookup(ctx context.Context, v *vcf.Variant, genomeVersion string, mask int) []string {
	if r.cache == nil {
		return nil
	}
	key, ok := scorecache.DeriveKey(v, genomeVersion, mask)
	if !ok {
		return nil
	}

	lines, err := r.cache.Fetch(ctx, key, v.Chrom, v.Pos-1, v.Pos+1)
	if err != nil {
		r.logger.Warn("score lookup failed",
			zap.String("key", key.String()),
			zap.String("chrom", v.Chrom),
			zap.Int64("pos", v.Pos),
			zap.Error(err))
		return nil
	}

	var scores []string
	for _, line := range lines {
		rec, err := scorecache.ParseRecord(line)
		if err != nil {
			r.logger.Warn("malformed score record",
				zap.String("key", key.String()),
				zap.Error(err))
			continue
		}
		if rec.Matches(v.Chrom, v.Pos, v.Ref, v.Alt) {
			scores = append(scores, rec.Annotations()...)
		}
	}
	return scores
}

// UnsupportedVariantError reports a complex indel, where both alleles span
// more than one base.
type UnsupportedVariantError struct {
	Variant string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("SpliceAI does not currently support complex InDels like %s", e.Variant)
}

// ScoreUnavailableError reports a variant for which neither the score files
// nor the model produced a score.
type ScoreUnavailableError struct {
	Variant string
}

func (e *ScoreUnavailableError) Error() string {
	return fmt.Sprintf("Unable to compute scores for %s. Please check that the genome version and "+
		"reference allele are correct, and the variant is either exonic or intronic in Gencode v24.", e.Variant)
}

// ModelScoringError wraps a failure of the model scorer.
type ModelScoringError struct {
	Err error
}

func (e *ModelScoringError) Error() string {
	return fmt.Sprintf("%T: %v", e.Err, e.Err)
}

func (e *ModelScoringError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err was caused by the request itself rather
// than by the scoring machinery.
func IsUserError(err error) bool {
	var pe *vcf.ParseError
	var ue *UnsupportedVariantError
	return errors.As(err, &pe) || errors.As(err, &ue)
}
