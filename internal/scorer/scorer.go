// Package scorer computes SpliceAI delta scores directly from the model.
package scorer

import (
	"context"
	"fmt"

	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// Scorer computes delta scores for a variant. Each returned string is one
// overlapping transcript's packed annotation:
//
//	allele|symbol|DS_AG|DS_AL|DS_DG|DS_DL|DP_AG|DP_AL|DP_DG|DP_DL
//
// An empty result means the model produced no score for the variant.
type Scorer interface {
	Score(ctx context.Context, v *vcf.Variant, genomeVersion string, distance, mask int) ([]string, error)
}

// Annotator is the assembly-specific reference the model scores against.
type Annotator struct {
	// Annotation is the gene annotation name the model uses, e.g. "grch37".
	Annotation string
	// Reference is the genome FASTA path.
	Reference string
}

// Annotators maps a genome version ("37", "38") to its annotator.
type Annotators map[string]Annotator

// Lookup returns the annotator for genomeVersion.
func (a Annotators) Lookup(genomeVersion string) (Annotator, error) {
	ann, ok := a[genomeVersion]
	if !ok {
		return Annotator{}, &UnknownGenomeVersionError{GenomeVersion: genomeVersion}
	}
	return ann, nil
}

// UnknownGenomeVersionError is returned when no annotator is configured for a genome version.
type UnknownGenomeVersionError struct {
	GenomeVersion string
}

func (e *UnknownGenomeVersionError) Error() string {
	return fmt.Sprintf("no annotator configured for genome version %q", e.GenomeVersion)
}
