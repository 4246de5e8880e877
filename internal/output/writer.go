package output

import (
	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// ResultWriter writes resolution results in input order.
// Results without scores may be dropped or passed through unannotated.
type ResultWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, res *resolve.Result) error
	Flush() error
}
