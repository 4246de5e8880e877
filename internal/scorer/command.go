package scorer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/toolrun"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// Command scores variants by running the spliceai command line tool on a
// one-record VCF:
//
//	spliceai -I in.vcf -O out.vcf -R genome.fa -A grch38 -D 50 -M 0
type Command struct {
	path       string
	annotators Annotators
	logger     *zap.Logger
}

// NewCommand creates a scorer that runs the executable at path.
func NewCommand(path string, annotators Annotators) *Command {
	return &Command{
		path:       path,
		annotators: annotators,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for tool invocations.
func (c *Command) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Score runs the model for a single variant.
func (c *Command) Score(ctx context.Context, v *vcf.Variant, genomeVersion string, distance, mask int) ([]string, error) {
	ann, err := c.annotators.Lookup(genomeVersion)
	if err != nil {
		return nil, err
	}

	ws, err := toolrun.NewWorkspace("spliceai")
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	if err := ws.WriteFile("input.vcf", []byte(inputVCF(v))); err != nil {
		return nil, err
	}
	outPath := ws.Path("output.vcf")

	args := []string{
		"-I", ws.Path("input.vcf"),
		"-O", outPath,
		"-R", ann.Reference,
		"-A", ann.Annotation,
		"-D", strconv.Itoa(distance),
		"-M", strconv.Itoa(mask),
	}
	if _, err := toolrun.Run(ctx, c.path, args...); err != nil {
		return nil, err
	}

	out, err := ws.ReadFile("output.vcf")
	if err != nil {
		return nil, err
	}

	scores, err := parseOutputVCF(string(out), v)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("computed scores",
		zap.String("variant", v.String()),
		zap.String("annotation", ann.Annotation),
		zap.Int("transcripts", len(scores)))
	return scores, nil
}

// inputVCF renders the single-record VCF the tool reads.
func inputVCF(v *vcf.Variant) string {
	var sb strings.Builder
	sb.WriteString("##fileformat=VCFv4.2\n")
	fmt.Fprintf(&sb, "##contig=<ID=%s>\n", v.Chrom)
	sb.WriteString("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
	fmt.Fprintf(&sb, "%s\t%d\t.\t%s\t%s\t.\t.\t.\n", v.Chrom, v.Pos, v.Ref, v.Alt)
	return sb.String()
}

// parseOutputVCF extracts the packed annotations the tool wrote for v.
func parseOutputVCF(out string, v *vcf.Variant) ([]string, error) {
	var scores []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := scorecache.ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("spliceai output: %w", err)
		}
		if !rec.Matches(v.Chrom, v.Pos, v.Ref, v.Alt) {
			continue
		}
		scores = append(scores, rec.Annotations()...)
	}
	return scores, nil
}
