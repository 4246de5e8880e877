package liftover

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/toolrun"
)

// DefaultChains are the UCSC chain file names for each direction.
var DefaultChains = map[Direction]string{
	HG19ToHG38: "hg19ToHg38.over.chain.gz",
	HG38ToHG19: "hg38ToHg19.over.chain.gz",
}

// UCSCTool maps intervals by running the UCSC liftOver executable:
//
//	liftOver oldFile map.chain newFile unMapped
type UCSCTool struct {
	command string
	chains  map[Direction]string
	logger  *zap.Logger
}

// NewUCSCTool creates a mapper that runs command with the chain file
// configured for each direction.
func NewUCSCTool(command string, chains map[Direction]string) *UCSCTool {
	return &UCSCTool{
		command: command,
		chains:  chains,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for tool invocations.
func (u *UCSCTool) SetLogger(l *zap.Logger) {
	u.logger = l
}

// MapInterval runs liftOver on a single BED record. The temporary input and
// output files are removed before returning.
func (u *UCSCTool) MapInterval(ctx context.Context, dir Direction, chrom string, start, end int64) (*Mapping, error) {
	chain, ok := u.chains[dir]
	if !ok {
		return nil, &ToolError{Err: fmt.Errorf("no chain file configured for %s", dir)}
	}

	ws, err := toolrun.NewWorkspace("liftover")
	if err != nil {
		return nil, &ToolError{Err: err}
	}
	defer ws.Close()

	chrom = NormalizeChrom(chrom)
	bed := fmt.Sprintf("%s\t%d\t%d\t.\t0\t+\n", chrom, start, end)
	if err := ws.WriteFile("input.bed", []byte(bed)); err != nil {
		return nil, &ToolError{Err: err}
	}

	if _, err := toolrun.Run(ctx, u.command,
		ws.Path("input.bed"), chain, ws.Path("output.bed"), ws.Path("unmapped.bed")); err != nil {
		return nil, &ToolError{Err: err}
	}

	out, err := ws.ReadFile("output.bed")
	if err != nil {
		return nil, &ToolError{Err: err}
	}
	u.logger.Debug("liftover result",
		zap.String("direction", string(dir)),
		zap.String("interval", fmt.Sprintf("%s:%d-%d", chrom, start, end)),
		zap.String("output", strings.TrimSpace(string(out))))

	m, err := parseMapped(out)
	if err != nil {
		return nil, &ToolError{Err: err}
	}
	if m != nil {
		return m, nil
	}

	unmapped, err := ws.ReadFile("unmapped.bed")
	if err != nil {
		return nil, &ToolError{Err: err}
	}
	return nil, &UnmappedError{Reason: unmappedReason(unmapped)}
}

// parseMapped reads the mapped BED output. A nil mapping means the tool
// mapped nothing.
func parseMapped(out []byte) (*Mapping, error) {
	fields := strings.Split(strings.TrimSpace(string(out)), "\t")
	if len(fields) <= 5 {
		return nil, nil
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("mapped start %q: %w", fields[1], err)
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("mapped end %q: %w", fields[2], err)
	}
	return &Mapping{Chrom: fields[0], Start: start, End: end, Strand: fields[5]}, nil
}

// unmappedReason returns the first line of the unmapped output without its
// comment marker, e.g. "Deleted in new".
func unmappedReason(unmapped []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(unmapped))
	if !sc.Scan() {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(sc.Text(), "#", ""))
}
