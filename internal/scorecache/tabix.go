package scorecache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"
	"github.com/klauspost/compress/gzip"
)

// TabixFile serves range queries from a BGZF-compressed VCF with a .tbi index.
// Fetch is safe for concurrent use: each call seeks its own bgzf.Reader over
// a shared file read with ReadAt.
type TabixFile struct {
	path string
	idx  *tabix.Index
	file *os.File
	size int64

	// idle readers, reused between fetches
	readers chan *bgzf.Reader
}

// maxIdleReaders bounds how many decompressors a file keeps between fetches.
const maxIdleReaders = 8

// OpenTabix opens path and its path.tbi index.
func OpenTabix(path string) (*TabixFile, error) {
	idx, err := readTabixIndex(path + ".tbi")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open score file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat score file: %w", err)
	}

	t := &TabixFile{
		path:    path,
		idx:     idx,
		file:    f,
		size:    info.Size(),
		readers: make(chan *bgzf.Reader, maxIdleReaders),
	}

	// Fail at open time on files that are not BGZF.
	bg, err := t.getReader()
	if err != nil {
		f.Close()
		return nil, err
	}
	t.putReader(bg)
	return t, nil
}

func (t *TabixFile) getReader() (*bgzf.Reader, error) {
	select {
	case bg := <-t.readers:
		return bg, nil
	default:
	}
	bg, err := bgzf.NewReader(io.NewSectionReader(t.file, 0, t.size), 1)
	if err != nil {
		return nil, fmt.Errorf("open bgzf reader %s: %w", t.path, err)
	}
	return bg, nil
}

func (t *TabixFile) putReader(bg *bgzf.Reader) {
	select {
	case t.readers <- bg:
	default:
		bg.Close()
	}
}

func readTabixIndex(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tabix index: %w", err)
	}
	defer f.Close()

	// The index is itself BGZF compressed; tabix.ReadFrom expects plain bytes.
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress tabix index %s: %w", path, err)
	}
	defer zr.Close()

	idx, err := tabix.ReadFrom(zr)
	if err != nil {
		return nil, fmt.Errorf("read tabix index %s: %w", path, err)
	}
	return idx, nil
}

// Path returns the score file path.
func (t *TabixFile) Path() string {
	return t.path
}

// Fetch returns the lines whose reference allele overlaps [start, end) on chrom.
// Unknown chromosomes and empty ranges yield no lines.
func (t *TabixFile) Fetch(ctx context.Context, chrom string, start, end int64) ([]string, error) {
	if end <= start {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks, err := t.idx.Chunks(chrom, int(start), int(end))
	switch {
	case errors.Is(err, index.ErrNoReference), errors.Is(err, index.ErrInvalid):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("tabix chunks %s:%d-%d: %w", chrom, start, end, err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	bg, err := t.getReader()
	if err != nil {
		return nil, err
	}
	cr, err := index.NewChunkReader(bg, chunks)
	if err != nil {
		bg.Close()
		return nil, fmt.Errorf("tabix read %s:%d-%d: %w", chrom, start, end, err)
	}

	lines, err := scanOverlapping(cr, chrom, start, end)
	cr.Close()
	if err != nil {
		bg.Close()
		return nil, err
	}
	t.putReader(bg)
	return lines, nil
}

// scanOverlapping filters index chunk contents down to records on chrom
// overlapping [start, end). Chunks are bin-granular and may hold neighbours.
func scanOverlapping(r io.Reader, chrom string, start, end int64) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return nil, err
		}
		if rec.Chrom != chrom {
			continue
		}
		if rec.Start() >= end {
			break
		}
		if rec.Overlaps(start, end) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan score file: %w", err)
	}
	return lines, nil
}

// Close releases the idle readers and the file handle. It must not be
// called while fetches are in flight.
func (t *TabixFile) Close() error {
	for {
		select {
		case bg := <-t.readers:
			bg.Close()
		default:
			return t.file.Close()
		}
	}
}
