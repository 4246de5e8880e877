package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/spliceai-lookup/internal/scorecache"
	"github.com/inodb/spliceai-lookup/internal/vcf"
)

// execer is implemented by *sql.DB and *sql.Conn.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ImportScores replaces the records stored for key with the records of a
// SpliceAI score VCF (plain or gzipped). It returns the number of records written.
// The replacement is one transaction: a failed import leaves the previous
// records and their import record in place.
func (s *Store) ImportScores(ctx context.Context, k scorecache.Key, path string) (n int64, err error) {
	fp, err := StatFile(path)
	if err != nil {
		return 0, fmt.Errorf("stat score file: %w", err)
	}

	parser, err := vcf.NewParser(path)
	if err != nil {
		return 0, err
	}
	defer parser.Close()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			// ctx may already be done; the rollback must still run.
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := deleteScores(ctx, conn, k); err != nil {
		return 0, err
	}
	if err := clearImport(ctx, conn, k); err != nil {
		return 0, err
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "spliceai_scores")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}

	n, err = appendRecords(ctx, appender, k, parser)
	if cerr := appender.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("flush score records: %w", cerr)
	}
	if err != nil {
		return n, err
	}

	if err := insertImport(ctx, conn, Import{Key: k, Source: fp, RecordCount: n}); err != nil {
		return n, err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return n, fmt.Errorf("commit import: %w", err)
	}
	return n, nil
}

func appendRecords(ctx context.Context, appender *goduckdb.Appender, k scorecache.Key, parser vcf.VariantParser) (int64, error) {
	var n int64
	for {
		if n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		v, err := parser.Next()
		if err != nil {
			return n, err
		}
		if v == nil {
			return n, nil
		}
		if err := appender.AppendRow(
			string(k.Masking), string(k.Class), string(k.Build),
			v.Chrom, v.Pos, v.ID, v.Ref, v.Alt, v.Qual, v.Filter, v.Info,
		); err != nil {
			return n, fmt.Errorf("append score record: %w", err)
		}
		n++
	}
}

func deleteScores(ctx context.Context, ex execer, k scorecache.Key) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM spliceai_scores WHERE masking=? AND variant_class=? AND assembly=?`,
		string(k.Masking), string(k.Class), string(k.Build))
	if err != nil {
		return fmt.Errorf("delete scores for %s: %w", k, err)
	}
	return nil
}

// Count returns the number of records stored for key.
func (s *Store) Count(k scorecache.Key) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM spliceai_scores WHERE masking=? AND variant_class=? AND assembly=?`,
		string(k.Masking), string(k.Class), string(k.Build)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scores for %s: %w", k, err)
	}
	return n, nil
}

// Keys returns the keys that have at least one stored record.
func (s *Store) Keys() ([]scorecache.Key, error) {
	rows, err := s.db.Query(`SELECT DISTINCT masking, variant_class, assembly FROM spliceai_scores
		ORDER BY masking, variant_class, assembly`)
	if err != nil {
		return nil, fmt.Errorf("query score keys: %w", err)
	}
	defer rows.Close()

	var keys []scorecache.Key
	for rows.Next() {
		var m, c, a string
		if err := rows.Scan(&m, &c, &a); err != nil {
			return nil, fmt.Errorf("scan score key: %w", err)
		}
		keys = append(keys, scorecache.Key{
			Masking: scorecache.Masking(m),
			Class:   scorecache.VariantClass(c),
			Build:   scorecache.Assembly(a),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score keys: %w", err)
	}
	return keys, nil
}

// Scores serves the records of one key as a scorecache.Fetcher.
type Scores struct {
	store *Store
	key   scorecache.Key
}

// Fetcher returns a fetcher over the records stored for key.
func (s *Store) Fetcher(k scorecache.Key) *Scores {
	return &Scores{store: s, key: k}
}

// Fetch returns the records whose reference allele overlaps [start, end) on chrom,
// formatted as tab-delimited score file lines in file order.
func (sc *Scores) Fetch(ctx context.Context, chrom string, start, end int64) ([]string, error) {
	if end <= start {
		return nil, nil
	}

	rows, err := sc.store.db.QueryContext(ctx, `SELECT chrom, pos, id, ref, alt, qual, filter, info
		FROM spliceai_scores
		WHERE masking=? AND variant_class=? AND assembly=? AND chrom=?
			AND pos - 1 < ? AND pos - 1 + length(ref) > ?
		ORDER BY pos, rowid`,
		string(sc.key.Masking), string(sc.key.Class), string(sc.key.Build), chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query scores %s %s:%d-%d: %w", sc.key, chrom, start, end, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var r scorecache.Record
		if err := rows.Scan(&r.Chrom, &r.Pos, &r.ID, &r.Ref, &r.Alt, &r.Qual, &r.Filter, &r.Info); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		lines = append(lines, r.String())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score records: %w", err)
	}
	return lines, nil
}
