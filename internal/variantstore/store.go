// Package variantstore persists Variant Factory output in DuckDB so a driver
// can query previously parsed variants by position or by chromosome instead
// of re-parsing a VCF on every lookup.
package variantstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vep/internal/variant"
)

// Store manages a DuckDB connection caching Variant Factory output.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at path. An empty path opens an
// in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create variantstore directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR,
		pos BIGINT,
		end_pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		variant_type VARCHAR,
		category INTEGER,
		breakend_json VARCHAR,
		sample_json VARCHAR,
		PRIMARY KEY (chrom, pos, ref, alt)
	)`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one persisted variant, with its breakends and sample fields
// carried as JSON so the table shape doesn't depend on either's internal
// layout.
type Record struct {
	Chrom       string
	Pos         int64
	End         int64
	Ref         string
	Alt         string
	VariantType variant.VariantType
	Category    variant.VariantCategory
	BreakEnds   []variant.BreakEnd
	Sample      *variant.Sample
}

// recordKey is the composite dedup key, mirroring the teacher's
// (chrom, pos, ref, alt, transcript_id) dedup but without the transcript
// dimension this core has no concept of.
type recordKey struct {
	chrom, ref, alt string
	pos             int64
}

// WriteVariants batch-inserts records into DuckDB using the Appender API,
// deduplicating by (chrom, pos, ref, alt) before writing.
func (s *Store) WriteVariants(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[recordKey]bool, len(records))
	deduped := make([]Record, 0, len(records))
	for _, r := range records {
		k := recordKey{r.Chrom, r.Ref, r.Alt, r.Pos}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variants")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		breakendJSON, err := gojson.Marshal(r.BreakEnds)
		if err != nil {
			return fmt.Errorf("marshal breakends: %w", err)
		}
		sampleJSON, err := gojson.Marshal(r.Sample)
		if err != nil {
			return fmt.Errorf("marshal sample: %w", err)
		}

		if err := appender.AppendRow(
			r.Chrom, r.Pos, r.End, r.Ref, r.Alt,
			string(r.VariantType), int32(r.Category),
			string(breakendJSON), string(sampleJSON),
		); err != nil {
			return fmt.Errorf("append variant: %w", err)
		}
	}

	return appender.Flush()
}

// ClearVariants removes all persisted variants.
func (s *Store) ClearVariants() error {
	_, err := s.db.Exec("DELETE FROM variants")
	return err
}

// LookupVariant returns the persisted record for an exact (chrom, pos, ref,
// alt) key, if any.
func (s *Store) LookupVariant(chrom string, pos int64, ref, alt string) (*Record, error) {
	row := s.db.QueryRow(`SELECT chrom, pos, end_pos, ref, alt, variant_type, category, breakend_json, sample_json
		FROM variants WHERE chrom=? AND pos=? AND ref=? AND alt=?`, chrom, pos, ref, alt)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup variant: %w", err)
	}
	return rec, nil
}

// SearchByChromosome returns every persisted variant on chrom.
func (s *Store) SearchByChromosome(chrom string) ([]Record, error) {
	rows, err := s.db.Query(`SELECT chrom, pos, end_pos, ref, alt, variant_type, category, breakend_json, sample_json
		FROM variants WHERE chrom=? ORDER BY pos`, chrom)
	if err != nil {
		return nil, fmt.Errorf("search by chromosome: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		results = append(results, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec                     Record
		category                int32
		breakendJSON, sampleJSON string
	)
	if err := row.Scan(
		&rec.Chrom, &rec.Pos, &rec.End, &rec.Ref, &rec.Alt,
		&rec.VariantType, &category, &breakendJSON, &sampleJSON,
	); err != nil {
		return nil, err
	}
	rec.Category = variant.VariantCategory(category)

	if breakendJSON != "" && breakendJSON != "null" {
		if err := gojson.Unmarshal([]byte(breakendJSON), &rec.BreakEnds); err != nil {
			return nil, fmt.Errorf("unmarshal breakends: %w", err)
		}
	}
	if sampleJSON != "" && sampleJSON != "null" {
		var sample variant.Sample
		if err := gojson.Unmarshal([]byte(sampleJSON), &sample); err != nil {
			return nil, fmt.Errorf("unmarshal sample: %w", err)
		}
		rec.Sample = &sample
	}
	return &rec, nil
}
