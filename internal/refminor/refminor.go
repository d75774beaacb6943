// Package refminor provides a DuckDB-backed variant.RefMinorProvider, caching
// global-major-allele overrides for ref-minor sites.
package refminor

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vep/internal/variant"
)

// Store answers GlobalMajorAllele lookups from a small DuckDB table.
type Store struct {
	db       *sql.DB
	lookupPS *sql.Stmt
}

// Open opens or creates a DuckDB database for the ref-minor table at dbPath.
// An empty dbPath opens an in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ref_minor (
		chrom VARCHAR,
		pos BIGINT,
		major_allele VARCHAR,
		PRIMARY KEY (chrom, pos)
	)`)
	return err
}

// Load bulk-loads a ref-minor TSV (columns: chrom, pos, major_allele) via
// DuckDB's read_csv, replacing any existing rows.
func (s *Store) Load(tsvPath string) error {
	s.db.Exec(`DELETE FROM ref_minor`)
	query := fmt.Sprintf(`INSERT INTO ref_minor
		SELECT * FROM read_csv('%s', delim='\t', header=true,
			columns={'chrom': 'VARCHAR', 'pos': 'BIGINT', 'major_allele': 'VARCHAR'})`,
		tsvPath)
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("loading ref-minor table: %w", err)
	}
	return nil
}

// Add registers a single ref-minor site, for small programmatic seedings.
func (s *Store) Add(chrom variant.Chromosome, pos int, majorAllele string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO ref_minor (chrom, pos, major_allele) VALUES (?, ?, ?)`,
		chrom.RefName, int64(pos), majorAllele,
	)
	return err
}

// GlobalMajorAllele implements variant.RefMinorProvider.
func (s *Store) GlobalMajorAllele(chrom variant.Chromosome, pos int) (string, bool) {
	if s.lookupPS == nil {
		ps, err := s.db.Prepare(`SELECT major_allele FROM ref_minor WHERE chrom=? AND pos=?`)
		if err != nil {
			return "", false
		}
		s.lookupPS = ps
	}
	var allele string
	if err := s.lookupPS.QueryRow(chrom.RefName, int64(pos)).Scan(&allele); err != nil {
		return "", false
	}
	return allele, true
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.lookupPS != nil {
		s.lookupPS.Close()
	}
	return s.db.Close()
}

var _ variant.RefMinorProvider = (*Store)(nil)
