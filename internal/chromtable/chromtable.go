// Package chromtable provides a DuckDB-backed variant.ChromosomeLookup,
// caching the Ensembl-name/ref-name mapping loaded from a contig TSV.
package chromtable

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vep/internal/variant"
)

// Store resolves chromosome names through a small DuckDB table, falling back
// to variant.EmptyChromosome for anything it has never loaded.
type Store struct {
	db       *sql.DB
	lookupPS *sql.Stmt
}

// Open opens or creates a DuckDB database for the contig table at dbPath.
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS contigs (
		name VARCHAR PRIMARY KEY,
		ensembl_name VARCHAR,
		ref_name VARCHAR
	)`)
	return err
}

// Load bulk-loads a contig TSV (columns: name, ensembl_name, ref_name) via
// DuckDB's read_csv, replacing any existing rows.
func (s *Store) Load(tsvPath string) error {
	s.db.Exec(`DELETE FROM contigs`)
	query := fmt.Sprintf(`INSERT INTO contigs
		SELECT * FROM read_csv('%s', delim='\t', header=true,
			columns={'name': 'VARCHAR', 'ensembl_name': 'VARCHAR', 'ref_name': 'VARCHAR'})`,
		tsvPath)
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("loading contig table: %w", err)
	}
	return nil
}

// Add registers a single alias -> Chromosome mapping, for small programmatic
// seedings (tests, a handful of overrides) where a TSV is overkill.
func (s *Store) Add(name string, c variant.Chromosome) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO contigs (name, ensembl_name, ref_name) VALUES (?, ?, ?)`,
		name, c.EnsemblName, c.RefName,
	)
	return err
}

// Lookup implements variant.ChromosomeLookup. Names the store has never seen
// fall back to variant.EmptyChromosome, matching the contract spec.md §3
// places on every ChromosomeLookup implementation.
func (s *Store) Lookup(name string) variant.Chromosome {
	if s.lookupPS == nil {
		ps, err := s.db.Prepare(`SELECT ensembl_name, ref_name FROM contigs WHERE name=?`)
		if err != nil {
			return variant.EmptyChromosome(name)
		}
		s.lookupPS = ps
	}
	var c variant.Chromosome
	if err := s.lookupPS.QueryRow(name).Scan(&c.EnsemblName, &c.RefName); err != nil {
		return variant.EmptyChromosome(name)
	}
	return c
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.lookupPS != nil {
		s.lookupPS.Close()
	}
	return s.db.Close()
}

var _ variant.ChromosomeLookup = (*Store)(nil)
