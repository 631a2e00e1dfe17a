package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
	"github.com/ZanzyTHEbar/chrdb/chrdb/ucd"

	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/go-libsql"
)

// TableName is the one table of the store.
const TableName = "UnicodeData"

const createTableSQL = `CREATE TABLE IF NOT EXISTS UnicodeData (
	codepoint INTEGER NOT NULL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	block TEXT NOT NULL,
	age TEXT NOT NULL,
	canonical_combining_class INTEGER NOT NULL,
	bidi_class TEXT NOT NULL,
	bidi_mirrored INTEGER NOT NULL,
	decomposition_type TEXT,
	decomposition_mapping TEXT,
	numeric_type TEXT,
	numeric_value TEXT,
	lowercase_mapping INTEGER,
	uppercase_mapping INTEGER,
	titlecase_mapping INTEGER,
	html_entity TEXT
) WITHOUT ROWID`

const columns = `codepoint, name, category, block, age, canonical_combining_class,
	bidi_class, bidi_mirrored, decomposition_type, decomposition_mapping,
	numeric_type, numeric_value, lowercase_mapping, uppercase_mapping,
	titlecase_mapping, html_entity`

const insertSQL = `INSERT INTO UnicodeData (` + columns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store is the SQLite-format character store backed by libsql.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens or creates the store file at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", common.ErrStore, path, err)
	}
	// A single local file; one writer connection avoids lock contention.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", common.ErrStore, path, err)
	}
	return s, nil
}

// Path returns the file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the UnicodeData table if it does not exist.
func (s *Store) InitSchema() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("%w: failed to create %s table: %v", common.ErrStore, TableName, err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count rows: %v", common.ErrStore, err)
	}
	return n, nil
}

// WriteRecords creates the schema and, if the table is empty, inserts every
// record in ascending code point order inside one transaction. A populated
// store is left untouched and 0 is returned.
func (s *Store) WriteRecords(ctx context.Context, records *ucd.RecordMap) (int, error) {
	if err := s.InitSchema(); err != nil {
		return 0, err
	}

	existing, err := s.Count()
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		s.logger.Info().Int("rows", existing).Str("path", s.path).Msg("store already populated, skipping insert")
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrStore, err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prepare insert: %v", common.ErrStore, err)
	}
	defer stmt.Close()

	inserted := 0
	err = records.Each(func(rec *ucd.CharRecord) error {
		if _, err := stmt.ExecContext(ctx, insertArgs(rec)...); err != nil {
			return fmt.Errorf("%w: failed to insert U+%04X: %v", common.ErrStore, rec.Codepoint, err)
		}
		inserted++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit transaction: %v", common.ErrStore, err)
	}

	s.logger.Debug().Int("rows", inserted).Str("path", s.path).Msg("records written")
	return inserted, nil
}

func insertArgs(rec *ucd.CharRecord) []any {
	mirrored := 0
	if rec.BidiMirrored {
		mirrored = 1
	}
	var numericType *string
	if rec.NumericType != nil {
		t := string(*rec.NumericType)
		numericType = &t
	}
	return []any{
		int64(rec.Codepoint),
		rec.Name,
		string(rec.Category),
		rec.Block,
		rec.Age,
		int64(rec.CanonicalCombiningClass),
		string(rec.BidiClass),
		mirrored,
		nullString(rec.DecompositionType),
		nullString(rec.DecompositionMapping),
		nullString(numericType),
		nullString(rec.NumericValue),
		nullInt(rec.LowercaseMapping),
		nullInt(rec.UppercaseMapping),
		nullInt(rec.TitlecaseMapping),
		nullString(rec.HTMLEntity),
	}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *uint32) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// LookupCodepoints returns the stored rows for the given code points, ordered
// by code point. Unknown code points are simply missing from the result.
func (s *Store) LookupCodepoints(ctx context.Context, codepoints []uint32) ([]ucd.CharRecord, error) {
	if len(codepoints) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(codepoints)), ", ")
	args := make([]any, len(codepoints))
	for i, cp := range codepoints {
		args[i] = int64(cp)
	}

	query := "SELECT " + columns + " FROM " + TableName +
		" WHERE codepoint IN (" + placeholders + ") ORDER BY codepoint"
	return s.query(ctx, query, args...)
}

// SearchName returns every row whose name contains fragment, ordered by code
// point. Matching follows SQL LIKE, so it is case-insensitive for ASCII.
func (s *Store) SearchName(ctx context.Context, fragment string) ([]ucd.CharRecord, error) {
	query := "SELECT " + columns + " FROM " + TableName +
		" WHERE name LIKE ? ORDER BY codepoint"
	return s.query(ctx, query, "%"+fragment+"%")
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]ucd.CharRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query failed: %v", common.ErrStore, err)
	}
	defer rows.Close()

	var out []ucd.CharRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %v", common.ErrStore, err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (ucd.CharRecord, error) {
	var (
		rec                               ucd.CharRecord
		codepoint, ccc, mirrored          int64
		category, bidi                    string
		decompType, decompMapping         sql.NullString
		numericType, numericValue, entity sql.NullString
		lowercase, uppercase, titlecase   sql.NullInt64
	)
	err := rows.Scan(
		&codepoint, &rec.Name, &category, &rec.Block, &rec.Age, &ccc,
		&bidi, &mirrored, &decompType, &decompMapping,
		&numericType, &numericValue, &lowercase, &uppercase,
		&titlecase, &entity,
	)
	if err != nil {
		return rec, fmt.Errorf("%w: failed to scan row: %v", common.ErrStore, err)
	}

	rec.Codepoint = uint32(codepoint)
	rec.Category = ucd.Category(category)
	rec.CanonicalCombiningClass = uint32(ccc)
	rec.BidiClass = ucd.BidiClass(bidi)
	rec.BidiMirrored = mirrored != 0
	rec.DecompositionType = stringPtr(decompType)
	rec.DecompositionMapping = stringPtr(decompMapping)
	rec.NumericValue = stringPtr(numericValue)
	rec.HTMLEntity = stringPtr(entity)
	rec.LowercaseMapping = uintPtr(lowercase)
	rec.UppercaseMapping = uintPtr(uppercase)
	rec.TitlecaseMapping = uintPtr(titlecase)
	if numericType.Valid {
		t := ucd.NumericType(numericType.String)
		rec.NumericType = &t
	}
	return rec, nil
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func uintPtr(v sql.NullInt64) *uint32 {
	if !v.Valid {
		return nil
	}
	n := uint32(v.Int64)
	return &n
}
