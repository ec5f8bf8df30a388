//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"github.com/e-gun/NarrativeScope/internal/dfm"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

//
// MATRIX SNAPSHOTS
//

// https://pkg.go.dev/modernc.org/sqlite

// ErrNoSnapshot - the database holds no saved matrix
var ErrNoSnapshot = errors.New("store: no matrix has been saved here")

const (
	METASAVED  = "saved"
	METANDOCS  = "ndocs"
	METANFEATS = "nfeatures"
)

// Snapshot - one SQLite file holding (at most) one matrix plus free-form metadata
type Snapshot struct {
	db *sql.DB
}

// Open - open or create the file; WAL mode as usual
func Open(ctx context.Context, path string) (*Snapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = initschema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Snapshot{db: db}, nil
}

func (s *Snapshot) Close() error { return s.db.Close() }

func initschema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS meta (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS docs (
	pos INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS features (
	pos INTEGER PRIMARY KEY,
	feature TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS counts (
	doc INTEGER NOT NULL,
	feat INTEGER NOT NULL,
	n REAL NOT NULL,
	PRIMARY KEY(doc, feat)
);

CREATE TABLE IF NOT EXISTS fields (
	pos INTEGER PRIMARY KEY,
	field TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS docvars (
	doc INTEGER NOT NULL,
	pos INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY(doc, pos)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveMatrix - replace whatever was saved before; extra metadata rides along
func (s *Snapshot) SaveMatrix(ctx context.Context, m *dfm.Matrix, meta map[string]string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range []string{"meta", "docs", "features", "counts", "fields", "docvars"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return err
		}
	}

	if err = insertall(ctx, tx, `INSERT INTO docs (pos, name) VALUES (?, ?)`, m.DocNames()); err != nil {
		return err
	}
	if err = insertall(ctx, tx, `INSERT INTO features (pos, feature) VALUES (?, ?)`, m.Features()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO counts (doc, feat, n) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range m.Cells() {
		if _, err = stmt.ExecContext(ctx, c.Doc, c.Feat, c.N); err != nil {
			return err
		}
	}

	dv := m.Docvars()
	fields := dv.Fields()
	if err = insertall(ctx, tx, `INSERT INTO fields (pos, field) VALUES (?, ?)`, fields); err != nil {
		return err
	}
	vstmt, err := tx.PrepareContext(ctx, `INSERT INTO docvars (doc, pos, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer vstmt.Close()
	for p, f := range fields {
		col, cerr := dv.Column(f)
		if cerr != nil {
			return cerr
		}
		for r, v := range col {
			if _, err = vstmt.ExecContext(ctx, r, p, v); err != nil {
				return err
			}
		}
	}

	all := map[string]string{
		METASAVED:  time.Now().UTC().Format(time.RFC3339),
		METANDOCS:  strconv.Itoa(m.NDocs()),
		METANFEATS: strconv.Itoa(m.NFeatures()),
	}
	for k, v := range meta {
		if _, reserved := all[k]; !reserved {
			all[k] = v
		}
	}
	for k, v := range all {
		if _, err = tx.ExecContext(ctx, `INSERT INTO meta (name, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// insertall - (i, ss[i]) for every item
func insertall(ctx context.Context, tx *sql.Tx, q string, ss []string) error {
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, s := range ss {
		if _, err = stmt.ExecContext(ctx, i, s); err != nil {
			return err
		}
	}
	return nil
}

// Meta - every metadata key
func (s *Snapshot) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err = rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// LoadMatrix - rebuild what SaveMatrix() stored
func (s *Snapshot) LoadMatrix(ctx context.Context) (*dfm.Matrix, error) {
	meta, err := s.Meta(ctx)
	if err != nil {
		return nil, err
	}
	nd, derr := strconv.Atoi(meta[METANDOCS])
	nf, ferr := strconv.Atoi(meta[METANFEATS])
	if derr != nil || ferr != nil {
		return nil, ErrNoSnapshot
	}

	docs, err := s.strings(ctx, `SELECT pos, name FROM docs ORDER BY pos`, nd)
	if err != nil {
		return nil, err
	}
	feats, err := s.strings(ctx, `SELECT pos, feature FROM features ORDER BY pos`, nf)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT doc, feat, n FROM counts ORDER BY doc, feat`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cells []dfm.Cell
	for rows.Next() {
		var c dfm.Cell
		if err = rows.Scan(&c.Doc, &c.Feat, &c.N); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	fields, err := s.strings(ctx, `SELECT pos, field FROM fields ORDER BY pos`, -1)
	if err != nil {
		return nil, err
	}
	vals := make([][]string, nd)
	for i := range vals {
		vals[i] = make([]string, len(fields))
	}
	vr, err := s.db.QueryContext(ctx, `SELECT doc, pos, value FROM docvars`)
	if err != nil {
		return nil, err
	}
	defer vr.Close()
	for vr.Next() {
		var r, p int
		var v string
		if err = vr.Scan(&r, &p, &v); err != nil {
			return nil, err
		}
		if r < 0 || r >= nd || p < 0 || p >= len(fields) {
			return nil, fmt.Errorf("store: docvar (%d, %d) outside the saved %d x %d table", r, p, nd, len(fields))
		}
		vals[r][p] = v
	}
	if err = vr.Err(); err != nil {
		return nil, err
	}

	dv, err := corp.NewDocvars(fields, vals)
	if err != nil {
		return nil, err
	}
	return dfm.FromCells(docs, feats, cells, dv)
}

// strings - the second column of a (position, text) query; want < 0 skips the count check
func (s *Snapshot) strings(ctx context.Context, q string, want int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var i int
		var v string
		if err = rows.Scan(&i, &v); err != nil {
			return nil, err
		}
		if i != len(out) {
			return nil, fmt.Errorf("store: gap in saved positions at %d", len(out))
		}
		out = append(out, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if want >= 0 && len(out) != want {
		return nil, fmt.Errorf("store: expected %d entries, found %d", want, len(out))
	}
	return out, nil
}

// SaveMatrix - Open(), save, Close()
func SaveMatrix(ctx context.Context, path string, m *dfm.Matrix, meta map[string]string) error {
	s, err := Open(ctx, path)
	if err != nil {
		return err
	}
	if err = s.SaveMatrix(ctx, m, meta); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

// LoadMatrix - Open(), load, Close()
func LoadMatrix(ctx context.Context, path string) (*dfm.Matrix, error) {
	s, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LoadMatrix(ctx)
}
