// Package cache keeps compiled grammars in a sqlite database so that an unchanged grammar is not
// compiled twice.
package cache

import (
	"context"
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"time"

	"github.com/cnf/structhash"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"github.com/nihei9/lr1gen/spec"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
)

var (
	ErrNotFound            = errors.New("the requested table was not found")
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
)

// keySource is what identifies a grammar. The table generated from it depends on nothing else.
type keySource struct {
	Terminals    []string
	NonTerminals []string
	Start        string
	Productions  []string
}

// Key digests a declaration and the productions of a grammar.
func Key(decl *spec.Declaration, prods []string) (string, error) {
	key, err := structhash.Hash(keySource{
		Terminals:    decl.Terminals,
		NonTerminals: decl.NonTerminals,
		Start:        decl.Start,
		Productions:  prods,
	}, 1)
	if err != nil {
		return "", errors.Wrap(err, "failed to digest a grammar")
	}
	return key, nil
}

// Entry describes a cached table.
type Entry struct {
	ID      uuid.UUID
	Key     string
	Name    string
	Created time.Time
}

type Store struct {
	db *sql.DB
}

// Open opens the cache database at a file path, creating the file and its directory when they do
// not exist.
func Open(file string) (*Store, error) {
	if dir := filepath.Dir(file); dir != "" {
		err := os.MkdirAll(dir, 0770)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create the cache directory %s", dir)
		}
	}

	st := &Store{}

	var err error
	st.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return st, st.init()
}

func (st *Store) init() error {
	_, err := st.db.Exec(`CREATE TABLE IF NOT EXISTS tables (
		id TEXT NOT NULL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		data TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

// Put stores a compiled grammar under a key, replacing the one already stored under the key.
func (st *Store) Put(ctx context.Context, key string, cg *gspec.CompiledGrammar) (Entry, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return Entry{}, errors.Wrap(err, "could not generate ID")
	}

	stmt, err := st.db.PrepareContext(ctx, `INSERT INTO tables (id, key, name, data, created) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET id = excluded.id, name = excluded.name, data = excluded.data, created = excluded.created;`)
	if err != nil {
		return Entry{}, wrapDBError(err)
	}
	defer stmt.Close()
	now := time.Now()

	data := rezi.EncBinary(cg)
	encData := base64.StdEncoding.EncodeToString(data)
	_, err = stmt.ExecContext(ctx, newUUID.String(), key, cg.Name, encData, now.Unix())
	if err != nil {
		return Entry{}, wrapDBError(err)
	}

	return Entry{
		ID:      newUUID,
		Key:     key,
		Name:    cg.Name,
		Created: time.Unix(now.Unix(), 0),
	}, nil
}

// Get returns the compiled grammar stored under a key. It returns ErrNotFound when there is none.
func (st *Store) Get(ctx context.Context, key string) (*gspec.CompiledGrammar, error) {
	var id string
	var encData string
	row := st.db.QueryRowContext(ctx, `SELECT id, data FROM tables WHERE key = ?;`, key)
	err := row.Scan(&id, &encData)
	if err != nil {
		return nil, wrapDBError(err)
	}

	data, err := base64.StdEncoding.DecodeString(encData)
	if err != nil {
		return nil, errors.Wrapf(err, "stored table %s is invalid", id)
	}
	cg := &gspec.CompiledGrammar{}
	_, err = rezi.DecBinary(data, cg)
	if err != nil {
		return nil, errors.Wrapf(err, "stored table %s cannot be decoded", id)
	}

	return cg, nil
}

// List returns the cached tables, the newest first.
func (st *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT id, key, name, created FROM tables ORDER BY created DESC, name;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []Entry
	for rows.Next() {
		var e Entry
		var id string
		var created int64
		err = rows.Scan(
			&id,
			&e.Key,
			&e.Name,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		e.ID, err = uuid.Parse(id)
		if err != nil {
			return all, errors.Errorf("stored UUID %q is invalid", id)
		}
		e.Created = time.Unix(created, 0)

		all = append(all, e)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

// Delete removes the table stored under a key. It returns ErrNotFound when there is none.
func (st *Store) Delete(ctx context.Context, key string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM tables WHERE key = ?;`, key)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every cached table and returns how many were removed.
func (st *Store) Clear(ctx context.Context) (int, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM tables;`)
	if err != nil {
		return 0, wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapDBError(err)
	}
	return int(n), nil
}

func (st *Store) Close() error {
	return wrapDBError(st.db.Close())
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return ErrConstraintViolation
		}
		return errors.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
