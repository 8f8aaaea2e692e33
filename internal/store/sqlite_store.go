//go:build cgo

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"

	"mediaroll/internal/media"
)

// SQLiteStore keeps the asset index in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var sqlColumns = map[media.Column]string{
	media.ColumnMediaType:    "media_type",
	media.ColumnMimeType:     "mime_type",
	media.ColumnBucket:       "bucket",
	media.ColumnDateTaken:    "date_taken",
	media.ColumnDateAdded:    "date_added",
	media.ColumnDateModified: "date_modified",
	media.ColumnPath:         "path",
}

const assetColumns = "id, mime_type, bucket, date_taken, date_added, date_modified, width, height, size, path, orientation"

func (s *SQLiteStore) Initialize(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return translateError(err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	s.db = db

	sqlStmt := `CREATE TABLE IF NOT EXISTS assets(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		media_type INTEGER NOT NULL,
		mime_type TEXT NOT NULL,
		bucket TEXT NOT NULL DEFAULT '',
		date_taken INTEGER,
		date_added INTEGER NOT NULL,
		date_modified INTEGER NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		path TEXT UNIQUE NOT NULL,
		orientation INTEGER
	);
	CREATE INDEX IF NOT EXISTS assets_newest ON assets(date_added DESC, date_modified DESC);
	CREATE INDEX IF NOT EXISTS assets_bucket ON assets(bucket);`
	if _, err = s.db.Exec(sqlStmt); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM assets")
	return translateError(err)
}

// Query runs one windowed, ordered select. Rows tied on the ordering keys
// fall back to id so consecutive windows do not overlap.
func (s *SQLiteStore) Query(ctx context.Context, where media.Predicate, order media.Ordering, offset, limit int) ([]media.RawAssetRecord, error) {
	clause, args, err := compileSQL(where, nil)
	if err != nil {
		return nil, err
	}
	orderBy, err := compileOrdering(order)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + assetColumns + " FROM assets WHERE " + clause + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	return s.scanRows(rows)
}

func (s *SQLiteStore) Albums(ctx context.Context, where media.Predicate) ([]media.Album, error) {
	clause, args, err := compileSQL(where, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT bucket, COUNT(*) FROM assets WHERE ("+clause+") AND bucket <> '' GROUP BY bucket ORDER BY bucket", args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	albums := []media.Album{}
	for rows.Next() {
		var a media.Album
		if err := rows.Scan(&a.Title, &a.Count); err != nil {
			return nil, translateError(err)
		}
		albums = append(albums, a)
	}
	return albums, translateError(rows.Err())
}

func (s *SQLiteStore) Insert(ctx context.Context, rec media.RawAssetRecord) (string, error) {
	if rec.ID != "" {
		if err := s.InsertBatch(ctx, []media.RawAssetRecord{rec}); err != nil {
			return "", err
		}
		return rec.ID, nil
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO assets (media_type, mime_type, bucket, date_taken, date_added, date_modified, width, height, size, path, orientation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		insertArgs(rec)...)
	if err != nil {
		return "", translateError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", translateError(err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLiteStore) InsertBatch(ctx context.Context, batch []media.RawAssetRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translateError(err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO assets (id, media_type, mime_type, bucket, date_taken, date_added, date_modified, width, height, size, path, orientation) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return translateError(err)
	}
	defer stmt.Close()

	for _, rec := range batch {
		var id any
		if rec.ID != "" {
			n, err := strconv.ParseInt(rec.ID, 10, 64)
			if err != nil || n <= 0 {
				tx.Rollback()
				return fmt.Errorf("asset id %q is not a positive integer", rec.ID)
			}
			id = n
		}
		if _, err := stmt.ExecContext(ctx, append([]any{id}, insertArgs(rec)...)...); err != nil {
			tx.Rollback()
			return translateError(err)
		}
	}
	return translateError(tx.Commit())
}

func insertArgs(rec media.RawAssetRecord) []any {
	var taken, orientation any
	if rec.DateTaken != 0 {
		taken = rec.DateTaken
	}
	if rec.Orientation != nil {
		orientation = *rec.Orientation
	}
	return []any{
		int(media.KindForMimeType(rec.MimeType)), rec.MimeType, rec.Bucket,
		taken, rec.DateAdded, rec.DateModified,
		rec.Width, rec.Height, rec.Size, rec.Path, orientation,
	}
}

func (s *SQLiteStore) DeletePaths(ctx context.Context, paths []string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translateError(err)
	}
	stmt, err := tx.PrepareContext(ctx, "DELETE FROM assets WHERE path = ?")
	if err != nil {
		tx.Rollback()
		return nil, translateError(err)
	}
	defer stmt.Close()

	deleted := []string{}
	for _, path := range paths {
		res, err := stmt.ExecContext(ctx, path)
		if err != nil {
			tx.Rollback()
			return nil, translateError(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			deleted = append(deleted, path)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, translateError(err)
	}
	return deleted, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets").Scan(&count)
	return count, translateError(err)
}

func (s *SQLiteStore) GetAllPaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM assets")
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err == nil {
			paths = append(paths, path)
		}
	}
	return paths, translateError(rows.Err())
}

func (s *SQLiteStore) RemoveStaleEntries(ctx context.Context) (int, error) {
	paths, err := s.GetAllPaths(ctx)
	if err != nil {
		return 0, err
	}

	var stale []string
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, path)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	removed, err := s.DeletePaths(ctx, stale)
	return len(removed), err
}

func (s *SQLiteStore) scanRows(rows *sql.Rows) ([]media.RawAssetRecord, error) {
	defer rows.Close()
	results := []media.RawAssetRecord{}
	for rows.Next() {
		var (
			rec         media.RawAssetRecord
			id          int64
			taken       sql.NullInt64
			orientation sql.NullInt64
		)
		err := rows.Scan(&id, &rec.MimeType, &rec.Bucket, &taken, &rec.DateAdded, &rec.DateModified,
			&rec.Width, &rec.Height, &rec.Size, &rec.Path, &orientation)
		if err != nil {
			return nil, translateError(err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.DateTaken = taken.Int64
		if orientation.Valid {
			o := int(orientation.Int64)
			rec.Orientation = &o
		}
		results = append(results, rec)
	}
	return results, translateError(rows.Err())
}

// compileSQL renders p as a WHERE clause with positional arguments.
func compileSQL(p media.Predicate, args []any) (string, []any, error) {
	column := func(c media.Column) (string, error) {
		name, ok := sqlColumns[c]
		if !ok {
			return "", fmt.Errorf("%w: unknown column %q", media.ErrInvalidFilter, c)
		}
		return name, nil
	}

	switch p := p.(type) {
	case nil:
		return "1 = 1", args, nil
	case media.Eq:
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", append(args, p.Value), nil
	case media.In:
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		if len(p.Values) == 0 {
			return "1 = 0", args, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(p.Values)), ", ")
		return col + " IN (" + marks + ")", append(args, p.Values...), nil
	case media.Gt:
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " > ?", append(args, p.Value), nil
	case media.Lte:
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " <= ?", append(args, p.Value), nil
	case media.IsNull:
		col, err := column(p.Column)
		if err != nil {
			return "", nil, err
		}
		return col + " IS NULL", args, nil
	case media.And:
		return compileJunction(p, " AND ", "1 = 1", args)
	case media.Or:
		return compileJunction(p, " OR ", "1 = 0", args)
	}
	return "", nil, fmt.Errorf("%w: unsupported predicate %T", media.ErrInvalidFilter, p)
}

func compileJunction(children []media.Predicate, sep, empty string, args []any) (string, []any, error) {
	if len(children) == 0 {
		return empty, args, nil
	}
	parts := make([]string, 0, len(children))
	for _, c := range children {
		part, next, err := compileSQL(c, args)
		if err != nil {
			return "", nil, err
		}
		args = next
		parts = append(parts, "("+part+")")
	}
	return strings.Join(parts, sep), args, nil
}

func compileOrdering(order media.Ordering) (string, error) {
	parts := make([]string, 0, len(order)+1)
	for _, k := range order {
		col, ok := sqlColumns[k.Column]
		if !ok {
			return "", fmt.Errorf("%w: unknown sort column %q", media.ErrInvalidFilter, k.Column)
		}
		if k.Descending {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	parts = append(parts, "id DESC")
	return strings.Join(parts, ", "), nil
}

// translateError maps driver failures onto the media sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly, sqlite3.ErrCantOpen:
			return fmt.Errorf("%w: %v", media.ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", media.ErrStoreUnavailable, err)
}
