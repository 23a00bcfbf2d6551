package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const occurrenceColumns = `id, title, notes, at, recurrence_type, recurrence_end, recurrence_weekdays, recurrence_interval_minutes, completed, archived, archived_at, created_at`

func (r *SQLiteRepository) CreateOccurrence(ctx context.Context, in OccurrenceRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO occurrences (`+occurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		occurrenceArgs(in)...,
	)
	return err
}

// CreateOccurrences inserts a whole expansion batch in one transaction, so a
// recurring reminder is persisted completely or not at all.
func (r *SQLiteRepository) CreateOccurrences(ctx context.Context, in []OccurrenceRow) error {
	if len(in) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, row := range in {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO occurrences (`+occurrenceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			occurrenceArgs(row)...,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetOccurrence(ctx context.Context, id string) (OccurrenceRow, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+occurrenceColumns+`
		FROM occurrences WHERE id = ?`, id)
	out, err := scanOccurrence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OccurrenceRow{}, ErrNotFound
		}
		return OccurrenceRow{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateOccurrence(ctx context.Context, in OccurrenceRow) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE occurrences
		SET title = ?, notes = ?, at = ?, recurrence_type = ?, recurrence_end = ?, recurrence_weekdays = ?, recurrence_interval_minutes = ?, completed = ?, archived = ?, archived_at = ?
		WHERE id = ?`,
		in.Title, in.Notes, mustTime(in.At), in.RecurrenceType, nullTime(in.RecurrenceEnd),
		in.RecurrenceWeekdays, in.IntervalMinutes, boolInt(in.Completed), boolInt(in.Archived),
		nullTime(in.ArchivedAt), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteOccurrence(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM occurrences WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// DeleteOccurrences removes a set of ids in one transaction. Missing ids are
// not an error; series deletion computes the doomed set up front.
func (r *SQLiteRepository) DeleteOccurrences(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM occurrences WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListOccurrences(ctx context.Context, filter OccurrenceListFilter) ([]OccurrenceRow, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM occurrences`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Title != "" {
		clauses = append(clauses, "title = ?")
		args = append(args, filter.Title)
	}
	if filter.Archived != nil {
		clauses = append(clauses, "archived = ?")
		args = append(args, boolInt(*filter.Archived))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at ASC, at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OccurrenceRow, 0)
	for rows.Next() {
		item, scanErr := scanOccurrence(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ReplaceAllOccurrences swaps the whole table for the given set in one
// transaction. The store flushes through this after every applied mutation.
func (r *SQLiteRepository) ReplaceAllOccurrences(ctx context.Context, in []OccurrenceRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM occurrences`); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, row := range in {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO occurrences (`+occurrenceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			occurrenceArgs(row)...,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func occurrenceArgs(in OccurrenceRow) []any {
	return []any{
		in.ID, in.Title, in.Notes, mustTime(in.At), in.RecurrenceType,
		nullTime(in.RecurrenceEnd), in.RecurrenceWeekdays, in.IntervalMinutes,
		boolInt(in.Completed), boolInt(in.Archived), nullTime(in.ArchivedAt), mustTime(in.CreatedAt),
	}
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(s scanner) (OccurrenceRow, error) {
	var out OccurrenceRow
	var at string
	var recEnd sql.NullString
	var completed int
	var archived int
	var archivedAt sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Notes, &at, &out.RecurrenceType, &recEnd,
		&out.RecurrenceWeekdays, &out.IntervalMinutes, &completed, &archived, &archivedAt, &created); err != nil {
		return OccurrenceRow{}, err
	}
	atTime, err := parseRequiredTime(at)
	if err != nil {
		return OccurrenceRow{}, err
	}
	endTime, err := parseNullableTime(recEnd)
	if err != nil {
		return OccurrenceRow{}, err
	}
	archivedTime, err := parseNullableTime(archivedAt)
	if err != nil {
		return OccurrenceRow{}, err
	}
	createdTime, err := parseRequiredTime(created)
	if err != nil {
		return OccurrenceRow{}, err
	}
	out.At = atTime
	out.RecurrenceEnd = endTime
	out.Completed = completed == 1
	out.Archived = archived == 1
	out.ArchivedAt = archivedTime
	out.CreatedAt = createdTime
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
