package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"searchlight/models"
	"searchlight/search"
)

// Observer is notified after a successful database mutation. The lifecycle
// hook dispatcher implements it; mutations never fail on observer errors.
type Observer interface {
	RecordSaved(ctx context.Context, rec *models.Record)
	RecordDeleted(ctx context.Context, rec *models.Record)
}

// QueryResult is one page of records from the native query path
type QueryResult struct {
	Total   int64
	Records []*models.Record
}

// Store is the authoritative PostgreSQL store. It owns the mutation path
// (with the unsafe-write-back guard and hook dispatch) and the native query
// path the fallback orchestrator uses when the search backend is down.
type Store struct {
	pool     *pgxpool.Pool
	observer Observer
	logger   *zap.Logger
}

// NewStore creates a store backed by pool
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// SetObserver registers the mutation observer. Called once at startup.
func (s *Store) SetObserver(o Observer) {
	s.observer = o
}

// Get fetches one record by primary key
func (s *Store) Get(ctx context.Context, entity *models.EntityType, id string) (*models.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		columnList(entity), entity.FullTableName(), entity.PrimaryKey)

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, entity.Name, id)
	}

	return NewMapper(entity).RowToRecord(rows)
}

// Save upserts one record keyed by its primary identifier. Records that were
// materialized from the search index are rejected before any I/O. Field names
// become column identifiers in the statement, so names outside the entity's
// declared columns are rejected before the statement is built.
func (s *Store) Save(ctx context.Context, rec *models.Record) error {
	if rec.FromIndex() {
		return fmt.Errorf("%w: %s", ErrUnsafeWriteBack, rec)
	}

	entity := rec.Entity
	cols := make([]string, 0, len(rec.Fields))
	for col := range rec.Fields {
		if !validColumn(entity, col) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, entity.Name, col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = rec.Fields[col]
		if col != entity.PrimaryKey {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		entity.FullTableName(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		entity.PrimaryKey,
		strings.Join(updates, ", "))

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	if s.observer != nil {
		s.observer.RecordSaved(ctx, rec)
	}
	return nil
}

// Delete removes one record by primary key. Index-sourced records are
// rejected before any I/O.
func (s *Store) Delete(ctx context.Context, rec *models.Record) error {
	if rec.FromIndex() {
		return fmt.Errorf("%w: %s", ErrUnsafeWriteBack, rec)
	}

	entity := rec.Entity
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		entity.FullTableName(), entity.PrimaryKey)

	tag, err := s.pool.Exec(ctx, query, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec)
	}

	if s.observer != nil {
		s.observer.RecordDeleted(ctx, rec)
	}
	return nil
}

// Query is the native query path for degraded mode: equality filters, ILIKE
// free-text over the configured search columns, ordering and limit/offset,
// built from the same spec the index manager consumes.
//
// Filter and ordering fields were resolved against configured allowlists by
// the query translation layer, so the identifiers interpolated here are
// operator-supplied configuration, never raw request input.
func (s *Store) Query(ctx context.Context, entity *models.EntityType, spec search.Spec) (*QueryResult, error) {
	var (
		where []string
		args  []any
	)

	for _, f := range spec.Filters {
		args = append(args, f.Value)
		where = append(where, fmt.Sprintf("%s::text = $%d", f.Field, len(args)))
	}

	if spec.Term != "" && entity.List != nil && len(entity.List.SearchColumns) > 0 {
		args = append(args, "%"+spec.Term+"%")
		n := len(args)
		likes := make([]string, 0, len(entity.List.SearchColumns))
		for _, col := range entity.List.SearchColumns {
			likes = append(likes, fmt.Sprintf("%s ILIKE $%d", col, n))
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", entity.FullTableName(), whereClause)
	var total int64
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		columnList(entity), entity.FullTableName(), whereClause,
		orderClause(columnOrdering(entity, spec.Ordering)), spec.PageSize, spec.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	mapper := NewMapper(entity)
	result := &QueryResult{Total: total}
	for rows.Next() {
		rec, err := mapper.RowToRecord(rows)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return result, nil
}

// IsNotFound reports whether err means the requested row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// validColumn reports whether name may be used as a column identifier for
// this entity. With declared columns the name must be on that list; without,
// it must at least be a plain identifier.
func validColumn(entity *models.EntityType, name string) bool {
	if name == entity.PrimaryKey {
		return true
	}
	if len(entity.Columns) > 0 {
		return contains(entity.Columns, name)
	}
	return plainIdentifier(name)
}

func plainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// columnOrdering drops ordering fields that are not database columns. The
// translator also admits index-only fields, which are valid for the search
// backend but would break the fallback SQL.
func columnOrdering(entity *models.EntityType, ordering []string) []string {
	if len(entity.Columns) == 0 {
		return ordering
	}
	kept := make([]string, 0, len(ordering))
	for _, field := range ordering {
		name := strings.TrimPrefix(field, "-")
		if name == entity.PrimaryKey || contains(entity.Columns, name) {
			kept = append(kept, field)
		}
	}
	return kept
}

func columnList(entity *models.EntityType) string {
	if len(entity.Columns) == 0 {
		return "*"
	}
	cols := entity.Columns
	if !contains(cols, entity.PrimaryKey) {
		cols = append([]string{entity.PrimaryKey}, cols...)
	}
	return strings.Join(cols, ", ")
}

// orderClause converts "-field" ordering notation into SQL
func orderClause(ordering []string) string {
	if len(ordering) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ordering))
	for _, field := range ordering {
		if strings.HasPrefix(field, "-") {
			parts = append(parts, strings.TrimPrefix(field, "-")+" DESC")
		} else {
			parts = append(parts, field+" ASC")
		}
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}
