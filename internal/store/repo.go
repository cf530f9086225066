package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo is the owner-scoped CRUD contract shared by every resource table.
type Repo[T any] struct {
	db    *gorm.DB
	table string
	owned Scope
}

func NewRepo[T any](db *gorm.DB, table string, owned Scope) *Repo[T] {
	return &Repo[T]{db: db, table: table, owned: owned}
}

// Scoped returns a query builder on T already restricted to userID's rows.
func (r *Repo[T]) Scoped(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T)).Scopes(r.owned(userID))
}

func (r *Repo[T]) col(name string) string {
	return r.table + "." + name
}

func (r *Repo[T]) List(ctx context.Context, userID string) ([]T, error) {
	out := make([]T, 0)
	if err := r.Scoped(ctx, userID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, translate(err))
	}
	return out, nil
}

func (r *Repo[T]) Get(ctx context.Context, userID, id string) (*T, error) {
	var out T
	if err := r.Scoped(ctx, userID).Where(r.col("id")+" = ?", id).Take(&out).Error; err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.table, id, translate(err))
	}
	return &out, nil
}

// Exists reports whether id is one of userID's rows.
func (r *Repo[T]) Exists(ctx context.Context, userID, id string) (bool, error) {
	var n int64
	if err := r.Scoped(ctx, userID).Where(r.col("id")+" = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count %s: %w", r.table, translate(err))
	}
	return n > 0, nil
}

// Create inserts row. The caller sets the owner; ids come from model hooks.
func (r *Repo[T]) Create(ctx context.Context, row *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.table, translate(err))
	}
	return nil
}

// CreateBatch inserts rows with a single statement per batch.
func (r *Repo[T]) CreateBatch(ctx context.Context, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).CreateInBatches(&rows, 100).Error; err != nil {
		return fmt.Errorf("create %s batch: %w", r.table, translate(err))
	}
	return nil
}

// Update applies values to the row id owned by userID and returns the result.
// No matching row means ErrNotFound; owner columns must not be in values.
func (r *Repo[T]) Update(ctx context.Context, userID, id string, values map[string]any) (*T, error) {
	var out T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).Scopes(r.owned(userID)).Where(r.col("id")+" = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(new(T)).Scopes(r.owned(userID)).Where(r.col("id")+" = ?", id).Take(&out).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.table, id, translate(err))
	}
	return &out, nil
}

// Delete removes the row id owned by userID.
func (r *Repo[T]) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Scopes(r.owned(userID)).Where(r.col("id")+" = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %s %s: %w", r.table, id, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %s: %w", r.table, id, ErrNotFound)
	}
	return nil
}

// BulkDelete removes every id in ids that userID owns and returns the ids that
// were actually deleted. Unknown or foreign ids are skipped silently.
func (r *Repo[T]) BulkDelete(ctx context.Context, userID string, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return deleted, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(new(T)).Scopes(r.owned(userID)).
			Where(r.col("id")+" IN ?", ids).
			Pluck(r.col("id"), &deleted).Error; err != nil {
			return err
		}
		if len(deleted) == 0 {
			return nil
		}
		return tx.Scopes(r.owned(userID)).Where(r.col("id")+" IN ?", deleted).Delete(new(T)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("bulk delete %s: %w", r.table, translate(err))
	}
	if deleted == nil {
		deleted = []string{}
	}
	return deleted, nil
}
