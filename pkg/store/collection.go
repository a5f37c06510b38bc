package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"locallibrary/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is implemented by every persisted catalog entity.
type Record interface {
	PrimaryKey() string
}

// Filter holds equality predicates keyed by field name, e.g. {"author": id}.
type Filter map[string]any

// relation narrows a query on a field that does not live in the
// collection's own table.
type relation func(db, root *gorm.DB, value any) *gorm.DB

// Collection is a gorm-backed collection of one entity kind.
type Collection[T Record] struct {
	db       *gorm.DB
	kind     string
	columns  map[string]string
	related  map[string]relation
	preloads []string

	// afterWrite runs in the write transaction once the row exists.
	afterWrite func(tx *gorm.DB, id string, entity *T) error
	// beforeDelete runs in the delete transaction before the row goes.
	beforeDelete func(tx *gorm.DB, id string) error
}

func (c *Collection[T]) Kind() string { return c.kind }

// FindByID returns the entity or nil when no row has that identifier.
func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := c.query(ctx).Where("id = ?", id).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Store(err, fmt.Sprintf("find %s %s", c.kind, id))
	}
	return &entity, nil
}

// FindOne returns the first entity matching filter, or nil.
func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	tx, err := c.filtered(c.query(ctx), filter)
	if err != nil {
		return nil, err
	}
	var entity T
	err = tx.Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Store(err, "find one "+c.kind)
	}
	return &entity, nil
}

// FindMany lists entities matching filter, sorted ascending by the named
// field when sortBy is not empty.
func (c *Collection[T]) FindMany(ctx context.Context, filter Filter, sortBy string) ([]T, error) {
	tx, err := c.filtered(c.query(ctx), filter)
	if err != nil {
		return nil, err
	}
	if sortBy != "" {
		column, ok := c.columns[sortBy]
		if !ok {
			return nil, fmt.Errorf("%s: unknown sort field %q", c.kind, sortBy)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: column}})
	}

	entities := []T{}
	if err := tx.Find(&entities).Error; err != nil {
		return nil, apperrors.Store(err, "list "+c.kind)
	}
	return entities, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	tx, err := c.filtered(c.db.WithContext(ctx).Model(new(T)), filter)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, apperrors.Store(err, "count "+c.kind)
	}
	return n, nil
}

// Insert persists a new entity and returns its assigned identifier.
func (c *Collection[T]) Insert(ctx context.Context, entity *T) (string, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return err
		}
		if c.afterWrite != nil {
			return c.afterWrite(tx, (*entity).PrimaryKey(), entity)
		}
		return nil
	})
	if err != nil {
		return "", c.writeError(err, "insert "+c.kind)
	}
	return (*entity).PrimaryKey(), nil
}

// UpdateByID replaces the stored fields of id with entity's, keeping the
// identifier and creation time, and returns the stored result.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, entity *T) (*T, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(new(T)).
			Where("id = ?", id).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(entity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFoundf("%s %s not found", c.kind, id)
		}
		if c.afterWrite != nil {
			return c.afterWrite(tx, id, entity)
		}
		return nil
	})
	if err != nil {
		return nil, c.writeError(err, fmt.Sprintf("update %s %s", c.kind, id))
	}
	return c.FindByID(ctx, id)
}

// DeleteByID removes id. Deleting a missing identifier is not an error.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.beforeDelete != nil {
			if err := c.beforeDelete(tx, id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(new(T)).Error
	})
	if err != nil {
		return apperrors.Store(err, fmt.Sprintf("delete %s %s", c.kind, id))
	}
	return nil
}

func (c *Collection[T]) query(ctx context.Context) *gorm.DB {
	tx := c.db.WithContext(ctx)
	for _, p := range c.preloads {
		tx = tx.Preload(p)
	}
	return tx
}

func (c *Collection[T]) filtered(tx *gorm.DB, filter Filter) (*gorm.DB, error) {
	// Stable field order keeps generated SQL deterministic.
	fields := make([]string, 0, len(filter))
	for field := range filter {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := filter[field]
		if rel, ok := c.related[field]; ok {
			tx = rel(tx, c.db, value)
			continue
		}
		column, ok := c.columns[field]
		if !ok {
			return nil, fmt.Errorf("%s: unknown filter field %q", c.kind, field)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: column}, Value: value})
	}
	return tx, nil
}

func (c *Collection[T]) writeError(err error, op string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(err, apperrors.CodeConflict, op+": duplicate")
	}
	return apperrors.Store(err, op)
}
