package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"forge/internal/store"
)

// Document is one row of the schema-less document table. The field bag
// lives in a jsonb column; write timestamps are real columns so ordered
// listings do not depend on document contents.
type Document struct {
	Collection string         `gorm:"primaryKey;type:varchar(50)"`
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Document{})
}

func (s *Store) List(ctx context.Context, collection string, q store.Query) ([]store.Record, error) {
	query := s.db.WithContext(ctx).
		Model(&Document{}).
		Where("collection = ?", collection)
	filtered := false
	for field, want := range q.Eq {
		query = query.Where("data->>? = ?", field, want)
		filtered = true
	}
	switch q.OrderBy {
	case "":
	case "createdAt":
		query = query.Order(orderClause("created_at", q.Desc))
		filtered = true
	case "updatedAt":
		query = query.Order(orderClause("updated_at", q.Desc))
		filtered = true
	default:
		query = query.Order(jsonOrderClause(q.OrderBy, q.Desc))
		filtered = true
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var docs []Document
	if err := query.Find(&docs).Error; err != nil {
		if filtered {
			// Surface as a query rejection so accessors can retry with a
			// plain fetch and filter in memory.
			return nil, &store.QueryError{Collection: collection, Err: err}
		}
		return nil, err
	}
	records := make([]store.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := toRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Record, error) {
	var doc Document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, err
	}
	return toRecord(doc)
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (store.Record, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return store.Record{}, err
	}
	doc := Document{
		Collection: collection,
		ID:         uuid.NewString(),
		Data:       datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return store.Record{}, err
	}
	return toRecord(doc)
}

func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) (store.Record, error) {
	var out store.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		err := tx.Where("collection = ? AND id = ?", collection, id).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		data := map[string]any{}
		if len(doc.Data) > 0 {
			if err := json.Unmarshal(doc.Data, &data); err != nil {
				return err
			}
		}
		// Shallow merge: top-level keys replace stored values wholesale.
		for k, v := range partial {
			data[k] = v
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		doc.Data = datatypes.JSON(raw)
		doc.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&doc).Error; err != nil {
			return err
		}
		out, err = toRecord(doc)
		return err
	})
	if err != nil {
		return store.Record{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Document{}).Error
}

// counterFields are the only document fields Increment will touch. The
// field name is spliced into a jsonb expression, so it must come from
// this fixed set, never from request input.
var counterFields = map[string]bool{
	"views": true,
	"likes": true,
}

// Increment adds delta to a numeric document field in a single UPDATE so
// concurrent counters do not lose writes. Missing fields count from 0;
// the field must not hold a non-numeric string.
func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	if !counterFields[field] {
		return fmt.Errorf("increment %s: field %q is not a counter", collection, field)
	}
	expr := fmt.Sprintf(
		"jsonb_set(COALESCE(data, '{}'::jsonb), '{%s}', to_jsonb(COALESCE((data->>'%s')::numeric, 0) + ?))",
		field, field,
	)
	res := s.db.WithContext(ctx).
		Model(&Document{}).
		Where("collection = ? AND id = ?", collection, id).
		Update("data", gorm.Expr(expr, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toRecord(doc Document) (store.Record, error) {
	data := map[string]any{}
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &data); err != nil {
			return store.Record{}, err
		}
	}
	return store.Record{
		ID:        doc.ID,
		Data:      data,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func orderClause(column string, desc bool) string {
	if desc {
		return column + " desc"
	}
	return column + " asc"
}

func jsonOrderClause(field string, desc bool) string {
	clause := fmt.Sprintf("data->>'%s'", field)
	if desc {
		return clause + " desc"
	}
	return clause + " asc"
}
