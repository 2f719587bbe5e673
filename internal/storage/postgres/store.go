package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/storage"
)

// Backend holds the gorm connection shared by every table.
type Backend struct {
	db *gorm.DB
}

// New connects to PostgreSQL. Verbose enables gorm's SQL logging.
func New(ctx context.Context, dsn string, verbose bool) (*Backend, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Backend{db: db}, nil
}

// Open creates the table for kind if it does not exist and returns a store
// bound to it.
func (b *Backend) Open(ctx context.Context, kind domain.Kind) (storage.Storage, error) {
	if err := b.db.WithContext(ctx).Table(kind.Collection).AutoMigrate(&domain.Record{}); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", kind.Collection, err)
	}
	return &Store{db: b.db, table: kind.Collection}, nil
}

func (b *Backend) Close(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Store implements storage.Storage on one PostgreSQL table.
type Store struct {
	db    *gorm.DB
	table string
}

func (s *Store) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

// validID filters ids that would otherwise make postgres reject the query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.query(ctx).Count(&n).Error; err != nil {
		return 0, storage.Internal(s.table, "count records", err)
	}
	return n, nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Record, error) {
	var records []*domain.Record
	err := s.query(ctx).
		Select("id", "title", "description", "instructions", "ingredients").
		Find(&records).Error
	if err != nil {
		return nil, storage.Internal(s.table, "list records", err)
	}
	return records, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	var rec domain.Record
	if err := s.query(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Internal(s.table, "get record", err)
	}
	return &rec, nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Record, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	result := make(map[string]*domain.Record, len(valid))
	if len(valid) == 0 {
		return result, nil
	}

	var records []*domain.Record
	if err := s.query(ctx).Where("id IN ?", valid).Find(&records).Error; err != nil {
		return nil, storage.Internal(s.table, "get records", err)
	}
	for _, r := range records {
		result[r.ID] = r
	}
	return result, nil
}

func (s *Store) Create(ctx context.Context, fields domain.Fields) (*domain.Record, error) {
	rec := &domain.Record{
		ID:           uuid.NewString(),
		Title:        fields.Title,
		Description:  fields.Description,
		Instructions: fields.Instructions,
		Ingredients:  fields.Ingredients,
	}
	if rec.Ingredients == nil {
		rec.Ingredients = domain.Ingredients{}
	}
	if err := s.query(ctx).Create(rec).Error; err != nil {
		return nil, storage.Internal(s.table, "insert record", err)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, id string, fields domain.Fields) (*domain.Record, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	rec := domain.Record{
		ID:           id,
		Title:        fields.Title,
		Description:  fields.Description,
		Instructions: fields.Instructions,
		Ingredients:  fields.Ingredients,
	}
	if rec.Ingredients == nil {
		rec.Ingredients = domain.Ingredients{}
	}

	res := s.query(ctx).
		Where("id = ?", id).
		Select("title", "description", "instructions", "ingredients").
		Updates(&rec)
	if res.Error != nil {
		return nil, storage.Internal(s.table, "update record", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if err := s.query(ctx).Where("id = ?", id).Delete(&domain.Record{}).Error; err != nil {
		return storage.Internal(s.table, "delete record", err)
	}
	return nil
}
