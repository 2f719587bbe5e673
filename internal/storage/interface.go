package storage

import (
	"context"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	apperrors "github.com/mtg9ny/recipe-backend/internal/errors"
)

// ErrNotFound is returned when an id does not resolve to a record. Malformed
// ids resolve to ErrNotFound as well.
var ErrNotFound = apperrors.New(apperrors.ErrCodeNotFound, "record not found")

// Storage is the contract of one document collection.
type Storage interface {
	Count(ctx context.Context) (int64, error)
	// List returns every record projected to its editable fields and id.
	// There is no pagination.
	List(ctx context.Context) ([]*domain.Record, error)
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	Create(ctx context.Context, fields domain.Fields) (*domain.Record, error)
	// Update replaces all editable fields of the record.
	Update(ctx context.Context, id string, fields domain.Fields) (*domain.Record, error)
	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// GetByIDs serves the dataloader. Missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Record, error)
}

// Backend opens collections on one database connection.
type Backend interface {
	Open(ctx context.Context, kind domain.Kind) (Storage, error)
	Close(ctx context.Context) error
}

// Internal wraps a driver error as a store failure of the given collection.
func Internal(collection, op string, err error) error {
	return apperrors.WrapWithContext(apperrors.ErrCodeInternal, "failed to "+op, err,
		map[string]any{"collection": collection})
}
