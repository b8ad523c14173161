// Package store persists glucose readings behind the operations the REST API exposes.
package store

import (
	"context"

	"github.com/slickwilli/neoview/models"
)

// Store keeps readings ordered by the time the backend received them.
// Latest returns nil without error when nothing is stored.
type Store interface {
	Insert(ctx context.Context, r models.Reading) error
	Latest(ctx context.Context) (*models.Reading, error)
	History(ctx context.Context, limit int) ([]models.Reading, error)
	Stats(ctx context.Context) (models.Stats, error)
	Clear(ctx context.Context) (int, error)
}
