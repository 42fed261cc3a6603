package repositories

import (
	"context"

	"barberq.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// MerchantRepository defines barbershop data operations
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entities.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error)
	Update(ctx context.Context, merchant *entities.Merchant) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error)
	List(ctx context.Context, filter entities.MerchantFilter, limit, offset int) ([]*entities.Merchant, int64, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Merchant, error)
	// ListLocated returns active, verified barbershops that have coordinates
	// inside the given bounding box.
	ListLocated(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*entities.Merchant, error)
	SetCurrentTurn(ctx context.Context, id uuid.UUID, turn int) error
	ResetAllTurns(ctx context.Context) (int64, error)
}

// ServiceRepository defines service catalog operations
type ServiceRepository interface {
	Create(ctx context.Context, service *entities.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Service, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, activeOnly bool) ([]*entities.Service, error)
	Update(ctx context.Context, service *entities.Service) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
