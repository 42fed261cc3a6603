package repositories

import (
	"context"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// serviceRepo implements repositories.ServiceRepository
type serviceRepo struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *gorm.DB) repositories.ServiceRepository {
	return &serviceRepo{db: db}
}

func (r *serviceRepo) Create(ctx context.Context, service *entities.Service) error {
	if service.ID == uuid.Nil {
		service.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	service.CreatedAt, service.UpdatedAt = now, now
	return GetDB(ctx, r.db).Create(r.toModel(service)).Error
}

func (r *serviceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Service, error) {
	var m models.Service
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrNotFound)
	}
	return r.toEntity(&m), nil
}

// GetByIDs returns the live services among ids, in no particular order
func (r *serviceRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Service, error) {
	if len(ids) == 0 {
		return []*entities.Service{}, nil
	}
	var ms []models.Service
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *serviceRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, activeOnly bool) ([]*entities.Service, error) {
	query := GetDB(ctx, r.db).Where("merchant_id = ?", merchantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var ms []models.Service
	if err := query.Order("category ASC, name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *serviceRepo) Update(ctx context.Context, service *entities.Service) error {
	service.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Service{}).Where("id = ?", service.ID).Updates(map[string]interface{}{
		"name":             service.Name,
		"description":      service.Description,
		"category":         string(service.Category),
		"price":            service.Price,
		"duration_minutes": service.DurationMinutes,
		"is_active":        service.IsActive,
		"updated_at":       service.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete hides the service; booking snapshots keep pointing at it
func (r *serviceRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.Service{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *serviceRepo) toModel(s *entities.Service) *models.Service {
	return &models.Service{
		ID:              s.ID,
		MerchantID:      s.MerchantID,
		Name:            s.Name,
		Description:     s.Description,
		Category:        string(s.Category),
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (r *serviceRepo) toEntity(m *models.Service) *entities.Service {
	return &entities.Service{
		ID:              m.ID,
		MerchantID:      m.MerchantID,
		Name:            m.Name,
		Description:     m.Description,
		Category:        entities.ServiceCategory(m.Category),
		Price:           m.Price,
		DurationMinutes: m.DurationMinutes,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *serviceRepo) toEntities(ms []models.Service) []*entities.Service {
	out := make([]*entities.Service, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out
}
