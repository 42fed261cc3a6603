package repositories

import (
	"context"
	"strings"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/internal/infrastructure/models"
	"barberq.backend/pkg/utils"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// merchantRepo implements repositories.MerchantRepository
type merchantRepo struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) repositories.MerchantRepository {
	return &merchantRepo{db: db}
}

// Create creates a new barbershop
func (r *merchantRepo) Create(ctx context.Context, merchant *entities.Merchant) error {
	if merchant.ID == uuid.Nil {
		merchant.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	merchant.CreatedAt, merchant.UpdatedAt = now, now

	if err := GetDB(ctx, r.db).Create(r.toModel(merchant)).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a barbershop by ID
func (r *merchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	var m models.Merchant
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, domainerrors.ErrNotFound)
	}
	return r.toEntity(&m), nil
}

// Update saves every editable column
func (r *merchantRepo) Update(ctx context.Context, merchant *entities.Merchant) error {
	merchant.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Merchant{}).Where("id = ?", merchant.ID).Updates(map[string]interface{}{
		"name":                 merchant.Name,
		"slug":                 merchant.Slug,
		"description":          merchant.Description,
		"address":              merchant.Address,
		"latitude":             merchant.Latitude.Ptr(),
		"longitude":            merchant.Longitude.Ptr(),
		"phone_number":         merchant.PhoneNumber,
		"email":                merchant.Email.Ptr(),
		"is_active":            merchant.IsActive,
		"is_verified":          merchant.IsVerified,
		"booking_advance_days": merchant.BookingAdvanceDays,
		"updated_at":           merchant.UpdatedAt,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SlugExists checks slugs of live and soft-deleted barbershops
func (r *merchantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Unscoped().Model(&models.Merchant{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ExistsByOwnerAndName reports whether the owner already runs a shop with that name
func (r *merchantRepo) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Merchant{}).
		Where("owner_id = ? AND LOWER(name) = ?", ownerID, strings.ToLower(name)).
		Count(&count).Error
	return count > 0, err
}

// List returns one page of barbershops ordered by name
func (r *merchantRepo) List(ctx context.Context, filter entities.MerchantFilter, limit, offset int) ([]*entities.Merchant, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Merchant{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Merchant
	query = query.Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return r.toEntities(ms), total, nil
}

// ListByOwner returns every barbershop of one owner
func (r *merchantRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Merchant, error) {
	var ms []models.Merchant
	if err := GetDB(ctx, r.db).Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// ListLocated returns nearby candidates inside a bounding box
func (r *merchantRepo) ListLocated(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]*entities.Merchant, error) {
	query, args, err := sq.Select("*").
		From("merchants").
		Where(sq.Eq{"is_active": true, "is_verified": true, "deleted_at": nil}).
		Where(sq.NotEq{"latitude": nil, "longitude": nil}).
		Where(sq.And{
			sq.GtOrEq{"latitude": minLat},
			sq.LtOrEq{"latitude": maxLat},
			sq.GtOrEq{"longitude": minLng},
			sq.LtOrEq{"longitude": maxLng},
		}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var ms []models.Merchant
	if err := GetDB(ctx, r.db).Raw(query, args...).Scan(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// SetCurrentTurn records the queue number now being served
func (r *merchantRepo) SetCurrentTurn(ctx context.Context, id uuid.UUID, turn int) error {
	result := GetDB(ctx, r.db).Model(&models.Merchant{}).Where("id = ?", id).Update("current_turn_number", turn)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ResetAllTurns sets every barbershop's current turn back to zero
func (r *merchantRepo) ResetAllTurns(ctx context.Context) (int64, error) {
	result := GetDB(ctx, r.db).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Merchant{}).
		Update("current_turn_number", 0)
	return result.RowsAffected, result.Error
}

func (r *merchantRepo) toModel(m *entities.Merchant) *models.Merchant {
	return &models.Merchant{
		ID:                 m.ID,
		OwnerID:            m.OwnerID,
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		Address:            m.Address,
		Latitude:           m.Latitude.Ptr(),
		Longitude:          m.Longitude.Ptr(),
		PhoneNumber:        m.PhoneNumber,
		Email:              m.Email.Ptr(),
		IsActive:           m.IsActive,
		IsVerified:         m.IsVerified,
		BookingAdvanceDays: m.BookingAdvanceDays,
		CurrentTurnNumber:  m.CurrentTurnNumber,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *merchantRepo) toEntity(m *models.Merchant) *entities.Merchant {
	return &entities.Merchant{
		ID:                 m.ID,
		OwnerID:            m.OwnerID,
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        m.Description,
		Address:            m.Address,
		Latitude:           null.Float64FromPtr(m.Latitude),
		Longitude:          null.Float64FromPtr(m.Longitude),
		PhoneNumber:        m.PhoneNumber,
		Email:              null.StringFromPtr(m.Email),
		IsActive:           m.IsActive,
		IsVerified:         m.IsVerified,
		BookingAdvanceDays: m.BookingAdvanceDays,
		CurrentTurnNumber:  m.CurrentTurnNumber,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *merchantRepo) toEntities(ms []models.Merchant) []*entities.Merchant {
	out := make([]*entities.Merchant, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out
}
