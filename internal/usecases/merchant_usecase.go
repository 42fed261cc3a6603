package usecases

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"barberq.backend/internal/config"
	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/domain/repositories"
	"barberq.backend/pkg/crypto"
	"barberq.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/volatiletech/null/v8"
)

const slugAttempts = 5

// MerchantUsecase manages barbershops and their service catalog
type MerchantUsecase struct {
	merchantRepo repositories.MerchantRepository
	serviceRepo  repositories.ServiceRepository
	bookingRepo  repositories.BookingRepository
	reviewRepo   repositories.ReviewRepository
	userRepo     repositories.UserRepository
	policy       config.BookingConfig
}

// NewMerchantUsecase creates a new merchant usecase
func NewMerchantUsecase(
	merchantRepo repositories.MerchantRepository,
	serviceRepo repositories.ServiceRepository,
	bookingRepo repositories.BookingRepository,
	reviewRepo repositories.ReviewRepository,
	userRepo repositories.UserRepository,
	policy config.BookingConfig,
) *MerchantUsecase {
	return &MerchantUsecase{
		merchantRepo: merchantRepo,
		serviceRepo:  serviceRepo,
		bookingRepo:  bookingRepo,
		reviewRepo:   reviewRepo,
		userRepo:     userRepo,
		policy:       policy,
	}
}

// CreateMerchant registers a barbershop owned by ownerID
func (u *MerchantUsecase) CreateMerchant(ctx context.Context, ownerID uuid.UUID, input *entities.CreateMerchantInput) (*entities.Merchant, error) {
	owner, err := u.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !owner.CanOwnMerchant() {
		return nil, domainerrors.Forbidden("only barbers can register a barbershop")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, domainerrors.NewValidationError(domainerrors.ErrInvalidInput, "latitude", "Latitude and longitude must be set together.")
	}

	name := strings.TrimSpace(input.Name)
	exists, err := u.merchantRepo.ExistsByOwnerAndName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainerrors.Conflict("you already have a barbershop with this name")
	}

	merchantSlug, err := u.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	merchant := &entities.Merchant{
		OwnerID:            ownerID,
		Name:               name,
		Slug:               merchantSlug,
		Description:        input.Description,
		Address:            input.Address,
		Latitude:           null.Float64FromPtr(input.Latitude),
		Longitude:          null.Float64FromPtr(input.Longitude),
		PhoneNumber:        input.PhoneNumber,
		IsActive:           true,
		BookingAdvanceDays: entities.DefaultBookingAdvanceDays,
	}
	if input.Email != "" {
		merchant.Email = null.StringFrom(input.Email)
	}
	if input.BookingAdvanceDays != nil {
		merchant.BookingAdvanceDays = *input.BookingAdvanceDays
	}

	if err := u.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// UpdateMerchant applies the owner's settings changes
func (u *MerchantUsecase) UpdateMerchant(ctx context.Context, ownerID, merchantID uuid.UUID, input *entities.UpdateMerchantInput) (*entities.Merchant, error) {
	merchant, err := u.ownedMerchant(ctx, merchantID, ownerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name != merchant.Name {
			exists, err := u.merchantRepo.ExistsByOwnerAndName(ctx, ownerID, name)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domainerrors.Conflict("you already have a barbershop with this name")
			}
			merchant.Name = name
		}
	}
	if input.Description != nil {
		merchant.Description = *input.Description
	}
	if input.Address != nil {
		merchant.Address = *input.Address
	}
	if input.Latitude != nil {
		merchant.Latitude = null.Float64From(*input.Latitude)
	}
	if input.Longitude != nil {
		merchant.Longitude = null.Float64From(*input.Longitude)
	}
	if input.PhoneNumber != nil {
		merchant.PhoneNumber = *input.PhoneNumber
	}
	if input.Email != nil {
		merchant.Email = null.NewString(*input.Email, *input.Email != "")
	}
	if input.IsActive != nil {
		merchant.IsActive = *input.IsActive
	}
	if input.BookingAdvanceDays != nil {
		merchant.BookingAdvanceDays = *input.BookingAdvanceDays
	}

	if err := u.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// GetMerchant returns a barbershop with its active services and rating
func (u *MerchantUsecase) GetMerchant(ctx context.Context, merchantID uuid.UUID) (*entities.MerchantDetail, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	services, err := u.serviceRepo.ListByMerchant(ctx, merchantID, true)
	if err != nil {
		return nil, err
	}
	rating, err := u.reviewRepo.Summary(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return &entities.MerchantDetail{Merchant: merchant, Services: services, Rating: rating}, nil
}

// ListMerchants returns a page of active barbershops
func (u *MerchantUsecase) ListMerchants(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.Merchant, utils.PaginationMeta, error) {
	filter := entities.MerchantFilter{Search: strings.TrimSpace(search), ActiveOnly: true}
	merchants, total, err := u.merchantRepo.List(ctx, filter, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return merchants, utils.CalculateMeta(total, pagination.Page, pagination.Limit), nil
}

// ListMyMerchants returns the barbershops owned by ownerID
func (u *MerchantUsecase) ListMyMerchants(ctx context.Context, ownerID uuid.UUID) ([]*entities.Merchant, error) {
	return u.merchantRepo.ListByOwner(ctx, ownerID)
}

// CreateService adds a service to an owned barbershop
func (u *MerchantUsecase) CreateService(ctx context.Context, ownerID, merchantID uuid.UUID, input *entities.CreateServiceInput) (*entities.Service, error) {
	if _, err := u.ownedMerchant(ctx, merchantID, ownerID); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		category = entities.ServiceCategoryHaircut
	}
	service := &entities.Service{
		MerchantID:      merchantID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Category:        category,
		Price:           utils.RoundTo(input.Price, 2),
		DurationMinutes: input.DurationMinutes,
		IsActive:        true,
	}
	if err := u.serviceRepo.Create(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// UpdateService edits a service. Placed bookings keep their price snapshot.
func (u *MerchantUsecase) UpdateService(ctx context.Context, ownerID, merchantID, serviceID uuid.UUID, input *entities.UpdateServiceInput) (*entities.Service, error) {
	service, err := u.ownedService(ctx, ownerID, merchantID, serviceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.Price != nil {
		service.Price = utils.RoundTo(*input.Price, 2)
	}
	if input.DurationMinutes != nil {
		service.DurationMinutes = *input.DurationMinutes
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := u.serviceRepo.Update(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// DeleteService soft-deletes a service
func (u *MerchantUsecase) DeleteService(ctx context.Context, ownerID, merchantID, serviceID uuid.UUID) error {
	if _, err := u.ownedService(ctx, ownerID, merchantID, serviceID); err != nil {
		return err
	}
	return u.serviceRepo.SoftDelete(ctx, serviceID)
}

// ListServices returns the catalog; the owner also sees inactive services
func (u *MerchantUsecase) ListServices(ctx context.Context, merchantID uuid.UUID, viewerID *uuid.UUID) ([]*entities.Service, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	activeOnly := viewerID == nil || *viewerID != merchant.OwnerID
	return u.serviceRepo.ListByMerchant(ctx, merchantID, activeOnly)
}

// GetTurnStatus returns the turn being served and how many bookings are done today
func (u *MerchantUsecase) GetTurnStatus(ctx context.Context, merchantID uuid.UUID) (*entities.TurnStatus, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	finished, err := u.bookingRepo.CountByStatuses(ctx, merchantID, today(u.policy.Location()),
		entities.BookingStatusCompleted, entities.BookingStatusNoShow)
	if err != nil {
		return nil, err
	}
	return &entities.TurnStatus{
		MerchantID:            merchant.ID,
		CurrentTurnNumber:     merchant.CurrentTurnNumber,
		FinishedBookingsCount: finished,
	}, nil
}

// FindNearby returns active, verified barbershops within maxKm of the point,
// closest first. maxKm <= 0 uses the configured radius.
func (u *MerchantUsecase) FindNearby(ctx context.Context, lat, lng, maxKm float64) ([]*entities.NearbyMerchant, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, &domainerrors.ValidationError{
			Err:    domainerrors.ErrInvalidInput,
			Fields: map[string]string{"lat": "Latitude must be between -90 and 90.", "lng": "Longitude must be between -180 and 180."},
		}
	}
	if maxKm <= 0 {
		maxKm = u.policy.NearbyRadiusKm
	}

	minLat, maxLat, minLng, maxLng := boundingBox(lat, lng, maxKm)
	candidates, err := u.merchantRepo.ListLocated(ctx, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	nearby := make([]*entities.NearbyMerchant, 0, len(candidates))
	for _, m := range candidates {
		if !m.HasLocation() {
			continue
		}
		distance := utils.HaversineKm(lat, lng, m.Latitude.Float64, m.Longitude.Float64)
		if distance > maxKm {
			continue
		}
		nearby = append(nearby, &entities.NearbyMerchant{
			Merchant:      m,
			DistanceKm:    utils.RoundTo(distance, 2),
			DistanceLabel: utils.FormatDistance(distance),
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

// ResetAllTurns sets every barbershop's current turn back to zero
func (u *MerchantUsecase) ResetAllTurns(ctx context.Context) (int64, error) {
	return u.merchantRepo.ResetAllTurns(ctx)
}

func (u *MerchantUsecase) ownedMerchant(ctx context.Context, merchantID, userID uuid.UUID) (*entities.Merchant, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant.OwnerID != userID {
		return nil, domainerrors.ErrForbidden
	}
	return merchant, nil
}

func (u *MerchantUsecase) ownedService(ctx context.Context, ownerID, merchantID, serviceID uuid.UUID) (*entities.Service, error) {
	if _, err := u.ownedMerchant(ctx, merchantID, ownerID); err != nil {
		return nil, err
	}
	service, err := u.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if service.MerchantID != merchantID {
		return nil, domainerrors.ErrNotFound
	}
	return service, nil
}

func (u *MerchantUsecase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "barbershop"
	}

	candidate := base
	for i := 0; i < slugAttempts; i++ {
		exists, err := u.merchantRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		suffix, err := crypto.RandomHex(3)
		if err != nil {
			return "", err
		}
		candidate = base + "-" + suffix
	}
	return "", errors.New("could not allocate a unique slug")
}

// boundingBox returns a lat/lng rectangle enclosing the circle of radius km.
// Near the poles or the antimeridian it widens to the full longitude range.
func boundingBox(lat, lng, km float64) (minLat, maxLat, minLng, maxLng float64) {
	angular := km / utils.EarthRadiusKm
	dLat := angular * 180 / math.Pi
	minLat = math.Max(lat-dLat, -90)
	maxLat = math.Min(lat+dLat, 90)

	ratio := math.Sin(angular) / math.Cos(lat*math.Pi/180)
	if ratio >= 1 || math.IsNaN(ratio) || angular >= math.Pi/2 {
		return minLat, maxLat, -180, 180
	}
	dLng := math.Asin(ratio) * 180 / math.Pi
	minLng, maxLng = lng-dLng, lng+dLng
	if minLng < -180 || maxLng > 180 {
		return minLat, maxLat, -180, 180
	}
	return minLat, maxLat, minLng, maxLng
}
