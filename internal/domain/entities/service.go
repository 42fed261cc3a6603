package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ServiceCategory groups services on the shop page
type ServiceCategory string

const (
	ServiceCategoryHaircut   ServiceCategory = "haircut"
	ServiceCategoryBeard     ServiceCategory = "beard"
	ServiceCategoryShave     ServiceCategory = "shave"
	ServiceCategoryHairColor ServiceCategory = "hair_color"
	ServiceCategoryOther     ServiceCategory = "other"
)

// Service is a bookable item offered by one barbershop
type Service struct {
	ID              uuid.UUID       `json:"id"`
	MerchantID      uuid.UUID       `json:"merchantId"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        ServiceCategory `json:"category"`
	Price           float64         `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       null.Time       `json:"-"`
}

// CreateServiceInput represents input for adding a service
type CreateServiceInput struct {
	Name            string          `json:"name" binding:"required,min=2,max=100"`
	Description     string          `json:"description" binding:"max=1000"`
	Category        ServiceCategory `json:"category" binding:"omitempty,oneof=haircut beard shave hair_color other"`
	Price           float64         `json:"price" binding:"required,gt=0,lt=1000000"`
	DurationMinutes int             `json:"durationMinutes" binding:"required,gt=0,lte=600"`
}

// UpdateServiceInput holds editable service fields. Nil fields are left untouched.
type UpdateServiceInput struct {
	Name            *string          `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string          `json:"description" binding:"omitempty,max=1000"`
	Category        *ServiceCategory `json:"category" binding:"omitempty,oneof=haircut beard shave hair_color other"`
	Price           *float64         `json:"price" binding:"omitempty,gt=0,lt=1000000"`
	DurationMinutes *int             `json:"durationMinutes" binding:"omitempty,gt=0,lte=600"`
	IsActive        *bool            `json:"isActive"`
}
