package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"barberq.backend/internal/domain/entities"
	"barberq.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db), "migrate")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func testDay(offset int) time.Time {
	return time.Date(2030, 5, 10+offset, 0, 0, 0, 0, time.UTC)
}

func seedUser(t *testing.T, db *gorm.DB, username string, role entities.UserRole) *entities.User {
	t.Helper()
	u := &entities.User{
		Email:        username + "@example.com",
		Username:     username,
		FullName:     username + " Test",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedMerchant(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *entities.Merchant {
	t.Helper()
	m := &entities.Merchant{
		OwnerID:            ownerID,
		Name:               name,
		Slug:               fmt.Sprintf("%s-%d", name, time.Now().UnixNano()),
		Address:            "1 Main St",
		PhoneNumber:        "01000000000",
		IsActive:           true,
		BookingAdvanceDays: entities.DefaultBookingAdvanceDays,
	}
	require.NoError(t, NewMerchantRepository(db).Create(context.Background(), m))
	return m
}

func seedService(t *testing.T, db *gorm.DB, merchantID uuid.UUID, name string, price float64) *entities.Service {
	t.Helper()
	s := &entities.Service{
		MerchantID:      merchantID,
		Name:            name,
		Category:        entities.ServiceCategoryHaircut,
		Price:           price,
		DurationMinutes: 30,
		IsActive:        true,
	}
	require.NoError(t, NewServiceRepository(db).Create(context.Background(), s))
	return s
}

func seedBooking(t *testing.T, db *gorm.DB, merchantID uuid.UUID, customerID *uuid.UUID, day time.Time, queue int, status entities.BookingStatus) *entities.Booking {
	t.Helper()
	b := &entities.Booking{
		MerchantID:  merchantID,
		CustomerID:  customerID,
		BookingDay:  day,
		QueueNumber: queue,
		Status:      status,
	}
	require.NoError(t, NewBookingRepository(db).Create(context.Background(), b))
	return b
}
