package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talesoul-backend/models/bookings"
	"talesoul-backend/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&bookings.Booking{}))
	return db
}

func TestReleaseStaleBookings(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	stale := bookings.Booking{UserID: 1, MentorID: 2, ScheduledAt: now.Add(24 * time.Hour),
		DurationMinutes: 60, Status: bookings.StatusPending, Price: 100}
	fresh := bookings.Booking{UserID: 1, MentorID: 2, ScheduledAt: now.Add(48 * time.Hour),
		DurationMinutes: 60, Status: bookings.StatusPending, Price: 100}
	confirmed := bookings.Booking{UserID: 1, MentorID: 2, ScheduledAt: now.Add(72 * time.Hour),
		DurationMinutes: 60, Status: bookings.StatusConfirmed, Price: 100}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&confirmed).Error)

	// Age the first reservation past the TTL.
	require.NoError(t, db.Model(&bookings.Booking{}).Where("id = ?", stale.ID).
		Update("created_at", now.Add(-time.Hour)).Error)

	released, err := services.ReleaseStaleBookings(db, 30*time.Minute, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, released)

	// Fresh dest per lookup: a reused struct would carry the previous primary
	// key into the next query's conditions.
	var gotStale bookings.Booking
	require.NoError(t, db.First(&gotStale, stale.ID).Error)
	require.Equal(t, bookings.StatusCancelled, gotStale.Status)

	var gotFresh bookings.Booking
	require.NoError(t, db.First(&gotFresh, fresh.ID).Error)
	require.Equal(t, bookings.StatusPending, gotFresh.Status)

	var gotConfirmed bookings.Booking
	require.NoError(t, db.First(&gotConfirmed, confirmed.ID).Error)
	require.Equal(t, bookings.StatusConfirmed, gotConfirmed.Status)
}
