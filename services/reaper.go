package services

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"talesoul-backend/models/bookings"
)

// ReleaseStaleBookings cancels pending bookings that were reserved more than
// ttl ago and never confirmed, freeing their slots for other learners. It
// returns the number of bookings released.
func ReleaseStaleBookings(db *gorm.DB, ttl time.Duration, now time.Time) (int64, error) {
	res := db.Model(&bookings.Booking{}).
		Where("status = ? AND created_at < ?", bookings.StatusPending, now.Add(-ttl)).
		Update("status", bookings.StatusCancelled)
	return res.RowsAffected, res.Error
}

// StartReaper sweeps abandoned pending bookings on the given interval until
// stop is closed.
func StartReaper(db *gorm.DB, interval, ttl time.Duration, log zerolog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				released, err := ReleaseStaleBookings(db, ttl, time.Now())
				if err != nil {
					log.Error().Err(err).Msg("booking reaper sweep failed")
					continue
				}
				if released > 0 {
					log.Info().Int64("released", released).Msg("released stale pending bookings")
				}
			}
		}
	}()
}
