// services/scheduler.go
package services

import (
	"log"
	"time"

	"auracoins-server/models"

	"github.com/go-co-op/gocron/v2"
)

// StartStreakScheduler runs the daily streak sweep: any profile whose last
// qualifying activity is older than yesterday loses its streak. Hourly
// cadence keeps the sweep cheap and tolerant of restarts.
func (s *ProfileService) StartStreakScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := s.startOfDay(time.Now()).AddDate(0, 0, -1)

			res := s.DB.Model(&models.Profile{}).
				Where("streak > 0 AND (last_activity_date IS NULL OR last_activity_date < ?)", cutoff).
				Update("streak", 0)
			if res.Error != nil {
				log.Printf("[Scheduler] Streak sweep DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Streak sweep reset %d stale streaks", res.RowsAffected)
			}
		}),
	)
}
