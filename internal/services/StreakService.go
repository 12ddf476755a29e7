package services

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/structures"
	"time"
)

type StreakServiceInterface interface {
	RecordActivity(log models.ActivityLog, today string) models.ActivityLog
	Status(log models.ActivityLog, today string) models.ActivityLog
	Reset(log models.ActivityLog) models.ActivityLog
	Today() string
}

// StreakService computes daily-activity streaks on calendar-day strings.
// Only Today touches the clock; everything else is pure.
type StreakService struct {
	clock    providers.Clock
	location *time.Location
}

func NewStreakService(conf *structures.Config, clock providers.Clock, logger providers.Logger) StreakServiceInterface {
	loc := time.UTC
	if conf.Streak.Timezone != "" {
		l, err := time.LoadLocation(conf.Streak.Timezone)
		if err != nil {
			logger.Warnf(providers.TypeApp, "Unknown streak timezone %q, using UTC: %s", conf.Streak.Timezone, err)
		} else {
			loc = l
		}
	}
	return &StreakService{clock: clock, location: loc}
}

func (s *StreakService) Today() string {
	return s.clock.Now().In(s.location).Format(models.DateLayout)
}

// RecordActivity applies one activity on day today to log:
// same day keeps the streak, the following day extends it, anything else
// (a gap, no prior entry, an unreadable stored date) starts over at 1.
func (s *StreakService) RecordActivity(log models.ActivityLog, today string) models.ActivityLog {
	next := log
	switch daysBetween(log.LastEntryDate, today) {
	case 0:
	case 1:
		next.CurrentStreak++
	default:
		next.CurrentStreak = 1
	}
	next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
	next.LastEntryDate = today
	return next
}

// Status is the read-side view of log on day today: a streak whose last
// entry is older than yesterday is shown as broken. The stored log is not changed.
func (s *StreakService) Status(log models.ActivityLog, today string) models.ActivityLog {
	view := log
	if d := daysBetween(log.LastEntryDate, today); d < 0 || d > 1 {
		view.CurrentStreak = 0
	}
	return view
}

func (s *StreakService) Reset(log models.ActivityLog) models.ActivityLog {
	return models.ActivityLog{LongestStreak: log.LongestStreak}
}

// daysBetween returns the whole calendar days from last to today, or -1 when
// either date is missing or unparseable or last lies after today.
func daysBetween(last, today string) int {
	if last == "" {
		return -1
	}
	l, err := time.Parse(models.DateLayout, last)
	if err != nil {
		return -1
	}
	t, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return -1
	}
	if t.Before(l) {
		return -1
	}
	// both dates are UTC midnight, so the difference is an exact multiple of 24h
	return int(t.Sub(l).Hours() / 24)
}
