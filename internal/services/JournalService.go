package services

import (
	"bibled/internal/models"
	"bibled/internal/providers"
	"bibled/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidEntry = errors.New("invalid journal entry")
	ErrMissingUser  = errors.New("user id is required")
)

type JournalServiceInterface interface {
	SaveEntry(ctx context.Context, entry *models.JournalEntry) (*models.Profile, error)
	ListEntries(ctx context.Context, userID, kind string) ([]models.JournalEntry, error)
	DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ResetStreak(ctx context.Context, userID string) (*models.Profile, error)
}

// JournalService persists journal and mood entries and applies exactly one
// streak update per successful save. It assumes a single writer per user.
type JournalService struct {
	journals storage.JournalStoreInterface
	profiles storage.ProfileStoreInterface
	streaks  StreakServiceInterface
	clock    providers.Clock
	logger   providers.Logger
}

func NewJournalService(journals storage.JournalStoreInterface, profiles storage.ProfileStoreInterface, streaks StreakServiceInterface, clock providers.Clock, logger providers.Logger) JournalServiceInterface {
	return &JournalService{
		journals: journals,
		profiles: profiles,
		streaks:  streaks,
		clock:    clock,
		logger:   logger,
	}
}

func (js *JournalService) SaveEntry(ctx context.Context, entry *models.JournalEntry) (*models.Profile, error) {
	if strings.TrimSpace(entry.UserID) == "" {
		return nil, ErrMissingUser
	}
	if entry.Kind == "" {
		entry.Kind = models.EntryKindJournal
	}
	if !models.ValidEntryKind(entry.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, entry.Kind)
	}
	if entry.Kind == models.EntryKindJournal && strings.TrimSpace(entry.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidEntry)
	}
	if entry.Kind == models.EntryKindMood && strings.TrimSpace(entry.Mood) == "" {
		return nil, fmt.Errorf("%w: mood is required", ErrInvalidEntry)
	}

	profile, err := js.profiles.GetProfile(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	entry.ID = uuid.New()
	entry.CreatedAt = js.clock.Now().UTC()

	profile.ActivityLog = js.streaks.RecordActivity(profile.ActivityLog, js.streaks.Today())
	profile.TotalEntries++
	profile.UpdatedAt = entry.CreatedAt
	if err = js.journals.SaveEntryWithProfile(ctx, entry, profile); err != nil {
		js.logger.Errorf(providers.TypeApp, "Save entry failed for %s: %s", entry.UserID, err)
		return nil, err
	}

	js.logger.Debugf(providers.TypeApp, "User %s streak %d (longest %d)", entry.UserID, profile.CurrentStreak, profile.LongestStreak)
	return profile, nil
}

func (js *JournalService) ListEntries(ctx context.Context, userID, kind string) ([]models.JournalEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	if kind != "" && !models.ValidEntryKind(kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, kind)
	}
	return js.journals.ListEntries(ctx, userID, kind)
}

func (js *JournalService) DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	return js.journals.DeleteEntry(ctx, userID, id)
}

// GetProfile returns the profile with its streak as seen today; the stored
// streak is not modified.
func (js *JournalService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	profile, err := js.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.ActivityLog = js.streaks.Status(profile.ActivityLog, js.streaks.Today())
	return profile, nil
}

func (js *JournalService) ResetStreak(ctx context.Context, userID string) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	profile, err := js.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.ActivityLog = js.streaks.Reset(profile.ActivityLog)
	profile.UpdatedAt = js.clock.Now().UTC()
	if err = js.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
