package storage

import (
	"bibled/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("journal entry not found")

// ProfileStoreInterface is the user profile half of the entity store.
// GetProfile returns an empty profile for an unknown user.
type ProfileStoreInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
}

type JournalStoreInterface interface {
	CreateEntry(ctx context.Context, entry *models.JournalEntry) error
	// SaveEntryWithProfile stores entry and profile together or not at all.
	SaveEntryWithProfile(ctx context.Context, entry *models.JournalEntry, profile *models.Profile) error
	ListEntries(ctx context.Context, userID, kind string) ([]models.JournalEntry, error)
	DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error
}

const (
	getProfileStatement = `
	SELECT user_id, current_streak, longest_streak, last_entry_date, total_entries, updated_at
	FROM profiles
	WHERE user_id = ?
	`

	upsertProfileStatement = `
	INSERT INTO profiles (user_id, current_streak, longest_streak, last_entry_date, total_entries, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		current_streak = excluded.current_streak,
		longest_streak = excluded.longest_streak,
		last_entry_date = excluded.last_entry_date,
		total_entries = excluded.total_entries,
		updated_at = excluded.updated_at
	`

	createEntryStatement = `
	INSERT INTO journal_entries (id, user_id, kind, title, content, mood, reference, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	listEntriesStatement = `
	SELECT id, user_id, kind, title, content, mood, reference, created_at
	FROM journal_entries
	WHERE user_id = ? AND (? = '' OR kind = ?)
	ORDER BY created_at DESC
	`

	deleteEntryStatement = `
	DELETE FROM journal_entries WHERE user_id = ? AND id = ?
	`
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p         models.Profile
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, getProfileStatement, userID).Scan(
		&p.UserID,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.LastEntryDate,
		&p.TotalEntries,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load profile %s: %w", userID, err)
	}
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &p, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	return saveProfile(ctx, s.db, p)
}

func saveProfile(ctx context.Context, db execer, p *models.Profile) error {
	_, err := db.ExecContext(ctx, upsertProfileStatement,
		p.UserID,
		p.CurrentStreak,
		p.LongestStreak,
		p.LastEntryDate,
		p.TotalEntries,
		p.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *SQLStore) CreateEntry(ctx context.Context, e *models.JournalEntry) error {
	return createEntry(ctx, s.db, e)
}

func createEntry(ctx context.Context, db execer, e *models.JournalEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := db.ExecContext(ctx, createEntryStatement,
		e.ID.String(),
		e.UserID,
		e.Kind,
		e.Title,
		e.Content,
		e.Mood,
		e.Reference,
		e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

func (s *SQLStore) SaveEntryWithProfile(ctx context.Context, e *models.JournalEntry, p *models.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = createEntry(ctx, tx, e); err != nil {
		return err
	}
	if err = saveProfile(ctx, tx, p); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLStore) ListEntries(ctx context.Context, userID, kind string) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, listEntriesStatement, userID, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var (
			e         models.JournalEntry
			id        string
			createdAt int64
		)
		if err := rows.Scan(&id, &e.UserID, &e.Kind, &e.Title, &e.Content, &e.Mood, &e.Reference, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt entry id %q: %w", id, err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

func (s *SQLStore) DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, deleteEntryStatement, userID, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}
