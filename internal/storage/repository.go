package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kettari/games-bot/internal/entity"
)

// ErrNoSnapshot is returned when no result set has been stored yet.
var ErrNoSnapshot = errors.New("no stored snapshot")

// sessionRow is one session of the last successful result set.
type sessionRow struct {
	ID         string    `gorm:"primaryKey;size:40"`
	Date       time.Time `gorm:"index;not null"`
	Title      string    `gorm:"not null"`
	System     string
	Short      string
	SpotsTotal *int
	SpotsFree  *int
	SignupURL  string
	HTML       string
	FetchedAt  time.Time `gorm:"not null"`
}

// Repository keeps the last successful result set in Postgres. Each save
// replaces the previous snapshot entirely.
type Repository struct {
	db *gorm.DB
}

func NewRepository(m *Manager) *Repository {
	return &Repository{db: m.DB()}
}

// Migrate creates or updates the snapshot table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&sessionRow{})
}

func (r *Repository) SaveSnapshot(ctx context.Context, sessions []entity.Session, at time.Time) error {
	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, toRow(s, at))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&sessionRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *Repository) LoadSnapshot(ctx context.Context) ([]entity.Session, time.Time, error) {
	var rows []sessionRow
	if err := r.db.WithContext(ctx).Order("date").Find(&rows).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	sessions, at := fromRows(rows)
	if len(sessions) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	return sessions, at, nil
}

func toRow(s entity.Session, at time.Time) sessionRow {
	return sessionRow{
		ID:         s.ID,
		Date:       s.Date.UTC(),
		Title:      s.Title,
		System:     s.System,
		Short:      s.Short,
		SpotsTotal: s.SpotsTotal,
		SpotsFree:  s.SpotsFree,
		SignupURL:  s.SignupURL,
		HTML:       s.HTML,
		FetchedAt:  at.UTC(),
	}
}

// fromRows converts rows back to sessions and reports the oldest fetch time.
func fromRows(rows []sessionRow) ([]entity.Session, time.Time) {
	var at time.Time
	sessions := make([]entity.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, entity.Session{
			ID:         row.ID,
			Date:       row.Date.UTC(),
			Title:      row.Title,
			System:     row.System,
			Short:      row.Short,
			SpotsTotal: row.SpotsTotal,
			SpotsFree:  row.SpotsFree,
			SignupURL:  row.SignupURL,
			HTML:       row.HTML,
		})
		if at.IsZero() || row.FetchedAt.Before(at) {
			at = row.FetchedAt
		}
	}
	return sessions, at
}
