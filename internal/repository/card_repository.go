package repository

import (
	"context"
	"errors"
	"time"

	"busyboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

type CardRepositoryInterface interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error)
	GetByBoard(ctx context.Context, boardID uuid.UUID) ([]model.Card, error)
	GetLane(ctx context.Context, boardID uuid.UUID, status, query string) ([]model.Card, error)
	Update(ctx context.Context, card *model.Card) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountDoneSince(ctx context.Context, boardID uuid.UUID, since time.Time) (int64, error)
}

var _ CardRepositoryInterface = (*CardRepository)(nil)

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create adds a new card to the database
func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByID retrieves a card by its ID
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	result := r.db.WithContext(ctx).First(&card, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

// GetByBoard retrieves all cards of a board in insertion order.
func (r *CardRepository) GetByBoard(ctx context.Context, boardID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	result := r.db.WithContext(ctx).Where("board_id = ?", boardID).Order("created_at").Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// GetLane retrieves the cards of one status lane, newest first. A
// non-empty query narrows the lane to cards whose title or description
// contains it, case-insensitively.
func (r *CardRepository) GetLane(ctx context.Context, boardID uuid.UUID, status, query string) ([]model.Card, error) {
	tx := r.db.WithContext(ctx).Where("board_id = ? AND status = ?", boardID, status)
	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var cards []model.Card
	result := tx.Order("created_at DESC").Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// Update updates an existing card
func (r *CardRepository) Update(ctx context.Context, card *model.Card) error {
	result := r.db.WithContext(ctx).Save(card)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Delete removes a card by its ID
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Card{}).Error
}

// CountDoneSince counts the board's DONE cards whose last update is at
// or after the given instant. Backs the daily/weekly/monthly/annual
// rollups on the board detail page.
func (r *CardRepository) CountDoneSince(ctx context.Context, boardID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("board_id = ? AND status = ? AND updated_at >= ?", boardID, model.StatusDone, since).
		Count(&count).Error
	return count, err
}
