package repository

import (
	"context"
	"errors"

	"busyboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

type MembershipRepositoryInterface interface {
	Add(ctx context.Context, boardID, userID uuid.UUID) error
	Remove(ctx context.Context, boardID, userID uuid.UUID) error
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.User, error)
	GetMemberBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error)
	HasAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

var _ MembershipRepositoryInterface = (*MembershipRepository)(nil)

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Add makes the user a member of the board. Idempotent: adding an
// existing member is a no-op. The check and insert run in one
// transaction to avoid racing duplicate rows.
func (r *MembershipRepository) Add(ctx context.Context, boardID, userID uuid.UUID) error {
	member := model.BoardMember{
		BoardID: boardID,
		UserID:  userID,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error
		if err == nil {
			return nil // already a member
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&member).Error
	})
}

// Remove deletes the membership row. Removing a non-member is a no-op.
func (r *MembershipRepository) Remove(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).Delete(&model.BoardMember{}).Error
}

func (r *MembershipRepository) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var member model.BoardMember
	err := r.db.WithContext(ctx).Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListMembers returns the invited users of a board, oldest invitation
// first. The owner is not included.
func (r *MembershipRepository) ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.user_id = users.id").
		Where("board_members.board_id = ?", boardID).
		Order("board_members.created_at").
		Find(&users).Error
	return users, err
}

// GetMemberBoards returns the boards the user has been invited to.
func (r *MembershipRepository) GetMemberBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Order("board_members.created_at").
		Find(&boards).Error
	return boards, err
}

// HasAccess reports whether the user may read or mutate the board: true
// iff the user owns it or is an invited member.
func (r *MembershipRepository) HasAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", boardID, userID).
		First(&board).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return r.IsMember(ctx, boardID, userID)
}
