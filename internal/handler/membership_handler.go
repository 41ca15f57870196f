package handler

import (
	"net/http"

	"busyboard/internal/model"
	"busyboard/internal/repository"

	"github.com/gin-gonic/gin"
)

// MembershipHandler mutates the board↔user membership relation. All
// changes go through the membership repository so both sides of the
// relation stay symmetric.
type MembershipHandler struct {
	boardRepo  repository.BoardRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	memberRepo repository.MembershipRepositoryInterface
}

func NewMembershipHandler(
	boardRepo repository.BoardRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	memberRepo repository.MembershipRepositoryInterface,
) *MembershipHandler {
	return &MembershipHandler{
		boardRepo:  boardRepo,
		userRepo:   userRepo,
		memberRepo: memberRepo,
	}
}

type MemberRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *MembershipHandler) boardBySlug(c *gin.Context) (*model.Board, bool) {
	board, err := h.boardRepo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil, false
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil, false
	}
	return board, true
}

// Invite adds a user, by username, to the board's member set. Only the
// owner or an existing member may invite. Inviting an existing member
// is a no-op.
func (h *MembershipHandler) Invite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, ok := h.boardBySlug(c)
	if !ok {
		return
	}

	allowed, err := h.memberRepo.HasAccess(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check board access"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this board"})
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	invitee, err := h.userRepo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if invitee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// The owner's access is implicit; they never enter the member set.
	if invitee.ID == board.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot invite the board owner"})
		return
	}

	if err := h.memberRepo.Add(c.Request.Context(), board.ID, invitee.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User invited"})
}

// Leave removes the caller from the board's member set. Leaving a board
// the caller is not a member of (including one they own) is a silent
// no-op.
func (h *MembershipHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, ok := h.boardBySlug(c)
	if !ok {
		return
	}

	if err := h.memberRepo.Remove(c.Request.Context(), board.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave board"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left board"})
}

// RemoveUser takes a user out of the member set. Effective only when
// the caller owns the board and the named user is a member; otherwise
// it responds 200 without changing anything.
func (h *MembershipHandler) RemoveUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, ok := h.boardBySlug(c)
	if !ok {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.userRepo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Non-owner callers are a silent no-op, not an error.
	if board.OwnerID != userID {
		c.JSON(http.StatusOK, gin.H{"message": "No changes"})
		return
	}

	isMember, err := h.memberRepo.IsMember(c.Request.Context(), board.ID, target.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusOK, gin.H{"message": "No changes"})
		return
	}

	if err := h.memberRepo.Remove(c.Request.Context(), board.ID, target.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User removed"})
}
