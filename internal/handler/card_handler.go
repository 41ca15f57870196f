package handler

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"busyboard/internal/model"
	"busyboard/internal/repository"
	"busyboard/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// cardTimeFormat renders card timestamps for the details dialog, e.g.
// "January 02, 2024, 05:04 PM".
const cardTimeFormat = "January 02, 2006, 03:04 PM"

type CardHandler struct {
	cardRepo   repository.CardRepositoryInterface
	boardRepo  repository.BoardRepositoryInterface
	memberRepo repository.MembershipRepositoryInterface
	userRepo   repository.UserRepositoryInterface
	blobs      storage.Service

	colorSeed func() int64
}

func NewCardHandler(
	cardRepo repository.CardRepositoryInterface,
	boardRepo repository.BoardRepositoryInterface,
	memberRepo repository.MembershipRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	blobs storage.Service,
) *CardHandler {
	return &CardHandler{
		cardRepo:   cardRepo,
		boardRepo:  boardRepo,
		memberRepo: memberRepo,
		userRepo:   userRepo,
		blobs:      blobs,
		colorSeed:  func() int64 { return time.Now().UnixNano() },
	}
}

type CardResponse struct {
	ID          string `json:"id"`
	BoardID     string `json:"board_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Color       string `json:"color"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CardDetailsResponse backs the details dialog on the board page.
type CardDetailsResponse struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Creator        *string `json:"creator"`
	Priority       string  `json:"priority"`
	Attachment     *string `json:"attachment"`
	CreateDatetime string  `json:"create_datetime"`
	UpdateDatetime string  `json:"update_datetime"`
}

func cardResponse(card *model.Card) CardResponse {
	return CardResponse{
		ID:          card.ID.String(),
		BoardID:     card.BoardID.String(),
		Title:       card.Title,
		Description: card.Description,
		Priority:    card.Priority,
		Status:      card.Status,
		Color:       card.Color,
		CreatedAt:   card.CreatedAt.Format(http.TimeFormat),
		UpdatedAt:   card.UpdatedAt.Format(http.TimeFormat),
	}
}

func cardResponses(cards []model.Card) []CardResponse {
	out := make([]CardResponse, len(cards))
	for i := range cards {
		out[i] = cardResponse(&cards[i])
	}
	return out
}

// requireCardAccess loads the card and enforces the owner-or-member
// rule on its board, writing the error response on failure.
func (h *CardHandler) requireCardAccess(c *gin.Context, cardID, userID uuid.UUID) (*model.Card, bool) {
	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card"})
		return nil, false
	}

	allowed, err := h.memberRepo.HasAccess(c.Request.Context(), card.BoardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check board access"})
		return nil, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this board"})
		return nil, false
	}

	return card, true
}

// Create adds a card to a board. Priority defaults to MEDIUM and
// status to TO_DO; the color comes from the fixed palette. Accepts a
// multipart form so an attachment can ride along.
func (h *CardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.PostForm("board"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
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

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	priority := c.PostForm("priority")
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	creatorID := userID
	card := &model.Card{
		ID:          uuid.New(),
		BoardID:     board.ID,
		Title:       title,
		Description: c.PostForm("description"),
		CreatorID:   &creatorID,
		Priority:    priority,
		Status:      model.StatusToDo,
		Color:       model.PickColor(h.colorSeed()),
	}

	if file, err := c.FormFile("attachment"); err == nil {
		key, err := h.storeAttachment(c, card.ID, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
			return
		}
		card.Attachment = &key
	}

	if err := h.cardRepo.Create(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}

	c.JSON(http.StatusCreated, cardResponse(card))
}

func (h *CardHandler) storeAttachment(c *gin.Context, cardID uuid.UUID, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := fmt.Sprintf("files/%s/%s", cardID, filepath.Base(file.Filename))
	if err := h.blobs.Save(c.Request.Context(), key, src); err != nil {
		return "", err
	}
	return key, nil
}

// releaseAttachment deletes the blob behind the card's attachment, if
// any. Blob errors are logged and ignored: the card row is the source
// of truth, and a dangling blob must not block the mutation.
func (h *CardHandler) releaseAttachment(c *gin.Context, card *model.Card) {
	if card.Attachment == nil {
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), *card.Attachment); err != nil {
		log.Printf("⚠️  Failed to release attachment %s: %v", *card.Attachment, err)
	}
	card.Attachment = nil
}

// UpdateStatus is the drag-and-drop AJAX endpoint. Any of the three
// statuses may follow any other; anything else is rejected with the
// card left untouched.
func (h *CardHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status := c.PostForm("status")
	if !model.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid status value"})
		return
	}

	cardID, err := uuid.Parse(c.PostForm("card_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid card ID format"})
		return
	}

	card, err := h.cardRepo.GetByID(c.Request.Context(), cardID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve card"})
		return
	}

	allowed, err := h.memberRepo.HasAccess(c.Request.Context(), card.BoardID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to check board access"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "You do not have access to this board"})
		return
	}

	card.Status = status
	if err := h.cardRepo.Update(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to update card"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "new_status": status})
}

// GetDetails returns the card details dialog payload.
func (h *CardHandler) GetDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	card, ok := h.requireCardAccess(c, cardID, userID)
	if !ok {
		return
	}

	details := CardDetailsResponse{
		Title:          card.Title,
		Description:    card.Description,
		Priority:       card.Priority,
		CreateDatetime: card.CreatedAt.Format(cardTimeFormat),
		UpdateDatetime: card.UpdatedAt.Format(cardTimeFormat),
	}

	if card.CreatorID != nil {
		creator, err := h.userRepo.GetByID(c.Request.Context(), *card.CreatorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve card creator"})
			return
		}
		if creator != nil {
			details.Creator = &creator.Username
		}
	}

	if card.Attachment != nil {
		url, err := h.blobs.URL(c.Request.Context(), *card.Attachment)
		if err == nil {
			details.Attachment = &url
		}
	}

	c.JSON(http.StatusOK, details)
}

// Get returns one card by ID for the edit form.
func (h *CardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	card, ok := h.requireCardAccess(c, cardID, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, cardResponse(card))
}

// SaveChanges applies the edit form: title/description/priority arrive
// as form fields and overwrite only when non-empty; delete_attachment
// and new_attachment control the attachment. Replacing releases the
// old blob before the new reference is persisted.
func (h *CardHandler) SaveChanges(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	card, ok := h.requireCardAccess(c, cardID, userID)
	if !ok {
		return
	}

	if title := c.PostForm("title"); title != "" {
		card.Title = title
	}
	if description := c.PostForm("description"); description != "" {
		card.Description = description
	}
	if priority := c.PostForm("priority"); priority != "" {
		if !model.ValidPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		card.Priority = priority
	}

	if _, remove := c.GetPostForm("delete_attachment"); remove {
		h.releaseAttachment(c, card)
	} else if file, err := c.FormFile("new_attachment"); err == nil {
		h.releaseAttachment(c, card)
		key, err := h.storeAttachment(c, card.ID, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
			return
		}
		card.Attachment = &key
	}

	if err := h.cardRepo.Update(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}

	c.JSON(http.StatusOK, cardResponse(card))
}

// Delete removes a card and releases its attachment blob.
func (h *CardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID format"})
		return
	}

	card, ok := h.requireCardAccess(c, cardID, userID)
	if !ok {
		return
	}

	h.releaseAttachment(c, card)

	if err := h.cardRepo.Delete(c.Request.Context(), card.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
}
