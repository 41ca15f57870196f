package handler

import (
	"net/http"
	"time"

	"busyboard/internal/model"
	"busyboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BoardHandler struct {
	boardRepo  repository.BoardRepositoryInterface
	memberRepo repository.MembershipRepositoryInterface
	cardRepo   repository.CardRepositoryInterface
	userRepo   repository.UserRepositoryInterface

	// colorSeed picks the creation color; swapped out in tests.
	colorSeed func() int64
}

func NewBoardHandler(
	boardRepo repository.BoardRepositoryInterface,
	memberRepo repository.MembershipRepositoryInterface,
	cardRepo repository.CardRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
) *BoardHandler {
	return &BoardHandler{
		boardRepo:  boardRepo,
		memberRepo: memberRepo,
		cardRepo:   cardRepo,
		userRepo:   userRepo,
		colorSeed:  func() int64 { return time.Now().UnixNano() },
	}
}

type CreateBoardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type BoardResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Slug        string `json:"slug"`
	Color       string `json:"color"`
	CreatedAt   string `json:"created_at"`
}

type BoardListResponse struct {
	Owned   []BoardResponse `json:"owned"`
	Invited []BoardResponse `json:"invited"`
}

// DoneStats are the rollups of cards finished within each window.
type DoneStats struct {
	Daily    int64 `json:"daily"`
	Weekly   int64 `json:"weekly"`
	Monthly  int64 `json:"monthly"`
	Annually int64 `json:"annually"`
}

type BoardDetailResponse struct {
	Board      BoardResponse  `json:"board"`
	Members    []UserResponse `json:"members"`
	ToDo       []CardResponse `json:"todo_cards"`
	InProgress []CardResponse `json:"in_progress_cards"`
	Done       []CardResponse `json:"done_cards"`
	Stats      DoneStats      `json:"stats"`
}

type ExportedBoard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Slug        string `json:"slug"`
	Color       string `json:"color"`
}

type ExportedCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Color       string `json:"color"`
}

type ExportDocument struct {
	Board ExportedBoard  `json:"board"`
	Cards []ExportedCard `json:"cards"`
}

func boardResponse(board *model.Board) BoardResponse {
	return BoardResponse{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		Slug:        board.Slug,
		Color:       board.Color,
		CreatedAt:   board.CreatedAt.Format(http.TimeFormat),
	}
}

func boardResponses(boards []model.Board) []BoardResponse {
	out := make([]BoardResponse, len(boards))
	for i := range boards {
		out[i] = boardResponse(&boards[i])
	}
	return out
}

// requireBoardAccess loads the board and enforces the owner-or-member
// rule, writing the 404/403 response on failure. Every board-scoped
// endpoint except creation goes through here.
func (h *BoardHandler) requireBoardAccess(c *gin.Context, boardID, userID uuid.UUID) (*model.Board, bool) {
	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil, false
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil, false
	}

	allowed, err := h.memberRepo.HasAccess(c.Request.Context(), board.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check board access"})
		return nil, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this board"})
		return nil, false
	}

	return board, true
}

// List returns the boards the caller owns and the boards they were
// invited to.
func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	owned, err := h.boardRepo.GetOwned(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	invited, err := h.memberRepo.GetMemberBoards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	c.JSON(http.StatusOK, BoardListResponse{
		Owned:   boardResponses(owned),
		Invited: boardResponses(invited),
	})
}

// Create makes a new board owned by the caller. The slug is derived
// from the title once, and the color drawn from the fixed palette.
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
		Slug:        model.Slugify(req.Title),
		Color:       model.PickColor(h.colorSeed()),
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, boardResponse(board))
}

// Get returns one board by ID for the edit form.
func (h *BoardHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, ok := h.requireBoardAccess(c, boardID, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, boardResponse(board))
}

// Update renames the board. A field is overwritten only when the new
// value is non-empty; the slug never changes after creation.
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, ok := h.requireBoardAccess(c, boardID, userID)
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != "" {
		board.Title = req.Title
	}
	if req.Description != "" {
		board.Description = req.Description
	}

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	c.JSON(http.StatusOK, boardResponse(board))
}

// Delete removes the board and, with it, all of its cards.
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, ok := h.requireBoardAccess(c, boardID, userID)
	if !ok {
		return
	}

	if err := h.boardRepo.Delete(c.Request.Context(), board.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board deleted"})
}

// Detail serves the board page: the three status lanes (optionally
// narrowed by ?search=), newest cards first, plus the done-card
// rollups.
func (h *BoardHandler) Detail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	board, err := h.boardRepo.GetBySlug(c.Request.Context(), c.Param("slug"))
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

	// Invited users, oldest invitation first; the owner never appears.
	members, err := h.memberRepo.ListMembers(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board members"})
		return
	}
	memberResponses := make([]UserResponse, len(members))
	for i := range members {
		memberResponses[i] = userResponse(&members[i])
	}

	query := c.Query("search")

	lanes := make(map[string][]CardResponse, 3)
	for _, status := range []string{model.StatusToDo, model.StatusInProgress, model.StatusDone} {
		cards, err := h.cardRepo.GetLane(c.Request.Context(), board.ID, status, query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
			return
		}
		lanes[status] = cardResponses(cards)
	}

	// Daily means since local midnight, not a rolling 24h window; the
	// remaining rollups are rolling windows.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var stats DoneStats
	for _, w := range []struct {
		since time.Time
		dest  *int64
	}{
		{midnight, &stats.Daily},
		{now.AddDate(0, 0, -7), &stats.Weekly},
		{now.AddDate(0, 0, -30), &stats.Monthly},
		{now.AddDate(0, 0, -365), &stats.Annually},
	} {
		count, err := h.cardRepo.CountDoneSince(c.Request.Context(), board.ID, w.since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count cards"})
			return
		}
		*w.dest = count
	}

	c.JSON(http.StatusOK, BoardDetailResponse{
		Board:      boardResponse(board),
		Members:    memberResponses,
		ToDo:       lanes[model.StatusToDo],
		InProgress: lanes[model.StatusInProgress],
		Done:       lanes[model.StatusDone],
		Stats:      stats,
	})
}

// Export serializes the board and its cards, in insertion order, as a
// downloadable JSON document.
func (h *BoardHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	boardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID format"})
		return
	}

	board, ok := h.requireBoardAccess(c, boardID, userID)
	if !ok {
		return
	}

	owner, err := h.userRepo.GetByID(c.Request.Context(), board.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board owner"})
		return
	}
	ownerName := ""
	if owner != nil {
		ownerName = owner.Username
	}

	cards, err := h.cardRepo.GetByBoard(c.Request.Context(), board.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cards"})
		return
	}

	doc := ExportDocument{
		Board: ExportedBoard{
			Title:       board.Title,
			Description: board.Description,
			Owner:       ownerName,
			Slug:        board.Slug,
			Color:       board.Color,
		},
		Cards: make([]ExportedCard, 0, len(cards)),
	}
	for _, card := range cards {
		doc.Cards = append(doc.Cards, ExportedCard{
			Title:       card.Title,
			Description: card.Description,
			Status:      model.StatusLabel(card.Status),
			Color:       card.Color,
		})
	}

	c.Header("Content-Disposition", `attachment; filename="`+board.Slug+`.json"`)
	c.IndentedJSON(http.StatusOK, doc)
}
