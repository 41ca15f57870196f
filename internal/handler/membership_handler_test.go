package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"busyboard/internal/handler"
	"busyboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMembershipHandler_Invite_Success(t *testing.T) {
	// Arrange
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: userID, Slug: "roadmap"}
	invitee := &model.User{ID: uuid.New(), Username: "bob"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockMemberRepo.On("HasAccess", mock.Anything, board.ID, userID).Return(true, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(invitee, nil)
	mockMemberRepo.On("Add", mock.Anything, board.ID, invitee.ID).Return(nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/invite/", memberHandler.Invite)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/invite/", jsonBody(t, handler.MemberRequest{Username: "bob"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User invited")
	mockMemberRepo.AssertExpectations(t)
}

func TestMembershipHandler_Invite_WithoutAccess(t *testing.T) {
	// Arrange: a stranger may not invite anyone
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: uuid.New(), Slug: "roadmap"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockMemberRepo.On("HasAccess", mock.Anything, board.ID, userID).Return(false, nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/invite/", memberHandler.Invite)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/invite/", jsonBody(t, handler.MemberRequest{Username: "bob"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
	mockMemberRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestMembershipHandler_Invite_UnknownUser(t *testing.T) {
	// Arrange
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: userID, Slug: "roadmap"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockMemberRepo.On("HasAccess", mock.Anything, board.ID, userID).Return(true, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/invite/", memberHandler.Invite)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/invite/", jsonBody(t, handler.MemberRequest{Username: "ghost"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	mockMemberRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestMembershipHandler_Invite_Owner(t *testing.T) {
	// Arrange: the owner never enters the member set
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: userID, Slug: "roadmap"}
	owner := &model.User{ID: userID, Username: "alice"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockMemberRepo.On("HasAccess", mock.Anything, board.ID, userID).Return(true, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(owner, nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/invite/", memberHandler.Invite)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/invite/", jsonBody(t, handler.MemberRequest{Username: "alice"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot invite the board owner")
	mockMemberRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestMembershipHandler_RemoveUser_ByNonOwner(t *testing.T) {
	// Arrange: a member asking to remove someone gets a 200 no-op
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: uuid.New(), Slug: "roadmap"}
	target := &model.User{ID: uuid.New(), Username: "bob"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(target, nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/remove_user/", memberHandler.RemoveUser)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/remove_user/", jsonBody(t, handler.MemberRequest{Username: "bob"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No changes")
	mockMemberRepo.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestMembershipHandler_RemoveUser_ByOwner(t *testing.T) {
	// Arrange
	ownerID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: ownerID, Slug: "roadmap"}
	target := &model.User{ID: uuid.New(), Username: "bob"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockUserRepo.On("FindByUsername", mock.Anything, "bob").Return(target, nil)
	mockMemberRepo.On("IsMember", mock.Anything, board.ID, target.ID).Return(true, nil)
	mockMemberRepo.On("Remove", mock.Anything, board.ID, target.ID).Return(nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(ownerID)
	r.POST("/my_boards/:slug/remove_user/", memberHandler.RemoveUser)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/remove_user/", jsonBody(t, handler.MemberRequest{Username: "bob"}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User removed")
	mockMemberRepo.AssertExpectations(t)
}

func TestMembershipHandler_Leave(t *testing.T) {
	// Arrange: leaving is always a 200, member or not
	userID := uuid.New()
	board := &model.Board{ID: uuid.New(), Title: "Roadmap", OwnerID: uuid.New(), Slug: "roadmap"}

	mockBoardRepo := new(MockBoardRepository)
	mockUserRepo := new(MockUserRepository)
	mockMemberRepo := new(MockMembershipRepository)
	mockBoardRepo.On("GetBySlug", mock.Anything, "roadmap").Return(board, nil)
	mockMemberRepo.On("Remove", mock.Anything, board.ID, userID).Return(nil)

	memberHandler := handler.NewMembershipHandler(mockBoardRepo, mockUserRepo, mockMemberRepo)
	r := authedRouter(userID)
	r.POST("/my_boards/:slug/leave/", memberHandler.Leave)

	req, _ := http.NewRequest(http.MethodPost, "/my_boards/roadmap/leave/", nil)
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Left board")
	mockMemberRepo.AssertExpectations(t)
}
