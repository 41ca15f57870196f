package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"busyboard/internal/handler"
	"busyboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	assert.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestUserHandler_SignUp_Success(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(nil, nil)
	mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_up/", userHandler.SignUp)

	req, _ := http.NewRequest(http.MethodPost, "/sign_up/", jsonBody(t, handler.RegisterRequest{
		Username:  "alice",
		Email:     "Alice@Example.com", // stored lowercased
		Password:  "secret123",
		FirstName: "Alice",
		LastName:  "Smith",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	mockRepo.AssertExpectations(t)
}

func TestUserHandler_SignUp_DuplicateUsername(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:       uuid.New(),
		Username: "alice",
	}, nil)

	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_up/", userHandler.SignUp)

	req, _ := http.NewRequest(http.MethodPost, "/sign_up/", jsonBody(t, handler.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "username already exists")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserHandler_SignUp_InvalidInput(t *testing.T) {
	// Arrange: password below the minimum length
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockUserRepository)
	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_up/", userHandler.SignUp)

	req, _ := http.NewRequest(http.MethodPost, "/sign_up/", jsonBody(t, handler.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "short",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestUserHandler_SignIn_Success(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := &model.User{
		ID:             uuid.New(),
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: string(hash),
	}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_in/", userHandler.SignIn)

	req, _ := http.NewRequest(http.MethodPost, "/sign_in/", jsonBody(t, handler.LoginRequest{
		Username: "alice",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID.String(), resp.User.ID)
	mockRepo.AssertExpectations(t)
}

func TestUserHandler_SignIn_WrongPassword(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:             uuid.New(),
		Username:       "alice",
		HashedPassword: string(hash),
	}, nil)

	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_in/", userHandler.SignIn)

	req, _ := http.NewRequest(http.MethodPost, "/sign_in/", jsonBody(t, handler.LoginRequest{
		Username: "alice",
		Password: "wrong-password",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestUserHandler_SignIn_UnknownUser(t *testing.T) {
	// Arrange: an unknown username gets the same answer as a bad password
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)

	userHandler := handler.NewUserHandler(mockRepo)
	r := gin.New()
	r.POST("/sign_in/", userHandler.SignIn)

	req, _ := http.NewRequest(http.MethodPost, "/sign_in/", jsonBody(t, handler.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Act
	r.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}
