package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fables-server/internal/models"
	repomocks "fables-server/internal/repository/mocks"
	svcmocks "fables-server/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserTestRouter(authSvc *svcmocks.AuthService, userRepo *repomocks.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewUserHandler(authSvc, userRepo)
	h.RegisterRoutes(router, nil)
	return router
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterValidation(t *testing.T) {
	authSvc := new(svcmocks.AuthService)
	userRepo := new(repomocks.UserRepository)
	router := newUserTestRouter(authSvc, userRepo)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"username too short", "ab", "password1"},
		{"username with invalid characters", "bad name!", "password1"},
		{"password too short", "alice", "pw1"},
		{"password without digit", "alice", "passwordonly"},
		{"password without letter", "alice", "1234567890"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(router, "/api/user", gin.H{"username": tc.username, "password": tc.password})
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	authSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterSuccess(t *testing.T) {
	authSvc := new(svcmocks.AuthService)
	userRepo := new(repomocks.UserRepository)
	router := newUserTestRouter(authSvc, userRepo)

	user := &models.User{ID: uuid.New(), Username: "alice"}
	authSvc.On("Register", mock.Anything, "alice", "password1").Return(user, nil)

	w := postJSON(router, "/api/user", gin.H{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)
	authSvc.AssertExpectations(t)
}

func TestRegisterDuplicateMapsTo409(t *testing.T) {
	authSvc := new(svcmocks.AuthService)
	userRepo := new(repomocks.UserRepository)
	router := newUserTestRouter(authSvc, userRepo)

	authSvc.On("Register", mock.Anything, "alice", "password1").Return(nil, models.ErrUserAlreadyExists)

	w := postJSON(router, "/api/user", gin.H{"username": "alice", "password": "password1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginReturnsUserAndTokenPair(t *testing.T) {
	authSvc := new(svcmocks.AuthService)
	userRepo := new(repomocks.UserRepository)
	router := newUserTestRouter(authSvc, userRepo)

	user := &models.User{ID: uuid.New(), Username: "alice"}
	td := &models.TokenDetails{AccessToken: "access", RefreshToken: "refresh"}
	authSvc.On("Login", mock.Anything, "alice", "password1").Return(user, td, nil)

	w := postJSON(router, "/api/user/login", gin.H{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		User         models.User `json:"user"`
		Token        string      `json:"token"`
		RefreshToken string      `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.Username, got.User.Username)
	assert.Equal(t, "access", got.Token)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestLoginBadCredentialsMapsTo401(t *testing.T) {
	authSvc := new(svcmocks.AuthService)
	userRepo := new(repomocks.UserRepository)
	router := newUserTestRouter(authSvc, userRepo)

	authSvc.On("Login", mock.Anything, "alice", "wrongpass1").Return(nil, nil, models.ErrInvalidCredentials)

	w := postJSON(router, "/api/user/login", gin.H{"username": "alice", "password": "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
