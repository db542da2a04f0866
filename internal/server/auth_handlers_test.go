package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testJWTSecret = "test_secret_test_secret_test_secret"

func newAuthTestServer(repo *MockUserRepository) *Server {
	return &Server{
		config:      &config.Config{JWTSecret: testJWTSecret, Env: "test"},
		userRepo:    repo,
		authService: service.NewAuthService(repo, testJWTSecret),
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	buf, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(*MockUserRepository)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: map[string]string{"username": "testuser", "password": "password123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
					Run(func(args mock.Arguments) {
						args.Get(1).(*models.User).ID = 1
					}).
					Return(nil)
			},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name: "Duplicate Username",
			body: map[string]string{"username": "testuser", "password": "password123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
					Return(models.NewConflictError("Username already taken"))
			},
			expectedStatus: fiber.StatusConflict,
			expectedCode:   models.CodeConflict,
		},
		{
			name:           "Missing Fields",
			body:           map[string]string{"username": "testuser"},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
		{
			name:           "Weak Password",
			body:           map[string]string{"username": "testuser", "password": "nope"},
			mockSetup:      func(*MockUserRepository) {},
			expectedStatus: fiber.StatusBadRequest,
			expectedCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)
			s := newAuthTestServer(mockRepo)
			app.Post("/register", s.Register)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/register", tt.body))
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedCode != "" {
				var body models.ErrorResponse
				assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedCode, body.Code)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestRegisterNeverLeaksPasswordHash(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 1
		}).
		Return(nil)
	s := newAuthTestServer(mockRepo)
	app.Post("/register", s.Register)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/register",
		map[string]string{"username": "testuser", "password": "password123"}))
	assert.NoError(t, err)

	var body map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotContains(t, body, "password")
	assert.Equal(t, "testuser", body["username"])
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	stored := &models.User{Username: "testuser", Password: string(hash)}
	stored.ID = 7

	t.Run("Success Sets Token Cookie", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(stored, nil)
		s := newAuthTestServer(mockRepo)
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
			map[string]string{"username": "testuser", "password": "password123"}))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var tokenSet bool
		for _, c := range resp.Cookies() {
			if c.Name == "token" && c.Value != "" {
				tokenSet = true
				assert.True(t, c.HttpOnly)
			}
		}
		assert.True(t, tokenSet, "expected token cookie to be set")
	})

	t.Run("Wrong Password", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, "testuser").Return(stored, nil)
		s := newAuthTestServer(mockRepo)
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
			map[string]string{"username": "testuser", "password": "wrongpass99"}))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, models.CodeInvalidCredentials, body.Code)
	})

	t.Run("Unknown User", func(t *testing.T) {
		app := fiber.New()
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)
		s := newAuthTestServer(mockRepo)
		app.Post("/login", s.Login)

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login",
			map[string]string{"username": "ghost", "password": "password123"}))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	s := newAuthTestServer(mockRepo)

	app := fiber.New()
	app.Get("/profile", s.AuthRequired(), s.Profile)

	t.Run("Valid Cookie", func(t *testing.T) {
		token, err := s.authService.IssueToken(7, "testuser")
		assert.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var identity service.Identity
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
		assert.Equal(t, uint(7), identity.UserID)
		assert.Equal(t, "testuser", identity.Username)
	})

	t.Run("Bearer Fallback", func(t *testing.T) {
		token, err := s.authService.IssueToken(7, "testuser")
		assert.NoError(t, err)

		req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("No Token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newAuthTestServer(new(MockUserRepository))
	app := fiber.New()
	app.Post("/logout", s.Logout)

	req, _ := http.NewRequest(http.MethodPost, "/logout", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == "token" {
			cleared = c.Value == ""
		}
	}
	assert.True(t, cleared, "expected token cookie to be cleared")
}
