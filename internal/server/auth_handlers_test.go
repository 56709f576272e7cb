package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studentconnect/internal/config"
	"studentconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "Password123!",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"username": "testuser",
				"email":    "exists@example.com",
				"password": "Password123!",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "exists@example.com").
					Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"username": "testuser",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Weak Password",
			body: map[string]string{
				"username": "testuser",
				"email":    "test@example.com",
				"password": "short",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Email",
			body: map[string]string{
				"username": "testuser",
				"email":    "not-an-email",
				"password": "Password123!",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)

			s := &Server{
				config:   &config.Config{JWTSecret: "test_secret_test_secret_test_1234"},
				userRepo: mockRepo,
			}
			app.Post("/register", s.Register)

			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)

			if tt.expectedStatus == http.StatusCreated {
				var body map[string]json.RawMessage
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Contains(t, body, "token")
				assert.Contains(t, body, "user")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	activeUser := func() *models.User {
		return &models.User{
			ID:       1,
			Username: "testuser",
			Email:    "test@example.com",
			Password: string(hashed),
			IsActive: true,
		}
	}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"email": "test@example.com", "password": "Password123!"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "test@example.com").Return(activeUser(), nil)
				repo.On("Update", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Wrong Password",
			body: map[string]string{"email": "test@example.com", "password": "wrongpass"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "test@example.com").Return(activeUser(), nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown Email",
			body: map[string]string{"email": "nobody@example.com", "password": "Password123!"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Deactivated Account",
			body: map[string]string{"email": "test@example.com", "password": "Password123!"},
			mockSetup: func(repo *MockUserRepository) {
				user := activeUser()
				user.IsActive = false
				repo.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)

			s := &Server{
				config:   &config.Config{JWTSecret: "test_secret_test_secret_test_1234"},
				userRepo: mockRepo,
			}
			app.Post("/login", s.Login)

			payload, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(&models.User{
		ID:       7,
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashed),
		IsActive: true,
	}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret_test_secret_test_1234"},
		userRepo: mockRepo,
	}

	app := fiber.New()
	app.Post("/login", s.Login)
	app.Get("/whoami", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	payload, err := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "Password123!",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginBody struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginBody))
	require.NotEmpty(t, loginBody.Token)

	// The issued token must authenticate subsequent requests.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+loginBody.Token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var whoami map[string]float64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&whoami))
	assert.Equal(t, float64(7), whoami["user_id"])
}
