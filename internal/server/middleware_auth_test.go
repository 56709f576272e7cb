package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studentconnect/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return &Server{
		config: &config.Config{JWTSecret: "test_secret_test_secret_test_1234"},
	}
}

func protectedApp(s *Server) *fiber.App {
	app := fiber.New()
	app.Get("/secure", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	app := protectedApp(newTestServer(t))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_MalformedToken(t *testing.T) {
	app := protectedApp(newTestServer(t))

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_WrongSecret(t *testing.T) {
	s := newTestServer(t)
	app := protectedApp(s)

	other := &Server{config: &config.Config{JWTSecret: "another_secret_another_secret_12"}}
	token, err := other.generateToken(1, "testuser")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_WrongIssuer(t *testing.T) {
	s := newTestServer(t)
	app := protectedApp(s)

	claims := jwt.MapClaims{
		"sub": "1",
		"iss": "someone-else",
		"aud": "studentconnect-client",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	app := protectedApp(s)

	claims := jwt.MapClaims{
		"sub": "1",
		"iss": "studentconnect-api",
		"aud": "studentconnect-client",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.JWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_ValidToken(t *testing.T) {
	s := newTestServer(t)

	app := fiber.New()
	app.Get("/secure", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	token, err := s.generateToken(42, "testuser")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	tests := []struct {
		name           string
		isAdmin        bool
		expectedStatus int
	}{
		{"admin passes", true, http.StatusOK},
		{"non-admin forbidden", false, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, dbMock := setupMockDB(t)
			s := newTestServer(t)
			s.db = db

			dbMock.ExpectQuery(`SELECT "is_admin" FROM "users"`).
				WillReturnRows(sqlmock.NewRows([]string{"is_admin"}).AddRow(tt.isAdmin))

			app := fiber.New()
			app.Get("/admin", authAs(1), s.AdminRequired(), func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
