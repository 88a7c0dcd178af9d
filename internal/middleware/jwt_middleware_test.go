package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// stubUsers satisfies repositories.UserRepository; middleware never reaches it.
type stubUsers struct{}

func (stubUsers) Create(context.Context, *models.User) error { return nil }
func (stubUsers) GetByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (stubUsers) GetByID(context.Context, uint) (*models.User, error) { return nil, nil }
func (stubUsers) Delete(context.Context, uint) error { return nil }

func setup(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	authService, err := services.NewAuthService(stubUsers{}, services.AuthConfig{
		JWTSecret:     "secret",
		TokenTTL:      time.Hour,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin123",
	}, nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/admin", append(middleware.Require(authService, services.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(middleware.Principal(c))
	})...)
	app.Get("/cart", append(middleware.Require(authService, services.RoleUser), func(c *fiber.Ctx) error {
		return c.JSON(middleware.Principal(c))
	})...)
	return app, authService
}

func call(t *testing.T, app *fiber.App, path, authHeader string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthRequired(t *testing.T) {
	app, authService := setup(t)
	adminToken, err := authService.LoginAdmin("admin@example.com", "admin123")
	require.NoError(t, err)

	status, body := call(t, app, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token missing", body["error"])

	status, _ = call(t, app, "/admin", "Token "+adminToken)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, app, "/admin", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token invalid or expired", body["error"])

	status, body = call(t, app, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin", body["role"])

	status, _ = call(t, app, "/admin", "bearer "+adminToken)
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireRole_AdminTokenOnUserRoute(t *testing.T) {
	app, authService := setup(t)
	adminToken, err := authService.LoginAdmin("admin@example.com", "admin123")
	require.NoError(t, err)

	status, body := call(t, app, "/cart", "Bearer "+adminToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "user account required", body["error"])
}
