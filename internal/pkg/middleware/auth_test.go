package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/contactdeck/contactdeck/app/models"
	"github.com/contactdeck/contactdeck/internal/pkg/usercontext"
)

type stubUserRepo struct {
	usersByHash map[string]*models.User
	lastLoginID uint
}

func (s *stubUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range s.usersByHash {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) GetByAPIKeyHash(hash string) (*models.User, error) {
	if u, ok := s.usersByHash[hash]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(id uint, _ time.Time) error {
	s.lastLoginID = id
	return nil
}

type stubOrgRepo struct {
	orgs map[uint]*models.Organization
}

func (s *stubOrgRepo) GetByID(id uint) (*models.Organization, error) {
	if o, ok := s.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrgRepo) UpdatePlan(id uint, plan string, seatCount int) error {
	if o, ok := s.orgs[id]; ok {
		o.Plan = plan
		o.SeatCount = seatCount
	}
	return nil
}

func newAuthTestApp(t *testing.T) (*fiber.App, *stubUserRepo, string) {
	t.Helper()

	key, hash, err := models.GenerateAPIKey()
	require.NoError(t, err)

	users := &stubUserRepo{usersByHash: map[string]*models.User{
		hash: {
			ID:             5,
			OrganizationID: 2,
			Email:          "staff@example.test",
			Role:           models.ROLE_USER,
			Status:         models.STATUS_ACTIVE,
		},
	}}
	orgs := &stubOrgRepo{orgs: map[uint]*models.Organization{
		2: {ID: 2, Name: "Acme", Plan: "pro"},
	}}

	app := fiber.New()
	app.Get("/whoami", APIKeyAuth(users, orgs), func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		return c.JSON(fiber.Map{"userId": uc.UserID, "plan": uc.Plan})
	})
	return app, users, key
}

func TestAPIKeyAuthMissingKey(t *testing.T) {
	app, _, _ := newAuthTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyAuthInvalidKey(t *testing.T) {
	app, _, _ := newAuthTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-API-Key", "cdk_wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyAuthResolvesUserAndPlan(t *testing.T) {
	app, users, key := newAuthTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-API-Key", key)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 5, users.lastLoginID)
}

func TestAPIKeyAuthBearerHeader(t *testing.T) {
	app, _, key := newAuthTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+key)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuthInactiveUser(t *testing.T) {
	app, users, key := newAuthTestApp(t)
	for _, u := range users.usersByHash {
		u.Status = models.STATUS_DISABLED
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-API-Key", key)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
