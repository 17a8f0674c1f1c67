package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tableservice/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func staffClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":           "42",
		"restaurant_id": float64(1),
		"role":          role,
		"iat":           now.Unix(),
		"exp":           now.Add(time.Hour).Unix(),
	}
}

func runWithAuth(token string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/staff/kitchen/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	_ = h(c)
	return rec, c
}

func TestAuthJWT_ValidTokenPopulatesContext(t *testing.T) {
	token := signToken(t, testSecret, staffClaims("KITCHEN"))

	rec, c := runWithAuth(token, AuthJWT(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), c.Get(CtxUserIDKey))
	assert.Equal(t, int64(1), c.Get(CtxRestaurantIDKey))
	assert.Equal(t, "KITCHEN", c.Get(CtxRoleKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _ := runWithAuth("", AuthJWT(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", staffClaims("KITCHEN"))

	rec, _ := runWithAuth(token, AuthJWT(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := staffClaims("KITCHEN")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, testSecret, claims)

	rec, _ := runWithAuth(token, AuthJWT(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_RejectsNonBearer(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/staff/kitchen/orders", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := AuthJWT(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuard_AllowsListedRole(t *testing.T) {
	token := signToken(t, testSecret, staffClaims("KITCHEN"))

	rec, _ := runWithAuth(token, AuthJWT(testSecret), RoleGuard(model.RoleKitchen, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleGuard_ForbidsOtherRole(t *testing.T) {
	token := signToken(t, testSecret, staffClaims("WAITER"))

	rec, _ := runWithAuth(token, AuthJWT(testSecret), RoleGuard(model.RoleKitchen, model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoleGuard_WithoutAuthContext(t *testing.T) {
	// AuthJWTを通っていなければroleが無いので401
	rec, _ := runWithAuth("", RoleGuard(model.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
