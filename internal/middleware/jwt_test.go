package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	appErrors "github.com/bmlt-enabled/mayo-events-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if v.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func runJWT(t *testing.T, auth tokenValidator, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c.Request = req

	reached := false
	JWT(auth)(c)
	if !c.IsAborted() {
		reached = true
	}
	return w, reached
}

func TestJWTRequiresHeader(t *testing.T) {
	w, reached := runJWT(t, &validatorStub{}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, reached)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	w, reached := runJWT(t, &validatorStub{}, "Token abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, reached)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	w, reached := runJWT(t, &validatorStub{}, "Bearer bad")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.False(t, reached)
}

func TestJWTStoresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer good")
	c.Request = req

	claims := &models.JWTClaims{UserID: "admin-1"}
	JWT(&validatorStub{claims: claims})(c)

	require.False(t, c.IsAborted())
	stored, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	require.Equal(t, claims, stored)
}
