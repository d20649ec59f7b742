package security_test

import (
	"airunote/config"
	"airunote/internal/model"
	"airunote/internal/security"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newJWTService() *security.JWTService {
	return security.NewJWTService(&config.JWTConfig{
		SecretKey:      "0123456789abcdef0123456789abcdef",
		AccessTokenTTL: "15m",
		Issuer:         "airunote",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newJWTService()
	principal := &model.Principal{UserID: "u1", Email: "u1@example.com", OrgIDs: []string{"org1"}}

	token, err := svc.GenerateAccessToken(principal)
	require.NoError(t, err)

	claims, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{"org1"}, claims.OrgIDs)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	other := security.NewJWTService(&config.JWTConfig{
		SecretKey:      "ffffffffffffffffffffffffffffffff",
		AccessTokenTTL: "15m",
		Issuer:         "airunote",
	})
	token, err := other.GenerateAccessToken(&model.Principal{UserID: "u1"})
	require.NoError(t, err)

	_, err = newJWTService().ValidateJWT(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	svc := newJWTService()
	member, err := svc.GenerateAccessToken(&model.Principal{UserID: "u1", OrgIDs: []string{"org1"}})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(security.JWTMiddleware(svc))
	router.With(security.OrgMembershipMiddleware).Get("/api/orgs/{org_id}/ping", func(w http.ResponseWriter, r *http.Request) {
		principal, err := security.GetPrincipalFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(principal.UserID))
	})

	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
	}{
		{name: "без токена", path: "/api/orgs/org1/ping", wantStatus: http.StatusUnauthorized},
		{name: "мусорный токен", path: "/api/orgs/org1/ping", authHeader: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "чужая организация", path: "/api/orgs/org2/ping", authHeader: "Bearer " + member, wantStatus: http.StatusForbidden},
		{name: "участник", path: "/api/orgs/org1/ping", authHeader: "Bearer " + member, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, "secret", hash)
	assert.True(t, hasher.Compare(hash, "secret"))
	assert.False(t, hasher.Compare(hash, "wrong"))
}
