package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestParseActor(t *testing.T) {
	userID := uuid.New()
	clientID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("client carries its client id", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleClient, "client_id": clientID.String(), "exp": exp}, testSecret)
		actor, err := ParseActor(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		require.NotNil(t, actor.ClientID)
		assert.Equal(t, clientID, *actor.ClientID)
		assert.True(t, actor.Owns(clientID))
	})

	t.Run("admin has no client", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleAdmin, "exp": exp}, testSecret)
		actor, err := ParseActor(token, testSecret)
		require.NoError(t, err)
		assert.True(t, actor.IsAdmin())
		assert.Nil(t, actor.ClientID)
	})

	t.Run("client without client id is rejected", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleClient, "exp": exp}, testSecret)
		_, err := ParseActor(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": "admin", "exp": exp}, testSecret)
		_, err := ParseActor(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleAdmin, "exp": exp}, []byte("other"))
		_, err := ParseActor(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)
		_, err := ParseActor(token, testSecret)
		assert.Error(t, err)
	})
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireAuth(testSecret), RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentActor(c).UserID.String())
	})
	return r
}

func TestRequireAuthAndRole(t *testing.T) {
	userID := uuid.New()
	exp := time.Now().Add(time.Hour).Unix()
	adminToken := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleAdmin, "exp": exp}, testSecret)
	teamToken := sign(t, jwt.MapClaims{"sub": userID.String(), "role": model.RoleTeam, "exp": exp}, testSecret)

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bearer admin", header: "Bearer " + adminToken, want: http.StatusOK},
		{name: "cookie admin", cookie: adminToken, want: http.StatusOK},
		{name: "team is not admin", header: "Bearer " + teamToken, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: accessTokenName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}
