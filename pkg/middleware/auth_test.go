package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier accepts exactly one raw token
type fakeVerifier struct{ good string }

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if raw == f.good {
		return &fakeToken{data: map[string]interface{}{"sub": f.good, "email": "admin@example.com"}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func serve(t *testing.T, h gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.GET("/", h, func(c *gin.Context) {
		claims, _ := c.Get("claims")
		c.JSON(http.StatusOK, gin.H{"claims": claims})
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	rw := serve(t, AuthMiddleware(&fakeVerifier{good: "goodtoken"}, nil), "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	for _, h := range []string{"BadHeader", "Basic abc", "Bearer "} {
		rw := serve(t, AuthMiddleware(&fakeVerifier{good: "goodtoken"}, nil), h)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	rw := serve(t, AuthMiddleware(&fakeVerifier{good: "goodtoken"}, nil), "Bearer goodtoken")
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
}

func TestAuthMiddleware_RejectsRevokedToken(t *testing.T) {
	revoked := func(ctx context.Context, raw string) (bool, error) { return raw == "goodtoken", nil }
	rw := serve(t, AuthMiddleware(&fakeVerifier{good: "goodtoken"}, revoked), "Bearer goodtoken")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	revoked := func(ctx context.Context, raw string) (bool, error) { return false, errors.New("redis down") }
	rw := serve(t, AuthMiddleware(&fakeVerifier{good: "goodtoken"}, revoked), "Bearer goodtoken")
	require.Equal(t, http.StatusServiceUnavailable, rw.Code)
}

func TestChainVerifier(t *testing.T) {
	chain := ChainVerifier{&fakeVerifier{good: "local"}, nil, &fakeVerifier{good: "idp"}}
	ctx := context.Background()

	_, err := chain.Verify(ctx, "local")
	require.NoError(t, err)
	_, err = chain.Verify(ctx, "idp")
	require.NoError(t, err)
	_, err = chain.Verify(ctx, "nope")
	require.Error(t, err)

	_, err = ChainVerifier{}.Verify(ctx, "local")
	require.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc.def")
	require.True(t, ok)
	require.Equal(t, "abc.def", tok)
	_, ok = BearerToken("Token abc")
	require.False(t, ok)
}
