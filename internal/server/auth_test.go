package server

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKID = "test-key"

func jwksServer(t *testing.T, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	b64 := base64.RawURLEncoding.EncodeToString
	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   b64(key.N.Bytes()),
			"e":   b64(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newAuthRouter(t *testing.T) (http.Handler, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwks := jwksServer(t, &key.PublicKey)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	auth, err := NewJWTAuth(ctx, JWTAuthOptions{JWKSURL: jwks.URL})
	require.NoError(t, err)

	whoami := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, map[string]string{"subject": ""})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"subject": claims.Subject, "email": claims.Email})
	})
	mux := http.NewServeMux()
	mux.Handle("/api/v1/whoami", whoami)
	mux.Handle("/health/live", whoami)
	return JWTAuthWithExclusions(auth.Middleware(), "/health", "/metrics")(mux), key
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "ana@example.com",
		Role:  "authenticated",
	}
}

func get(h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	h, key := newAuthRouter(t)

	rec := get(h, "/api/v1/whoami", "Bearer "+signToken(t, key, validClaims()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"subject":"user-1","email":"ana@example.com"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	h, key := newAuthRouter(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil
	noSubject := validClaims()
	noSubject.Subject = ""

	tests := map[string]string{
		"missing header":    "",
		"wrong scheme":      "Basic dXNlcjpwYXNz",
		"empty token":       "Bearer ",
		"garbage":           "Bearer not-a-jwt",
		"expired":           "Bearer " + signToken(t, key, expired),
		"no expiry":         "Bearer " + signToken(t, key, noExpiry),
		"no subject":        "Bearer " + signToken(t, key, noSubject),
		"foreign signature": "Bearer " + signToken(t, other, validClaims()),
	}
	for name, authorization := range tests {
		t.Run(name, func(t *testing.T) {
			rec := get(h, "/api/v1/whoami", authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, CodeUnauthorized, errorCode(t, rec))
		})
	}
}

func TestJWTAuthSkipsExcludedPaths(t *testing.T) {
	h, _ := newAuthRouter(t)

	rec := get(h, "/health/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewJWTAuthRequiresURL(t *testing.T) {
	_, err := NewJWTAuth(context.Background(), JWTAuthOptions{})
	assert.Error(t, err)
}
