package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cristianoliveira/proposal-tracker/internal/logging"
	"github.com/cristianoliveira/proposal-tracker/internal/storage/supabase"
)

type contextKey string

// ContextKeyClaims holds the verified *Claims of the request.
const ContextKeyClaims contextKey = "jwt_claims"

// Claims are the verified token claims of an API caller.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ClaimsFromContext returns the claims stored by JWTAuth, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*Claims)
	return claims, ok
}

// JWTAuthOptions configures JWTAuth.
type JWTAuthOptions struct {
	JWKSURL         string
	Client          *http.Client
	RefreshInterval time.Duration
	Leeway          time.Duration
}

// JWTAuth verifies bearer tokens against the identity provider's JWKS.
type JWTAuth struct {
	jwks   keyfunc.Keyfunc
	leeway time.Duration
}

// NewJWTAuth creates the middleware. The key set is fetched in the background,
// so an unreachable provider does not prevent startup.
func NewJWTAuth(ctx context.Context, opts JWTAuthOptions) (*JWTAuth, error) {
	if strings.TrimSpace(opts.JWKSURL) == "" {
		return nil, errors.New("server: jwks url is required")
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	refresh := opts.RefreshInterval
	if refresh <= 0 {
		refresh = time.Hour
	}

	storage, err := jwkset.NewStorageFromHTTP(opts.JWKSURL, jwkset.HTTPClientStorageOptions{
		Client:                    client,
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refresh,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logging.Error("server: jwks refresh failed", "url", opts.JWKSURL, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("server: create jwks storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("server: create keyfunc: %w", err)
	}
	return &JWTAuth{jwks: k, leeway: opts.Leeway}, nil
}

// Middleware rejects requests without a valid bearer token. Verified claims
// go into the request context, and the raw token is forwarded to the
// supabase repository so row-level security applies to the caller.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing or malformed Authorization header")
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, j.jwks.KeyfuncCtx(r.Context()),
				jwt.WithValidMethods([]string{"RS256", "ES256"}),
				jwt.WithExpirationRequired(),
				jwt.WithLeeway(j.leeway),
			)
			if err != nil || !token.Valid {
				logging.Debug("server: token rejected", "remote_addr", r.RemoteAddr, "error", err)
				unauthorized(w, "invalid or expired token")
				return
			}
			if sub, _ := claims.GetSubject(); sub == "" {
				unauthorized(w, "token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = supabase.WithAccessToken(ctx, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// JWTAuthWithExclusions skips mw for paths starting with any of the prefixes.
func JWTAuthWithExclusions(mw func(http.Handler) http.Handler, excludePrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}
			protected.ServeHTTP(w, r)
		})
	}
}
