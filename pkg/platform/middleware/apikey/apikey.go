// Package apikey authenticates requests by API key and enforces the admin and
// participant access policies.
package apikey

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"botregistry/internal/auth"
)

// DefaultHeader is the header the API key is read from unless configured
// otherwise.
const DefaultHeader = "X-Api-Key"

// DefaultScheme names the authentication scheme attached to resolved
// identities.
const DefaultScheme = "ApiKey"

// Config controls where the credential is read from and how the resulting
// principal is tagged.
type Config struct {
	Header string
	Scheme string
}

func (c Config) withDefaults() Config {
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	return c
}

// Principal is an authenticated identity tagged with the scheme that
// produced it.
type Principal struct {
	Identity *auth.Identity
	Scheme   string
}

type principalKey struct{}

// GetPrincipal retrieves the authenticated principal from the context, or nil
// when the request did not authenticate.
func GetPrincipal(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// withPrincipal is exported for tests via WithPrincipal.
func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// WithPrincipal attaches a principal to a context. Test seam; the middleware
// is the production writer.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return withPrincipal(ctx, p)
}

// FailureCounter is the slice of the metrics registry this package needs.
type FailureCounter interface {
	IncrementAuthFailures()
}

// Authenticate resolves the configured header through the claims provider and
// rejects the request when no identity results.
//
// The response body deliberately does not reveal whether the key was absent or
// merely wrong; both cases produce the same message naming the expected
// header. The distinction is visible only in logs.
func Authenticate(cfg Config, provider auth.ClaimsProvider, logger *slog.Logger, failures FailureCounter) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := r.Header.Get(cfg.Header)
			if key == "" {
				logger.WarnContext(ctx, "authentication failed - missing api key",
					"header", cfg.Header,
				)
				rejectUnauthenticated(w, cfg.Header, failures)
				return
			}

			identity, err := provider.GetIdentity(ctx, key)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve api key",
					"header", cfg.Header,
					"error", err,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "failed to validate API key")
				return
			}
			if identity == nil {
				logger.WarnContext(ctx, "authentication failed - unrecognized api key",
					"header", cfg.Header,
				)
				rejectUnauthenticated(w, cfg.Header, failures)
				return
			}

			ctx = withPrincipal(ctx, &Principal{Identity: identity, Scheme: cfg.Scheme})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects any request whose principal lacks the admin claim.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if !p.principalIsAdmin() {
				logger.WarnContext(r.Context(), "forbidden - admin claim required")
				writeJSONError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireParticipant rejects any request whose principal lacks a participant
// id claim. Admin principals do not pass: they carry no participant identity.
func RequireParticipant(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil || !p.Identity.IsParticipant() {
				logger.WarnContext(r.Context(), "forbidden - participant claim required")
				writeJSONError(w, http.StatusForbidden, "forbidden", "participant access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (p *Principal) principalIsAdmin() bool {
	return p != nil && p.Identity.IsAdmin()
}

func rejectUnauthenticated(w http.ResponseWriter, header string, failures FailureCounter) {
	if failures != nil {
		failures.IncrementAuthFailures()
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized",
		fmt.Sprintf("invalid or missing API key (expected header %s)", header))
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}
