package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petclinic/internal/platform/respond"
	"petclinic/internal/ports/auth"
)

type ctxKey string

const stateKey ctxKey = "auth"

// Headers del modo dev.
const (
	DebugUserHeader  = "X-Debug-User-ID"
	DebugRolesHeader = "X-Debug-Roles"

	// TokenCookie es la cookie que setea el login.
	TokenCookie = "Bearer"
)

// StatusInvalidToken: token presente pero inválido o vencido.
const StatusInvalidToken = 498

type authState struct {
	claims   auth.Claims
	ok       bool
	hasToken bool
	err      error
}

// AuthContext:
//   - Si verifier != nil y viene token (Bearer header o cookie) => Verify() y setea claims.
//   - Si verifier == nil => modo dev: X-Debug-User-ID (+ X-Debug-Roles separados por coma).
//   - Nunca corta el request; RequireRoles decide 401/498/403/503.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var st authState

			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get(DebugUserHeader)); uid != "" {
					st = authState{
						claims:   auth.Claims{UserID: uid, Roles: splitRoles(r.Header.Get(DebugRolesHeader))},
						ok:       true,
						hasToken: true,
					}
				}
			} else if token := TokenFromRequest(r); token != "" {
				st.hasToken = true
				claims, err := verifier.Verify(r.Context(), token)
				if err != nil {
					st.err = err
				} else {
					st.claims, st.ok = claims, true
				}
			}

			ctx := context.WithValue(r.Context(), stateKey, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	st, _ := ctx.Value(stateKey).(authState)
	return st.claims, st.ok
}

// TokenError devuelve el error de verificación, si hubo token y no validó.
func TokenError(ctx context.Context) error {
	st, _ := ctx.Value(stateKey).(authState)
	return st.err
}

// RequireRoles corta con 401 sin token, 498 con token inválido y 403 si ningún rol coincide.
// Si el verificador falla por otra causa (auth caído) responde 503.
// Sin roles solo exige un usuario autenticado.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, _ := r.Context().Value(stateKey).(authState)
			switch {
			case !st.hasToken:
				respond.Error(w, http.StatusUnauthorized, "unauthorized")
			case !st.ok && errors.Is(st.err, auth.ErrInvalidToken):
				respond.Error(w, StatusInvalidToken, "invalid token")
			case !st.ok:
				respond.Error(w, http.StatusServiceUnavailable, "auth service unavailable")
			case !st.claims.HasAnyRole(roles...):
				respond.Error(w, http.StatusForbidden, "forbidden")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// TokenFromRequest lee el token del header Authorization o de la cookie Bearer.
func TokenFromRequest(r *http.Request) string {
	if t := bearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func splitRoles(raw string) []string {
	out := make([]string, 0)
	for _, r := range strings.Split(raw, ",") {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			out = append(out, r)
		}
	}
	return out
}
