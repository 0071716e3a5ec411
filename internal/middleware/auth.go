package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

const tokenTTL = 30 * 24 * time.Hour

// Principal is the authenticated caller extracted from the bearer token.
type Principal struct {
	AccountID int64
	Email     string
	Role      domain.Role
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func GenerateToken(account *domain.Account, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id": account.ID,
		"email":      account.Email,
		"role":       string(account.Role),
		"exp":        now.Add(tokenTTL).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns the principal it carries.
func ParseToken(tokenStr, secret string) (Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}

	accountID, ok := claims["account_id"].(float64)
	if !ok || accountID <= 0 {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	roleStr, _ := claims["role"].(string)
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	email, _ := claims["email"].(string)

	return Principal{AccountID: int64(accountID), Email: email, Role: role}, nil
}

// AuthMiddleware requires a valid bearer token. Browser websocket clients
// cannot set headers, so an access_token query parameter is accepted as a
// fallback.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			var tokenStr string
			if header := r.Header.Get("Authorization"); header != "" {
				tokenStr = strings.TrimPrefix(header, "Bearer ")
				if tokenStr == header {
					writeError(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
			} else if q := r.URL.Query().Get("access_token"); q != "" {
				tokenStr = q
			} else {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			principal, err := ParseToken(tokenStr, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
