package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

const UnauthorizedMessage = "Invalid authentication token"

var ErrUnauthorized = errors.New("invalid authentication token")

// StaticToken guards routes with a single pre-shared bearer secret.
type StaticToken struct {
	secret []byte
}

func NewStaticToken(secret string) *StaticToken {
	return &StaticToken{secret: []byte(secret)}
}

// Verify checks an Authorization header value of the form "Bearer <token>".
func (s *StaticToken) Verify(authHeader string) error {
	token, ok := bearerToken(authHeader)
	if !ok || token == "" || len(s.secret) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), s.secret) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func (s *StaticToken) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Verify(r.Header.Get("Authorization")); err != nil {
			WriteUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": UnauthorizedMessage})
}

func bearerToken(authHeader string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}
