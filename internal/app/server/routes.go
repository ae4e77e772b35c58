package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/cors"

	"blacklist-api/internal/api/dto"
	"blacklist-api/internal/auth"
	"blacklist-api/internal/blacklist"
	"blacklist-api/internal/domain"
)

const (
	maxRequestBodyBytes = 1 << 20
	internalErrorDetail = "Internal server error"
	bodyTooLargeDetail  = "Request body too large"
)

// Server owns the HTTP surface of the blacklist service.
type Server struct {
	addEmail   *blacklist.AddEmailUseCase
	checkEmail *blacklist.CheckEmailUseCase
	gate       *auth.StaticToken
}

func New(repository domain.BlacklistRepository, gate *auth.StaticToken) *Server {
	return &Server{
		addEmail:   blacklist.NewAddEmailUseCase(repository),
		checkEmail: blacklist.NewCheckEmailUseCase(repository),
		gate:       gate,
	}
}

// Routes returns the complete handler chain: CORS, request logging, then the mux.
func (s *Server) Routes() http.Handler {
	router := http.NewServeMux()
	router.Handle("POST /blacklists", s.gate.RequireToken(http.HandlerFunc(s.addToBlacklist)))
	router.Handle("GET /blacklists/{email}", s.gate.RequireToken(http.HandlerFunc(s.checkBlacklist)))
	router.HandleFunc("GET /health", healthCheck)
	router.HandleFunc("GET /version", getVersion)

	log.Debug("Routes opened")

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})

	return corsHandler(logRequests(router))
}

// NewHTTPServer binds handler to the given port with conservative timeouts.
func NewHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeUseCaseError maps use case failures onto status codes. Anything
// unrecognised is logged and reported without internal detail.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation dto.ValidationErrors
		duplicate  *domain.DuplicateEmailError
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": validation})
	case errors.As(err, &duplicate):
		writeError(w, duplicate.Error(), http.StatusConflict)
	case errors.As(err, &tooLarge):
		writeError(w, bodyTooLargeDetail, http.StatusRequestEntityTooLarge)
	case errors.Is(err, auth.ErrUnauthorized):
		auth.WriteUnauthorized(w)
	default:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, internalErrorDetail, http.StatusInternalServerError)
	}
}
