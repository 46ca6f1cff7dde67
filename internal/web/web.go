package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"valcal/internal/config"
	appLog "valcal/internal/log"
	"valcal/internal/model"
	"valcal/internal/session"
	"valcal/internal/unlock"
)

// Server hosts the recipient view, the .ics download and the authoring API
// around a single session store.
type Server struct {
	cfg    *config.Config
	mux    *http.ServeMux
	store  *session.Store
	engine *unlock.Engine

	// now is replaced in tests.
	now func() time.Time
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, store *session.Store, engine *unlock.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		store:  store,
		engine: engine,
		now:    time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Recipient side: everything comes from the token.
	s.mux.HandleFunc("GET /view", s.handleView)
	s.mux.HandleFunc("GET /view/open", s.handleOpen)
	s.mux.HandleFunc("GET /view.ics", s.handleICS)

	s.mux.HandleFunc("GET /api/templates", s.handleTemplates)
	s.mux.HandleFunc("GET /api/languages", s.handleLanguages)
	s.mux.HandleFunc("GET /api/timezones", s.handleTimezones)

	// Authoring side, optionally behind basic auth.
	s.handleAuthor("POST /api/calendar", s.handleInitialize)
	s.handleAuthor("GET /api/calendar", s.handleGetCalendar)
	s.handleAuthor("DELETE /api/calendar", s.handleReset)
	s.handleAuthor("PUT /api/calendar/template", s.handleSetTemplate)
	s.handleAuthor("PUT /api/calendar/recipient", s.handleSetRecipient)
	s.handleAuthor("PUT /api/calendar/language", s.handleSetLanguage)
	s.handleAuthor("PUT /api/calendar/timezone", s.handleSetTimezone)
	s.handleAuthor("PATCH /api/calendar/cards/{day}", s.handleUpdateCard)
	s.handleAuthor("POST /api/calendar/cards/{day}/image", s.handleUploadImage)
	s.handleAuthor("GET /api/calendar/link", s.handleLink)
	s.handleAuthor("GET /api/calendar/view", s.handlePreviewView)
	s.handleAuthor("GET /api/calendar/view/open", s.handlePreviewOpen)
	s.handleAuthor("GET /api/calendar/preview", s.handleGetPreview)
	s.handleAuthor("PUT /api/calendar/preview", s.handleSetPreview)
}

func (s *Server) handleAuthor(pattern string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.basicAuthEnabled() {
		handler = s.basicAuthMiddleware(handler)
	}
	s.mux.Handle(pattern, handler)
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials leave auth disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="valcal", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "base_url", s.cfg.BaseURL, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Templates)
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Languages)
}

func (s *Server) handleTimezones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Timezones)
}

// requestLanguage picks the language for user-facing messages: the lang
// query parameter if valid, else the configured default.
func (s *Server) requestLanguage(r *http.Request) model.Language {
	if l := model.Language(r.URL.Query().Get("lang")); l.Valid() {
		return l
	}
	if s.cfg != nil {
		return s.cfg.DefaultLanguage
	}
	return model.DefaultLanguage
}

func parseDay(r *http.Request) (int, error) {
	day, err := strconv.Atoi(r.PathValue("day"))
	if err != nil {
		day, err = strconv.Atoi(r.URL.Query().Get("day"))
	}
	return day, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

type errResp struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, key, msg string) {
	writeJSON(w, status, errResp{Error: key, Message: msg})
}
