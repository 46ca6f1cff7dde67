package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"valcal/internal/imageuri"
	appLog "valcal/internal/log"
	"valcal/internal/model"
	"valcal/internal/session"
	"valcal/internal/unlock"
)

// maxBodyBytes bounds JSON request bodies. Card updates may carry an
// inline data URI, so this sits above the image cap.
const maxBodyBytes = 4 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalidBody", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeCalendar responds with the held calendar, or 404 when none is held.
func (s *Server) writeCalendar(w http.ResponseWriter, status int) {
	c, ok := s.store.Calendar()
	if !ok {
		writeError(w, http.StatusNotFound, "noCalendar", "no calendar has been started")
		return
	}
	writeJSON(w, status, c)
}

// POST /api/calendar
func (s *Server) handleInitialize(w http.ResponseWriter, _ *http.Request) {
	c := s.store.Initialize()
	appLog.Info("calendar started", "id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

// GET /api/calendar
func (s *Server) handleGetCalendar(w http.ResponseWriter, _ *http.Request) {
	s.writeCalendar(w, http.StatusOK)
}

// DELETE /api/calendar
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.store.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/calendar/template {"template":"cute-pastel"}
func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template model.Template `json:"template"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Template.Valid() {
		writeError(w, http.StatusBadRequest, "invalidTemplate", "unknown template "+string(req.Template))
		return
	}
	s.store.SetTemplate(req.Template)
	s.writeCalendar(w, http.StatusOK)
}

// PUT /api/calendar/recipient {"recipientName":"Sam"}
func (s *Server) handleSetRecipient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientName string `json:"recipientName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.store.SetRecipientName(req.RecipientName)
	s.writeCalendar(w, http.StatusOK)
}

// PUT /api/calendar/language {"language":"en"}
//
// The UI language changes even when no calendar is held, so this answers
// with the language rather than the calendar.
func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language model.Language `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Language.Valid() {
		writeError(w, http.StatusBadRequest, "invalidLanguage", "unknown language "+string(req.Language))
		return
	}
	s.store.SetLanguage(req.Language)
	writeJSON(w, http.StatusOK, map[string]any{"language": s.store.Language()})
}

// PUT /api/calendar/timezone {"timezone":"Europe/Madrid"}
func (s *Server) handleSetTimezone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timezone string `json:"timezone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	tz := strings.TrimSpace(req.Timezone)
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			writeError(w, http.StatusBadRequest, "invalidTimezone", "unknown timezone "+tz)
			return
		}
	}
	s.store.SetTimezone(tz)
	s.writeCalendar(w, http.StatusOK)
}

// PATCH /api/calendar/cards/{day}
//
// Days outside the calendar are accepted and ignored, matching the store.
func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalidDay", "day must be a number")
		return
	}
	var u session.CardUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	s.store.UpdateCard(day, u)
	s.writeCalendar(w, http.StatusOK)
}

// POST /api/calendar/cards/{day}/image (multipart field "image")
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalidDay", "day must be a number")
		return
	}

	// Leave room for the multipart framing around the file itself.
	limit := s.cfg.MaxImageBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "imageTooLarge", imageuri.TooLarge(s.cfg.MaxImageBytes).Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalidUpload", "expected a multipart form with an image field")
		return
	}
	defer file.Close()

	err = s.store.AttachImage(day, file, header.Header.Get("Content-Type"))
	switch {
	case err == nil:
		s.writeCalendar(w, http.StatusOK)
	case errors.Is(err, session.ErrNoCalendar):
		writeError(w, http.StatusNotFound, "noCalendar", "no calendar has been started")
	case errors.Is(err, session.ErrNoSuchDay):
		writeError(w, http.StatusNotFound, "noSuchDay", err.Error())
	case errors.Is(err, imageuri.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "imageTooLarge", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalidImage", err.Error())
	}
}

// GET /api/calendar/link
func (s *Server) handleLink(w http.ResponseWriter, _ *http.Request) {
	link, err := s.store.Link()
	if err != nil {
		if errors.Is(err, session.ErrNoCalendar) {
			writeError(w, http.StatusNotFound, "noCalendar", "no calendar has been started")
			return
		}
		appLog.Error("failed to build link", err)
		writeError(w, http.StatusInternalServerError, "encodeFailed", "failed to build link")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

type previewResponse struct {
	Locked       bool       `json:"locked"`
	Mode         string     `json:"mode"`
	UnlockedDays unlock.Set `json:"unlocked_days"`
}

func (s *Server) writePreview(w http.ResponseWriter) {
	locked := s.store.PreviewMode()
	mode := unlock.ModeCreatorPreview
	if locked {
		mode = unlock.ModeStaticPreview
	}
	writeJSON(w, http.StatusOK, previewResponse{
		Locked:       locked,
		Mode:         mode.String(),
		UnlockedDays: s.engine.Compute(s.now(), "", mode),
	})
}

// GET /api/calendar/preview
func (s *Server) handleGetPreview(w http.ResponseWriter, _ *http.Request) {
	s.writePreview(w)
}

// PUT /api/calendar/preview {"locked":true}
func (s *Server) handleSetPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locked bool `json:"locked"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.store.SetPreviewMode(req.Locked)
	s.writePreview(w)
}
