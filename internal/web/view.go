package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"valcal/internal/codec"
	"valcal/internal/ics"
	appLog "valcal/internal/log"
	"valcal/internal/model"
	"valcal/internal/unlock"
)

// viewResponse is the JSON shape for GET /view.
type viewResponse struct {
	Calendar     *model.CalendarData `json:"calendar"`
	UnlockedDays unlock.Set          `json:"unlocked_days"`
	Mode         string              `json:"mode"`
	EvaluatedAt  time.Time           `json:"evaluated_at"`
	NextUnlock   *time.Time          `json:"next_unlock,omitempty"`
}

// openResponse is the JSON shape for GET /view/open.
type openResponse struct {
	Card     model.DayCard       `json:"card"`
	Position model.ImagePosition `json:"position"`
}

// decodeRequest decodes the data parameter and writes the user-facing
// error itself when that fails.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*model.CalendarData, bool) {
	data, err := codec.Decode(r.URL.Query().Get(codec.DataParam))
	if err != nil {
		if !errors.Is(err, codec.ErrMissing) {
			appLog.Info("rejected calendar link", "reason", err.Error())
		}
		writeError(w, http.StatusBadRequest, codec.ErrorKey(err), codec.Message(err, s.requestLanguage(r)))
		return nil, false
	}
	return data, true
}

// evaluation returns the instant and mode a request is judged at. The
// recipient routes always use the server clock in receiver mode; only the
// authoring preview honours the at and mode parameters.
func (s *Server) evaluation(w http.ResponseWriter, r *http.Request, preview bool) (time.Time, unlock.Mode, bool) {
	if !preview {
		return s.now(), unlock.ModeReceiver, true
	}
	q := r.URL.Query()

	now := s.now()
	if at := q.Get("at"); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalidTime", "at must be an RFC 3339 timestamp")
			return time.Time{}, 0, false
		}
		now = t
	}

	mode, err := unlock.ParseMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalidMode", err.Error())
		return time.Time{}, 0, false
	}
	return now, mode, true
}

// handleView decodes a shared calendar and reports which days are open
// right now.
//
// GET /view?data=<token>&lang=en
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, false)
}

// handlePreviewView is handleView for the author, who may evaluate at any
// instant and in any mode.
//
// GET /api/calendar/view?data=<token>&at=<RFC3339>&mode=receiver|creator|static
func (s *Server) handlePreviewView(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, true)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request, preview bool) {
	data, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	now, mode, ok := s.evaluation(w, r, preview)
	if !ok {
		return
	}

	set := s.engine.ComputeFor(now, data, mode)
	resp := viewResponse{
		Calendar:     data,
		UnlockedDays: set,
		Mode:         mode.String(),
		EvaluatedAt:  now,
	}
	if mode == unlock.ModeReceiver {
		if next, ok := s.engine.NextUnlock(now, data.Timezone); ok {
			resp.NextUnlock = &next
		}
	}

	appLog.Debug("view evaluated", "calendar", data.ID, "mode", mode.String(), "unlocked", set.Len(), "timezone", data.Timezone)
	writeJSON(w, http.StatusOK, resp)
}

// handleOpen returns one card if it has unlocked.
//
// GET /view/open?data=<token>&day=N
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	s.serveOpen(w, r, false)
}

// GET /api/calendar/view/open?data=<token>&day=N&at=<RFC3339>&mode=creator
func (s *Server) handlePreviewOpen(w http.ResponseWriter, r *http.Request) {
	s.serveOpen(w, r, true)
}

func (s *Server) serveOpen(w http.ResponseWriter, r *http.Request, preview bool) {
	data, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	now, mode, ok := s.evaluation(w, r, preview)
	if !ok {
		return
	}
	day, err := parseDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalidDay", "day must be a number")
		return
	}

	set := s.engine.ComputeFor(now, data, mode)
	if err := unlock.CanOpen(day, set, mode); err != nil {
		switch {
		case errors.Is(err, unlock.ErrNotYet):
			writeError(w, http.StatusForbidden, "notYet", notYetMessage(s.languageFor(r, data)))
		default:
			writeError(w, http.StatusNotFound, "noSuchDay", err.Error())
		}
		return
	}

	card, ok := data.Card(day)
	if !ok {
		writeError(w, http.StatusNotFound, "noSuchDay", "this calendar has no card for that day")
		return
	}
	writeJSON(w, http.StatusOK, openResponse{Card: card, Position: card.ResolvedPosition()})
}

// handleICS serves the unlock schedule as an iCalendar download.
//
// GET /view.ics?data=<token>&year=YYYY
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	data, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	loc := s.engine.Location(data.Timezone)
	year := s.now().In(loc).Year()
	if y := r.URL.Query().Get("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n < 1970 || n > 9999 {
			writeError(w, http.StatusBadRequest, "invalidYear", "year must be a four-digit year")
			return
		}
		year = n
	}

	token := r.URL.Query().Get(codec.DataParam)
	body, err := ics.Export(data, ics.ExportOptions{
		Year:     year,
		Location: loc,
		Link:     codec.Link(s.cfg.BaseURL, token),
	})
	if err != nil {
		appLog.Error("ics export failed", err, "calendar", data.ID)
		writeError(w, http.StatusInternalServerError, "exportFailed", "failed to build calendar file")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="valentine-calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// languageFor prefers an explicit lang parameter, then the calendar's own
// language.
func (s *Server) languageFor(r *http.Request, data *model.CalendarData) model.Language {
	if l := model.Language(r.URL.Query().Get("lang")); l.Valid() {
		return l
	}
	return data.EffectiveLanguage()
}

func notYetMessage(lang model.Language) string {
	if lang == model.LanguageEnglish {
		return "Not yet! This day hasn't unlocked."
	}
	return "¡Todavía no! Este día aún no se ha desbloqueado."
}
