// Package session holds the calendar currently being authored or viewed
// and funnels every change through named operations.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"valcal/internal/codec"
	"valcal/internal/imageuri"
	appLog "valcal/internal/log"
	"valcal/internal/model"
)

var (
	// ErrNoCalendar is returned by operations that must report failure when
	// no calendar is held. The plain setters silently do nothing instead.
	ErrNoCalendar = errors.New("session: no calendar")
	// ErrNoSuchDay is returned by AttachImage for a day the calendar lacks.
	ErrNoSuchDay = errors.New("session: no such day")
)

// CardUpdate is a partial update of a DayCard. Nil fields are left alone.
type CardUpdate struct {
	Message       *string              `json:"message,omitempty"`
	ImageURL      *string              `json:"imageUrl,omitempty"`
	HasAnimation  *bool                `json:"hasAnimation,omitempty"`
	ImagePosition *model.ImagePosition `json:"imagePosition,omitempty"`

	// ClearImage removes the image and its position.
	ClearImage bool `json:"clearImage,omitempty"`
}

func (u CardUpdate) apply(c *model.DayCard) {
	if u.ClearImage {
		c.ImageURL = ""
		c.ImagePosition = nil
	}
	if u.Message != nil {
		c.Message = *u.Message
	}
	if u.ImageURL != nil {
		c.ImageURL = *u.ImageURL
	}
	if u.HasAnimation != nil {
		c.HasAnimation = *u.HasAnimation
	}
	if u.ImagePosition != nil {
		p := *u.ImagePosition
		c.ImagePosition = &p
	}
}

// Store is the single owner of the live calendar. Each mutation builds a
// new value and swaps it in, so readers never see a half-applied change.
// Readers receive deep copies.
type Store struct {
	mu          sync.Mutex
	calendar    *model.CalendarData
	previewMode bool
	language    model.Language

	origin          string
	defaultLanguage model.Language
	maxImageBytes   int64
	now             func() time.Time
	newID           func() string
}

// Option configures a Store.
type Option func(*Store)

// WithOrigin sets the base URL links are built on.
func WithOrigin(origin string) Option {
	return func(s *Store) { s.origin = origin }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithDefaultLanguage sets the language of new calendars and the initial
// UI language.
func WithDefaultLanguage(lang model.Language) Option {
	return func(s *Store) {
		if lang.Valid() {
			s.defaultLanguage = lang
		}
	}
}

// WithMaxImageBytes sets the upload cap for AttachImage.
func WithMaxImageBytes(n int64) Option {
	return func(s *Store) { s.maxImageBytes = n }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		defaultLanguage: model.DefaultLanguage,
		maxImageBytes:   imageuri.DefaultMaxBytes,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = newULIDGenerator(s.now)
	}
	s.language = s.defaultLanguage
	return s
}

// Initialize replaces any held calendar with a blank one and returns a
// copy of it.
func (s *Store) Initialize() *model.CalendarData {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := model.New(s.newID(), s.now())
	c.Language = s.defaultLanguage
	s.calendar = c
	appLog.Debug("calendar initialized", "id", c.ID)
	return c.Clone()
}

// Load replaces the held calendar with a copy of data, for example one
// decoded from a link.
func (s *Store) Load(data *model.CalendarData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = data.Clone()
	if data != nil && data.Language.Valid() {
		s.language = data.Language
	}
}

// Calendar returns a copy of the held calendar.
func (s *Store) Calendar() (*model.CalendarData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calendar == nil {
		return nil, false
	}
	return s.calendar.Clone(), true
}

// update applies fn to a copy of the held calendar and swaps it in. It
// reports false when no calendar is held.
func (s *Store) update(fn func(c *model.CalendarData)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calendar == nil {
		return false
	}
	next := s.calendar.Clone()
	fn(next)
	s.calendar = next
	return true
}

// SetTemplate replaces the template. Callers pass one of model.Templates.
func (s *Store) SetTemplate(t model.Template) {
	s.update(func(c *model.CalendarData) { c.Template = t })
}

func (s *Store) SetRecipientName(name string) {
	s.update(func(c *model.CalendarData) { c.RecipientName = name })
}

// SetLanguage changes the UI language and, when a calendar is held, the
// calendar's language.
func (s *Store) SetLanguage(lang model.Language) {
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	s.update(func(c *model.CalendarData) { c.Language = lang })
}

// SetTimezone sets the IANA zone the recipient's unlocks follow. Empty
// means the viewer's local time.
func (s *Store) SetTimezone(tz string) {
	s.update(func(c *model.CalendarData) { c.Timezone = tz })
}

// UpdateCard merges u into the card for day. Unknown days are ignored.
func (s *Store) UpdateCard(day int, u CardUpdate) {
	s.update(func(c *model.CalendarData) {
		for i := range c.Cards {
			if c.Cards[i].Day == day {
				u.apply(&c.Cards[i])
			}
		}
	})
}

// AttachImage converts an upload to a data URI and stores it on day. An
// upload over the size cap is rejected and nothing changes.
func (s *Store) AttachImage(day int, r io.Reader, contentType string) error {
	c, ok := s.Calendar()
	if !ok {
		return ErrNoCalendar
	}
	if _, ok := c.Card(day); !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchDay, day)
	}

	uri, err := imageuri.Encode(r, contentType, s.maxImageBytes)
	if err != nil {
		appLog.Warn("image rejected", "day", day, "reason", err.Error())
		return err
	}
	s.UpdateCard(day, CardUpdate{ImageURL: &uri})
	return nil
}

// Link encodes the held calendar into a shareable link.
func (s *Store) Link() (string, error) {
	c, ok := s.Calendar()
	if !ok {
		return "", ErrNoCalendar
	}
	return codec.EncodeLink(s.origin, c)
}

// ShareableLink is Link with failures reported as an empty string.
func (s *Store) ShareableLink() string {
	link, err := s.Link()
	if err != nil {
		if !errors.Is(err, ErrNoCalendar) {
			appLog.Error("failed to build shareable link", err)
		}
		return ""
	}
	return link
}

// Reset discards the held calendar and the preview flag. The UI language
// is kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = nil
	s.previewMode = false
}

// PreviewMode reports whether the author asked for the locked preview.
// Only renderers consult it.
func (s *Store) PreviewMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewMode
}

func (s *Store) SetPreviewMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewMode = on
}

// Language returns the UI language.
func (s *Store) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}
