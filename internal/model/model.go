package model

import (
	"errors"
	"fmt"
	"time"
)

// DayCount is the fixed number of day-cards in a calendar (Feb 1..14).
const DayCount = 14

// CreatedAtLayout matches JavaScript's Date.prototype.toISOString output so
// links created here and by the browser app share one timestamp format.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ImagePosition is the crop/zoom transform applied to a card image.
type ImagePosition struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Scale float64 `json:"scale" yaml:"scale"`
}

// EffectiveScale returns the zoom factor clamped so the image never shrinks
// below its original size.
func (p ImagePosition) EffectiveScale() float64 {
	if p.Scale < 1 {
		return 1
	}
	return p.Scale
}

// DayCard is one calendar day's content.
type DayCard struct {
	// Day is the identity of the card, 1..DayCount.
	Day     int    `json:"day"`
	Message string `json:"message"`

	// ImageURL is either a remote URL or a data URI for uploaded images.
	// Empty means no image.
	ImageURL string `json:"imageUrl,omitempty"`

	// HasAnimation toggles the floating-hearts effect in the renderer.
	HasAnimation bool `json:"hasAnimation,omitempty"`

	ImagePosition *ImagePosition `json:"imagePosition,omitempty"`
}

// ResolvedPosition returns the card's image transform, defaulting to the
// identity transform, with the scale clamp applied.
func (c DayCard) ResolvedPosition() ImagePosition {
	if c.ImagePosition == nil {
		return ImagePosition{X: 0, Y: 0, Scale: 1}
	}
	p := *c.ImagePosition
	p.Scale = p.EffectiveScale()
	return p
}

// CalendarData is the whole shareable unit. It is carried in full inside
// the link token.
type CalendarData struct {
	ID            string    `json:"id"`
	Template      Template  `json:"template"`
	Cards         []DayCard `json:"cards"`
	CreatedAt     string    `json:"createdAt"`
	RecipientName string    `json:"recipientName,omitempty"`
	Language      Language  `json:"language,omitempty"`

	// Timezone is an IANA zone id. Empty means the viewer's local time.
	Timezone string `json:"timezone,omitempty"`
}

// New returns a blank calendar: default template and language, DayCount
// empty cards, createdAt set from now.
func New(id string, now time.Time) *CalendarData {
	return &CalendarData{
		ID:        id,
		Template:  DefaultTemplate,
		Cards:     BlankCards(),
		CreatedAt: FormatCreatedAt(now),
		Language:  DefaultLanguage,
	}
}

// BlankCards returns DayCount cards with empty content in day order.
func BlankCards() []DayCard {
	cards := make([]DayCard, DayCount)
	for i := range cards {
		cards[i] = DayCard{Day: i + 1}
	}
	return cards
}

// FormatCreatedAt renders t in UTC with millisecond precision.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// CreatedTime parses CreatedAt. Both the millisecond layout and plain
// RFC 3339 are accepted.
func (c *CalendarData) CreatedTime() (time.Time, error) {
	if t, err := time.Parse(CreatedAtLayout, c.CreatedAt); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, c.CreatedAt)
}

// Card returns the card for day, if present.
func (c *CalendarData) Card(day int) (DayCard, bool) {
	for _, card := range c.Cards {
		if card.Day == day {
			return card, true
		}
	}
	return DayCard{}, false
}

// EffectiveLanguage returns Language, or DefaultLanguage when unset.
func (c *CalendarData) EffectiveLanguage() Language {
	if c.Language == "" {
		return DefaultLanguage
	}
	return c.Language
}

// Clone returns a deep copy with no shared slices or pointers.
func (c *CalendarData) Clone() *CalendarData {
	if c == nil {
		return nil
	}
	out := *c
	if c.Cards != nil {
		out.Cards = make([]DayCard, len(c.Cards))
		for i, card := range c.Cards {
			if card.ImagePosition != nil {
				p := *card.ImagePosition
				card.ImagePosition = &p
			}
			out.Cards[i] = card
		}
	}
	return &out
}

// Validate checks the structural invariants of a calendar. Decoding never
// calls this; it is used where stricter input handling is wanted, such as
// drafts authored by hand.
func (c *CalendarData) Validate() error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id is empty"))
	}
	if !c.Template.Valid() {
		errs = append(errs, fmt.Errorf("unknown template %q", c.Template))
	}
	if c.Language != "" && !c.Language.Valid() {
		errs = append(errs, fmt.Errorf("unknown language %q", c.Language))
	}
	if len(c.Cards) != DayCount {
		errs = append(errs, fmt.Errorf("expected %d cards, got %d", DayCount, len(c.Cards)))
	}
	for i, card := range c.Cards {
		if card.Day != i+1 {
			errs = append(errs, fmt.Errorf("card %d has day %d", i, card.Day))
		}
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
		}
	}
	return errors.Join(errs...)
}
