// Package codec turns a calendar into a URL-safe token and back. The token
// is the only copy of a shared calendar, so Decode(Encode(x)) must equal x.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"valcal/internal/model"
)

var (
	// ErrMissing means no token was supplied at all.
	ErrMissing = errors.New("codec: no calendar data")
	// ErrMalformed means a token was supplied but is not a valid calendar.
	ErrMalformed = errors.New("codec: malformed calendar data")
	// ErrInvalidText means a string field is not valid UTF-8 and would not
	// survive the JSON round trip.
	ErrInvalidText = errors.New("codec: text is not valid UTF-8")
)

// DecodeError carries the failure kind (ErrMissing or ErrMalformed) and the
// underlying cause. errors.Is matches both.
type DecodeError struct {
	Kind error
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(err error) error {
	return &DecodeError{Kind: ErrMalformed, Err: err}
}

// Encode serializes data into a URL-safe token: JSON, then base64 with the
// URL alphabet and no padding. The output only contains [A-Za-z0-9_-].
//
// The codec transports whatever it is given; it does not check the
// calendar invariants. Text must be valid UTF-8, since JSON would replace
// bad bytes with U+FFFD and the decoded calendar would differ.
func Encode(data *model.CalendarData) (string, error) {
	if data == nil {
		return "", errors.New("codec: nil calendar")
	}
	if err := checkText(data); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Keep <, > and & literal so the JSON text matches the browser app's.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("codec: marshal calendar: %w", err)
	}
	raw := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func checkText(data *model.CalendarData) error {
	fields := []struct{ name, value string }{
		{"id", data.ID},
		{"template", string(data.Template)},
		{"createdAt", data.CreatedAt},
		{"recipientName", data.RecipientName},
		{"language", string(data.Language)},
		{"timezone", data.Timezone},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s", ErrInvalidText, f.name)
		}
	}
	for _, c := range data.Cards {
		if !utf8.ValidString(c.Message) {
			return fmt.Errorf("%w: day %d message", ErrInvalidText, c.Day)
		}
		if !utf8.ValidString(c.ImageURL) {
			return fmt.Errorf("%w: day %d imageUrl", ErrInvalidText, c.Day)
		}
	}
	return nil
}

// Decode reverses Encode. It returns a *DecodeError matching ErrMissing
// when token is empty and ErrMalformed when the token cannot be turned
// back into a calendar.
//
// Both the URL-safe and the standard base64 alphabet are accepted, with or
// without padding. A space is read as '+', which is what a query string
// decoder leaves behind for an unescaped standard-alphabet token.
//
// Only the shape is checked. A card list of the wrong length passes
// through unchanged.
func Decode(token string) (*model.CalendarData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &DecodeError{Kind: ErrMissing}
	}

	raw, err := base64.RawStdEncoding.DecodeString(normalizeAlphabet(token))
	if err != nil {
		return nil, malformed(fmt.Errorf("base64: %w", err))
	}

	var w wireCalendar
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed(fmt.Errorf("json: %w", err))
	}
	return w.toModel()
}

func normalizeAlphabet(token string) string {
	r := strings.NewReplacer(
		"-", "+",
		"_", "/",
		" ", "+",
		"=", "",
	)
	return r.Replace(token)
}

// wireCalendar mirrors model.CalendarData with pointers on the required
// fields so their absence can be told apart from zero values.
type wireCalendar struct {
	ID            *string         `json:"id"`
	Template      *model.Template `json:"template"`
	Cards         *[]wireCard     `json:"cards"`
	CreatedAt     *string         `json:"createdAt"`
	RecipientName string          `json:"recipientName"`
	Language      model.Language  `json:"language"`
	Timezone      string          `json:"timezone"`
}

type wireCard struct {
	Day           *int                 `json:"day"`
	Message       string               `json:"message"`
	ImageURL      string               `json:"imageUrl"`
	HasAnimation  bool                 `json:"hasAnimation"`
	ImagePosition *model.ImagePosition `json:"imagePosition"`
}

func (w wireCalendar) toModel() (*model.CalendarData, error) {
	switch {
	case w.ID == nil:
		return nil, malformed(errors.New("missing id"))
	case w.Template == nil:
		return nil, malformed(errors.New("missing template"))
	case w.Cards == nil:
		return nil, malformed(errors.New("missing cards"))
	case w.CreatedAt == nil:
		return nil, malformed(errors.New("missing createdAt"))
	}

	cards := make([]model.DayCard, 0, len(*w.Cards))
	for i, c := range *w.Cards {
		if c.Day == nil {
			return nil, malformed(fmt.Errorf("card %d: missing day", i))
		}
		cards = append(cards, model.DayCard{
			Day:           *c.Day,
			Message:       c.Message,
			ImageURL:      c.ImageURL,
			HasAnimation:  c.HasAnimation,
			ImagePosition: c.ImagePosition,
		})
	}

	return &model.CalendarData{
		ID:            *w.ID,
		Template:      *w.Template,
		Cards:         cards,
		CreatedAt:     *w.CreatedAt,
		RecipientName: w.RecipientName,
		Language:      w.Language,
		Timezone:      w.Timezone,
	}, nil
}
