package codec

import (
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"valcal/internal/model"
)

// browserToken is what the web app produces for browserCalendar
// (JSON.stringify, then base64 with + and / swapped and padding dropped).
const browserToken = "eyJpZCI6Imszajl4MGFiY2QxMiIsInRlbXBsYXRlIjoiY3V0ZS1wYXN0ZWwiLCJjYXJkcyI6W3siZGF5IjoxLCJtZXNzYWdlIjoiVGUgcXVpZXJvIOKdpO-4jyBcIm11Y2hvXCJcbnNpZW1wcmUifSx7ImRheSI6MiwibWVzc2FnZSI6IiJ9LHsiZGF5IjozLCJtZXNzYWdlIjoiIn0seyJkYXkiOjQsIm1lc3NhZ2UiOiIifSx7ImRheSI6NSwibWVzc2FnZSI6IiJ9LHsiZGF5Ijo2LCJtZXNzYWdlIjoiIn0seyJkYXkiOjcsIm1lc3NhZ2UiOiIifSx7ImRheSI6OCwibWVzc2FnZSI6IiJ9LHsiZGF5Ijo5LCJtZXNzYWdlIjoiIn0seyJkYXkiOjEwLCJtZXNzYWdlIjoiIn0seyJkYXkiOjExLCJtZXNzYWdlIjoiIn0seyJkYXkiOjEyLCJtZXNzYWdlIjoiIn0seyJkYXkiOjEzLCJtZXNzYWdlIjoiIn0seyJkYXkiOjE0LCJtZXNzYWdlIjoiIn1dLCJjcmVhdGVkQXQiOiIyMDI2LTAxLTI4VDE4OjA0OjExLjUxMloiLCJsYW5ndWFnZSI6ImVzIn0"

// legacyToken is the same payload in the standard alphabet with padding,
// as a plain btoa would produce.
const legacyToken = "eyJpZCI6Imszajl4MGFiY2QxMiIsInRlbXBsYXRlIjoiY3V0ZS1wYXN0ZWwiLCJjYXJkcyI6W3siZGF5IjoxLCJtZXNzYWdlIjoiVGUgcXVpZXJvIOKdpO+4jyBcIm11Y2hvXCJcbnNpZW1wcmUifSx7ImRheSI6MiwibWVzc2FnZSI6IiJ9LHsiZGF5IjozLCJtZXNzYWdlIjoiIn0seyJkYXkiOjQsIm1lc3NhZ2UiOiIifSx7ImRheSI6NSwibWVzc2FnZSI6IiJ9LHsiZGF5Ijo2LCJtZXNzYWdlIjoiIn0seyJkYXkiOjcsIm1lc3NhZ2UiOiIifSx7ImRheSI6OCwibWVzc2FnZSI6IiJ9LHsiZGF5Ijo5LCJtZXNzYWdlIjoiIn0seyJkYXkiOjEwLCJtZXNzYWdlIjoiIn0seyJkYXkiOjExLCJtZXNzYWdlIjoiIn0seyJkYXkiOjEyLCJtZXNzYWdlIjoiIn0seyJkYXkiOjEzLCJtZXNzYWdlIjoiIn0seyJkYXkiOjE0LCJtZXNzYWdlIjoiIn1dLCJjcmVhdGVkQXQiOiIyMDI2LTAxLTI4VDE4OjA0OjExLjUxMloiLCJsYW5ndWFnZSI6ImVzIn0="

func browserCalendar() *model.CalendarData {
	cards := model.BlankCards()
	cards[0].Message = "Te quiero ❤️ \"mucho\"\nsiempre"
	return &model.CalendarData{
		ID:        "k3j9x0abcd12",
		Template:  model.TemplateCutePastel,
		Cards:     cards,
		CreatedAt: "2026-01-28T18:04:11.512Z",
		Language:  model.LanguageSpanish,
	}
}

func fullCalendar() *model.CalendarData {
	c := model.New("01JKZ3T9ZQ8V6Y2M4N5P7R8S9T", time.Date(2026, time.January, 30, 21, 0, 0, 0, time.UTC))
	c.Template = model.TemplateDreamyNight
	c.RecipientName = "Zoë <3 & co"
	c.Language = model.LanguageEnglish
	c.Timezone = "America/Argentina/Buenos_Aires"
	c.Cards[1].Message = "line one\nline two\r\n\ttabbed \"quoted\" 'single' \\ backslash"
	c.Cards[2].Message = "日本語のメッセージ 💌 ñandú"
	c.Cards[3].ImageURL = "https://example.com/photo.jpg?a=1&b=2"
	c.Cards[4].ImageURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("\x89PNG\x00\xff", 40000)))
	c.Cards[4].ImagePosition = &model.ImagePosition{X: -12.5, Y: 30, Scale: 1.75}
	c.Cards[4].HasAnimation = true
	c.Cards[13].Message = "Happy Valentine's"
	return c
}

func TestEncode_MatchesBrowserToken(t *testing.T) {
	got, err := Encode(browserCalendar())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != browserToken {
		t.Errorf("token mismatch\n got: %s\nwant: %s", got, browserToken)
	}
}

func TestDecode_BrowserAndLegacyTokens(t *testing.T) {
	want := browserCalendar()
	tests := []struct {
		name  string
		token string
	}{
		{"url-safe", browserToken},
		{"standard alphabet with padding", legacyToken},
		{"plus decoded to space by a query parser", strings.ReplaceAll(legacyToken, "+", " ")},
		{"surrounding whitespace", "  " + browserToken + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("decoded calendar differs\n got: %+v\nwant: %+v", got, want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	minimal := model.New("x", time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC))
	minimal.Language = ""

	withEmptyName := fullCalendar()
	withEmptyName.RecipientName = ""
	withEmptyName.Timezone = ""

	tests := []struct {
		name string
		in   *model.CalendarData
	}{
		{"blank", model.New("blank", time.Now())},
		{"no optional fields", minimal},
		{"everything set", fullCalendar()},
		{"timezone absent", withEmptyName},
		{"browser payload", browserCalendar()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			assertURLSafe(t, token)

			got, err := Decode(token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.in) {
				t.Errorf("round trip changed the calendar\n got: %+v\nwant: %+v", got, tt.in)
			}
		})
	}
}

func TestDecode_NoAliasing(t *testing.T) {
	in := fullCalendar()
	token, _ := Encode(in)
	out, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out.Cards[4].ImagePosition.Scale = 9
	out.Cards[0].Message = "mutated"
	if in.Cards[4].ImagePosition.Scale != 1.75 || in.Cards[0].Message != "" {
		t.Error("decoded calendar shares memory with the encoded one")
	}
}

func TestEncode_Deterministic(t *testing.T) {
	c := fullCalendar()
	a, err := Encode(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ := Encode(c)
	if a != b {
		t.Error("encoding the same calendar twice produced different tokens")
	}
}

func TestEncode_Errors(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Error("expected error for nil calendar")
	}
}

func TestEncode_RejectsInvalidUTF8(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.CalendarData)
	}{
		{"message", func(c *model.CalendarData) { c.Cards[3].Message = "a\xffb" }},
		{"recipient", func(c *model.CalendarData) { c.RecipientName = "\xc3" }},
		{"image url", func(c *model.CalendarData) { c.Cards[0].ImageURL = "https://x/\xfe.png" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.New("utf8", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
			tt.mutate(c)
			token, err := Encode(c)
			if !errors.Is(err, ErrInvalidText) {
				t.Fatalf("expected ErrInvalidText, got %v", err)
			}
			if token != "" {
				t.Errorf("expected no token, got %q", token)
			}
		})
	}

	c := model.New("utf8", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	c.Cards[0].Message = "Te quiero ❤️ 💕"
	token, err := Encode(c)
	if err != nil {
		t.Fatalf("valid text rejected: %v", err)
	}
	got, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, c) {
		t.Errorf("round trip changed calendar:\n got %+v\nwant %+v", got, c)
	}
}

func TestDecode_Missing(t *testing.T) {
	for _, token := range []string{"", "   "} {
		_, err := Decode(token)
		if !errors.Is(err, ErrMissing) {
			t.Errorf("token %q: expected ErrMissing, got %v", token, err)
		}
		if errors.Is(err, ErrMalformed) {
			t.Errorf("token %q: missing must not also be malformed", token)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!not*base64!!!"},
		{"not json", enc("hello there")},
		{"json array", enc(`[1,2,3]`)},
		{"json null", enc(`null`)},
		{"empty object", enc(`{}`)},
		{"missing cards", enc(`{"id":"a","template":"cute-pastel","createdAt":"x"}`)},
		{"cards null", enc(`{"id":"a","template":"cute-pastel","cards":null,"createdAt":"x"}`)},
		{"missing createdAt", enc(`{"id":"a","template":"cute-pastel","cards":[]}`)},
		{"missing template", enc(`{"id":"a","cards":[],"createdAt":"x"}`)},
		{"card without day", enc(`{"id":"a","template":"t","cards":[{"message":"hi"}],"createdAt":"x"}`)},
		{"day is a string", enc(`{"id":"a","template":"t","cards":[{"day":"1"}],"createdAt":"x"}`)},
		{"cards is an object", enc(`{"id":"a","template":"t","cards":{},"createdAt":"x"}`)},
		{"truncated", browserToken[:len(browserToken)/2]},
		{"trailing garbage", enc(`{"id":"a","template":"t","cards":[],"createdAt":"x"} {}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("expected *DecodeError, got %T", err)
			}
		})
	}
}

func TestDecode_WrongCardCountPassesThrough(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte(
		`{"id":"a","template":"playful-love","cards":[{"day":1,"message":"x"},{"day":7,"message":""},{"day":42}],"createdAt":"2026-02-01T00:00:00.000Z","extra":true}`,
	))
	got, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Cards) != 3 || got.Cards[2].Day != 42 {
		t.Errorf("cards not passed through unchanged: %+v", got.Cards)
	}
}

func assertURLSafe(t *testing.T, token string) {
	t.Helper()
	if strings.ContainsAny(token, "+/= ") {
		t.Errorf("token contains URL-unsafe characters")
	}
	for _, r := range token {
		ok := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			t.Fatalf("unexpected rune %q in token", r)
		}
	}
}
