package codec

import (
	"errors"
	"net/url"
	"strings"

	"valcal/internal/model"
)

// ViewPath is the path the recipient opens.
const ViewPath = "/view"

// DataParam is the query parameter carrying the token.
const DataParam = "data"

// Link composes <origin>/view?data=<token>. The token alphabet needs no
// escaping, so it is appended as is.
func Link(origin, token string) string {
	return strings.TrimRight(origin, "/") + ViewPath + "?" + DataParam + "=" + token
}

// EncodeLink encodes data and composes the shareable link.
func EncodeLink(origin string, data *model.CalendarData) (string, error) {
	token, err := Encode(data)
	if err != nil {
		return "", err
	}
	return Link(origin, token), nil
}

// TokenFromLink extracts the token from a full link, a bare query string
// ("data=..."), or a bare token. A link without a data parameter yields
// ErrMissing.
func TokenFromLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &DecodeError{Kind: ErrMissing}
	}

	var query string
	switch {
	case strings.Contains(raw, "://") || strings.HasPrefix(raw, "/"):
		u, err := url.Parse(raw)
		if err != nil {
			return "", malformed(err)
		}
		query = u.RawQuery
	case strings.HasPrefix(raw, "?"):
		query = raw[1:]
	case strings.HasPrefix(raw, DataParam+"="):
		query = raw
	default:
		return raw, nil
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return "", malformed(err)
	}
	token := values.Get(DataParam)
	if token == "" {
		return "", &DecodeError{Kind: ErrMissing}
	}
	return token, nil
}

// DecodeLink extracts the token from raw and decodes it.
func DecodeLink(raw string) (*model.CalendarData, error) {
	token, err := TokenFromLink(raw)
	if err != nil {
		return nil, err
	}
	return Decode(token)
}

// ErrorKey returns the stable key used by clients for a decode failure:
// "noData" for ErrMissing and "invalidLink" for anything else.
func ErrorKey(err error) string {
	if errors.Is(err, ErrMissing) {
		return "noData"
	}
	return "invalidLink"
}

var messages = map[model.Language]map[string]string{
	model.LanguageEnglish: {
		"noData":      "No calendar data found in this link.",
		"invalidLink": "This link is invalid or damaged.",
	},
	model.LanguageSpanish: {
		"noData":      "No se encontraron datos del calendario en este enlace.",
		"invalidLink": "Este enlace no es válido o está dañado.",
	},
}

// Message returns the user-facing text for a decode failure in lang,
// falling back to English.
func Message(err error, lang model.Language) string {
	table, ok := messages[lang]
	if !ok {
		table = messages[model.LanguageEnglish]
	}
	return table[ErrorKey(err)]
}
