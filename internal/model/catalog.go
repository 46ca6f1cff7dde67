package model

// Zone lookups must not depend on the host having a zoneinfo database.
import _ "time/tzdata"

// Template identifies one of the fixed visual themes. The core only stores
// it; styling belongs to the renderer.
type Template string

const (
	TemplateRomanticSoft   Template = "romantic-soft"
	TemplateCutePastel     Template = "cute-pastel"
	TemplateElegantMinimal Template = "elegant-minimal"
	TemplatePlayfulLove    Template = "playful-love"
	TemplateDreamyNight    Template = "dreamy-night"
)

// DefaultTemplate is the first enumerated template.
const DefaultTemplate = TemplateRomanticSoft

// TemplateInfo describes a template for pickers.
type TemplateInfo struct {
	ID          Template `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

// Templates lists every supported template in display order.
var Templates = []TemplateInfo{
	{ID: TemplateRomanticSoft, Name: "Romantic Soft", Description: "Warm tones, hearts, gentle animations"},
	{ID: TemplateCutePastel, Name: "Cute Pastel", Description: "Playful, light colors"},
	{ID: TemplateElegantMinimal, Name: "Elegant Minimal", Description: "Neutral palette, typography-focused"},
	{ID: TemplatePlayfulLove, Name: "Playful Love", Description: "Illustrations, fun motion"},
	{ID: TemplateDreamyNight, Name: "Dreamy Night", Description: "Dark background, glowing elements"},
}

// Valid reports whether t is one of the enumerated templates.
func (t Template) Valid() bool {
	for _, info := range Templates {
		if info.ID == t {
			return true
		}
	}
	return false
}

// Language is a UI locale. The core stores but does not interpret it.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageEnglish Language = "en"
)

// DefaultLanguage is used when a calendar carries no language.
const DefaultLanguage = LanguageSpanish

// LanguageInfo describes a language for pickers.
type LanguageInfo struct {
	ID   Language `json:"id"`
	Name string   `json:"name"`
	Flag string   `json:"flag"`
}

var Languages = []LanguageInfo{
	{ID: LanguageSpanish, Name: "Español", Flag: "🇪🇸"},
	{ID: LanguageEnglish, Name: "English", Flag: "🇺🇸"},
}

func (l Language) Valid() bool {
	return l == LanguageSpanish || l == LanguageEnglish
}

// TimezoneInfo is an entry of the timezone picker.
type TimezoneInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Timezones is the suggested picker list. Any IANA id is accepted on a
// calendar; this list is only what the authoring UI offers.
var Timezones = []TimezoneInfo{
	{ID: "Pacific/Midway", Label: "(GMT-11:00) Midway Island"},
	{ID: "Pacific/Honolulu", Label: "(GMT-10:00) Hawaii"},
	{ID: "America/Anchorage", Label: "(GMT-09:00) Alaska"},
	{ID: "America/Los_Angeles", Label: "(GMT-08:00) Pacific Time (US & Canada)"},
	{ID: "America/Denver", Label: "(GMT-07:00) Mountain Time (US & Canada)"},
	{ID: "America/Chicago", Label: "(GMT-06:00) Central Time (US & Canada)"},
	{ID: "America/New_York", Label: "(GMT-05:00) Eastern Time (US & Canada)"},
	{ID: "America/Caracas", Label: "(GMT-04:00) Caracas"},
	{ID: "America/Santiago", Label: "(GMT-04:00) Santiago"},
	{ID: "America/Sao_Paulo", Label: "(GMT-03:00) Sao Paulo"},
	{ID: "America/Argentina/Buenos_Aires", Label: "(GMT-03:00) Buenos Aires"},
	{ID: "Atlantic/South_Georgia", Label: "(GMT-02:00) Mid-Atlantic"},
	{ID: "Atlantic/Azores", Label: "(GMT-01:00) Azores"},
	{ID: "Europe/London", Label: "(GMT+00:00) London, Dublin"},
	{ID: "Europe/Paris", Label: "(GMT+01:00) Paris, Madrid, Rome"},
	{ID: "Europe/Berlin", Label: "(GMT+01:00) Berlin, Amsterdam"},
	{ID: "Europe/Athens", Label: "(GMT+02:00) Athens, Cairo"},
	{ID: "Europe/Moscow", Label: "(GMT+03:00) Moscow"},
	{ID: "Asia/Dubai", Label: "(GMT+04:00) Dubai"},
	{ID: "Asia/Karachi", Label: "(GMT+05:00) Karachi"},
	{ID: "Asia/Kolkata", Label: "(GMT+05:30) Mumbai, New Delhi"},
	{ID: "Asia/Dhaka", Label: "(GMT+06:00) Dhaka"},
	{ID: "Asia/Bangkok", Label: "(GMT+07:00) Bangkok, Jakarta"},
	{ID: "Asia/Singapore", Label: "(GMT+08:00) Singapore, Hong Kong"},
	{ID: "Asia/Shanghai", Label: "(GMT+08:00) Beijing, Shanghai"},
	{ID: "Asia/Tokyo", Label: "(GMT+09:00) Tokyo, Seoul"},
	{ID: "Australia/Sydney", Label: "(GMT+10:00) Sydney"},
	{ID: "Pacific/Noumea", Label: "(GMT+11:00) New Caledonia"},
	{ID: "Pacific/Auckland", Label: "(GMT+12:00) Auckland"},
}
