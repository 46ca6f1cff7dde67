package cli

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"valcal/internal/model"
	"valcal/internal/session"
)

// draft is the YAML a calendar can be authored from:
//
//	recipient: Sam
//	template: dreamy-night
//	language: en
//	timezone: Europe/Madrid
//	cards:
//	  - day: 1
//	    message: Happy first day
//	    image: ./photos/us.jpg
//	    animate: true
type draft struct {
	Recipient string      `yaml:"recipient"`
	Template  string      `yaml:"template"`
	Language  string      `yaml:"language"`
	Timezone  string      `yaml:"timezone"`
	Cards     []draftCard `yaml:"cards"`

	baseDir string
}

type draftCard struct {
	Day      int                  `yaml:"day"`
	Message  *string              `yaml:"message"`
	Image    string               `yaml:"image"`
	Animate  *bool                `yaml:"animate"`
	Position *model.ImagePosition `yaml:"position"`
}

func readDraft(path string) (*draft, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d draft
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	d.baseDir = filepath.Dir(path)
	return &d, nil
}

// apply writes the draft into store, which must hold a calendar.
func (d *draft) apply(store *session.Store) error {
	if d.Template != "" {
		store.SetTemplate(model.Template(d.Template))
	}
	if d.Recipient != "" {
		store.SetRecipientName(d.Recipient)
	}
	if d.Language != "" {
		store.SetLanguage(model.Language(d.Language))
	}
	if d.Timezone != "" {
		store.SetTimezone(d.Timezone)
	}

	var errs []error
	for _, c := range d.Cards {
		if c.Day < 1 || c.Day > model.DayCount {
			errs = append(errs, fmt.Errorf("card day %d out of range", c.Day))
			continue
		}
		store.UpdateCard(c.Day, session.CardUpdate{
			Message:       c.Message,
			HasAnimation:  c.Animate,
			ImagePosition: c.Position,
		})
		if c.Image != "" {
			if err := attachImage(store, c.Day, c.Image, d.baseDir); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// attachImage stores src on day. Remote URLs and data URIs are kept as
// given; anything else is read as a file relative to baseDir.
func attachImage(store *session.Store, day int, src, baseDir string) error {
	if isRemoteImage(src) {
		store.UpdateCard(day, session.CardUpdate{ImageURL: &src})
		return nil
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("day %d image: %w", day, err)
	}
	defer f.Close()

	if err := store.AttachImage(day, f, mime.TypeByExtension(filepath.Ext(path))); err != nil {
		return fmt.Errorf("day %d image %s: %w", day, src, err)
	}
	return nil
}

func isRemoteImage(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "data:")
}

// parseDayValues parses repeated N=value flags, e.g. --message 3="See you".
// A later value for the same day wins.
func parseDayValues(values []string) (map[int]string, error) {
	out := make(map[int]string, len(values))
	for _, v := range values {
		k, val, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("%q: expected DAY=VALUE", v)
		}
		day, err := parseDayNumber(k)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", v, err)
		}
		out[day] = val
	}
	return out, nil
}

// parseDayList parses day numbers given as repeated flags or comma lists.
func parseDayList(values []string) ([]int, error) {
	var out []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			day, err := parseDayNumber(part)
			if err != nil {
				return nil, err
			}
			out = append(out, day)
		}
	}
	return out, nil
}

func parseDayNumber(s string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("day %q is not a number", s)
	}
	if day < 1 || day > model.DayCount {
		return 0, fmt.Errorf("day %d out of range 1..%d", day, model.DayCount)
	}
	return day, nil
}
