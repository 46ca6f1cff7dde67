package unlock

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

// fixedDate ignores the instant and timezone and returns a preset date, so
// the rule can be checked without any zone database.
func fixedDate(month time.Month, day int) DateResolver {
	return DateResolverFunc(func(time.Time, string) (time.Month, int) {
		return month, day
	})
}

func days(from, to int) []int {
	out := []int{}
	for d := from; d <= to; d++ {
		out = append(out, d)
	}
	return out
}

func TestCompute_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		month time.Month
		day   int
		want  []int
	}{
		{"january 1", time.January, 1, []int{}},
		{"january 31", time.January, 31, []int{}},
		{"february 1", time.February, 1, []int{1}},
		{"february 5", time.February, 5, days(1, 5)},
		{"february 13", time.February, 13, days(1, 13)},
		{"february 14", time.February, 14, days(1, 14)},
		{"february 15", time.February, 15, days(1, 14)},
		{"february 20", time.February, 20, days(1, 14)},
		{"march 1", time.March, 1, days(1, 14)},
		{"december 31", time.December, 31, days(1, 14)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(fixedDate(tt.month, tt.day))
			got := e.Compute(time.Now(), "Europe/Madrid", ModeReceiver).Days()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCompute_PreviewModesOverrideDate(t *testing.T) {
	dates := []struct {
		month time.Month
		day   int
	}{
		{time.January, 3}, {time.February, 7}, {time.February, 14}, {time.June, 1},
	}
	for _, d := range dates {
		e := NewEngine(fixedDate(d.month, d.day))
		for _, tz := range []string{"", "Asia/Tokyo", "Pacific/Midway"} {
			if got := e.Compute(time.Now(), tz, ModeCreatorPreview); got.Len() != 14 {
				t.Errorf("%v %d %q: creator preview should unlock all, got %v", d.month, d.day, tz, got.Days())
			}
			if got := e.Compute(time.Now(), tz, ModeStaticPreview); got.Len() != 0 {
				t.Errorf("%v %d %q: static preview should lock all, got %v", d.month, d.day, tz, got.Days())
			}
		}
	}
}

func TestCompute_TimezoneApplied(t *testing.T) {
	e := NewEngine(NewZoneResolver(time.UTC))

	// 2026-02-05 23:30 in New York is 2026-02-06 04:30 in London.
	instant := time.Date(2026, time.February, 6, 4, 30, 0, 0, time.UTC)
	ny := e.Compute(instant, "America/New_York", ModeReceiver)
	london := e.Compute(instant, "Europe/London", ModeReceiver)
	if !reflect.DeepEqual(ny.Days(), days(1, 5)) {
		t.Errorf("new york: expected 1..5, got %v", ny.Days())
	}
	if !reflect.DeepEqual(london.Days(), days(1, 6)) {
		t.Errorf("london: expected 1..6, got %v", london.Days())
	}
	if !ny.SubsetOf(london) || london.SubsetOf(ny) {
		t.Error("new york set should be a strict subset of the london set")
	}

	// February 13 23:30 in Los Angeles is February 14 08:30 in Paris.
	instant = time.Date(2026, time.February, 14, 7, 30, 0, 0, time.UTC)
	if got := e.Compute(instant, "Europe/Paris", ModeReceiver); got.Len() != 14 {
		t.Errorf("paris: expected all days, got %v", got.Days())
	}
	if got := e.Compute(instant, "America/Los_Angeles", ModeReceiver); !reflect.DeepEqual(got.Days(), days(1, 13)) {
		t.Errorf("los angeles: expected 1..13, got %v", got.Days())
	}
}

func TestCompute_NoTimezoneUsesViewerZone(t *testing.T) {
	viewer := time.FixedZone("viewer", -10*3600)
	e := NewEngine(NewZoneResolver(viewer))

	// 2026-02-03 05:00 UTC is still February 2 at UTC-10.
	instant := time.Date(2026, time.February, 3, 5, 0, 0, 0, time.UTC)
	if got := e.Compute(instant, "", ModeReceiver).Days(); !reflect.DeepEqual(got, days(1, 2)) {
		t.Errorf("expected 1..2 in viewer zone, got %v", got)
	}
	// Unknown zone ids fall back to the viewer zone as well.
	if got := e.Compute(instant, "Nowhere/Special", ModeReceiver).Days(); !reflect.DeepEqual(got, days(1, 2)) {
		t.Errorf("expected fallback to viewer zone, got %v", got)
	}
}

func TestCompute_Monotonic(t *testing.T) {
	e := NewEngine(NewZoneResolver(time.UTC))
	for _, tz := range []string{"", "Pacific/Auckland", "America/Santiago", "Asia/Kolkata"} {
		start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
		prev := e.Compute(start, tz, ModeReceiver)
		for at := start.Add(time.Hour); at.Before(end); at = at.Add(time.Hour) {
			cur := e.Compute(at, tz, ModeReceiver)
			if !prev.SubsetOf(cur) {
				t.Fatalf("%q: unlock set shrank at %v: %v -> %v", tz, at, prev.Days(), cur.Days())
			}
			prev = cur
		}
		if prev.Len() != 14 {
			t.Errorf("%q: expected all days by April, got %v", tz, prev.Days())
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	e := NewEngine(fixedDate(time.February, 9))
	first := e.Compute(time.Now(), "", ModeReceiver)
	for i := 0; i < 3; i++ {
		if err := CanOpen(4, first, ModeReceiver); err != nil {
			t.Fatalf("open day 4: %v", err)
		}
	}
	if again := e.Compute(time.Now(), "", ModeReceiver); again != first {
		t.Errorf("opening a day changed the unlock set: %v -> %v", first.Days(), again.Days())
	}
}

func TestCanOpen(t *testing.T) {
	set := Through(3)
	tests := []struct {
		name string
		day  int
		mode Mode
		want error
	}{
		{"unlocked day", 2, ModeReceiver, nil},
		{"locked day", 4, ModeReceiver, ErrNotYet},
		{"creator opens anything", 14, ModeCreatorPreview, nil},
		{"static preview", 1, ModeStaticPreview, ErrNotYet},
		{"day zero", 0, ModeCreatorPreview, ErrNoSuchDay},
		{"day fifteen", 15, ModeReceiver, ErrNoSuchDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := set
			if tt.mode == ModeStaticPreview {
				s = Set{}
			}
			err := CanOpen(tt.day, s, tt.mode)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":         ModeReceiver,
		"receiver": ModeReceiver,
		"Creator":  ModeCreatorPreview,
		"static":   ModeStaticPreview,
		"locked":   ModeStaticPreview,
	} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %v, got %v (%v)", in, want, got, err)
		}
		if in != "" && in != "locked" && got.String() != want.String() {
			t.Errorf("%q: String mismatch", in)
		}
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSet(t *testing.T) {
	s := Of(3, 1, 14, 0, 15, 3)
	if !reflect.DeepEqual(s.Days(), []int{1, 3, 14}) {
		t.Errorf("unexpected members %v", s.Days())
	}
	if s.Len() != 3 || !s.Contains(14) || s.Contains(2) || s.Contains(15) {
		t.Error("membership broken")
	}
	if Through(-1).Len() != 0 || Through(99) != All() {
		t.Error("Through should clamp")
	}
	b, err := json.Marshal(Set{})
	if err != nil || string(b) != "[]" {
		t.Errorf("empty set should marshal to [], got %s (%v)", b, err)
	}
	b, _ = json.Marshal(Through(2))
	if string(b) != "[1,2]" {
		t.Errorf("expected [1,2], got %s", b)
	}
}
