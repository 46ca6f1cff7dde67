package imageuri

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestEncode(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		contentType string
		max         int64
		wantPrefix  string
		wantErr     error
	}{
		{"sniffed png", pngHeader, "", 0, "data:image/png;base64,", nil},
		{"declared jpeg", []byte("not really a jpeg"), "image/jpeg", 0, "data:image/jpeg;base64,", nil},
		{"declared with params", pngHeader, "image/png; charset=binary", 0, "data:image/png;base64,", nil},
		{"octet stream is sniffed", pngHeader, "application/octet-stream", 0, "data:image/png;base64,", nil},
		{"exactly at cap", bytes.Repeat([]byte{1}, 16), "image/gif", 16, "data:image/gif;base64,", nil},
		{"over cap", bytes.Repeat([]byte{1}, 17), "image/gif", 16, "", ErrTooLarge},
		{"empty", nil, "image/png", 0, "", ErrEmpty},
		{"plain text", []byte("hello world"), "", 0, "", ErrNotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(bytes.NewReader(tt.data), tt.contentType, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != "" {
					t.Errorf("expected no output on error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Fatalf("expected prefix %q, got %q", tt.wantPrefix, got)
			}
			raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, tt.wantPrefix))
			if err != nil || !bytes.Equal(raw, tt.data) {
				t.Errorf("payload does not round trip (%v)", err)
			}
			if !IsDataURI(got) {
				t.Error("IsDataURI should accept the output")
			}
		})
	}
}

func TestTooLarge_NamesConfiguredCap(t *testing.T) {
	tests := []struct {
		max  int64
		want string
	}{
		{0, "image too large: must be smaller than 2.0 MiB"},
		{DefaultMaxBytes, "image too large: must be smaller than 2.0 MiB"},
		{512 * 1024, "image too large: must be smaller than 512 KiB"},
		{64, "image too large: must be smaller than 64 B"},
	}
	for _, tt := range tests {
		err := TooLarge(tt.max)
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("TooLarge(%d) does not wrap ErrTooLarge", tt.max)
		}
		if err.Error() != tt.want {
			t.Errorf("TooLarge(%d) = %q, want %q", tt.max, err.Error(), tt.want)
		}
	}

	_, err := Encode(bytes.NewReader(bytes.Repeat([]byte{1}, 65)), "image/gif", 64)
	if err == nil || err.Error() != "image too large: must be smaller than 64 B" {
		t.Errorf("Encode should report the cap it was given, got %v", err)
	}
}

func TestEncode_DefaultCap(t *testing.T) {
	big := bytes.Repeat([]byte{0}, DefaultMaxBytes+1)
	if _, err := Encode(bytes.NewReader(big), "image/png", 0); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge above 2 MiB, got %v", err)
	}
	if IsDataURI("https://example.com/a.png") {
		t.Error("remote URL is not a data URI")
	}
}
