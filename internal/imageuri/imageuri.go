// Package imageuri turns uploaded image bytes into a data URI that can be
// stored on a day-card and carried inside the link token.
package imageuri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
)

// DefaultMaxBytes is the upload cap applied before an image reaches a card.
const DefaultMaxBytes = 2 * 1024 * 1024

var (
	ErrTooLarge = errors.New("image too large")
	ErrEmpty    = errors.New("image is empty")
	ErrNotImage = errors.New("file is not an image")
)

// TooLarge returns ErrTooLarge with the cap spelled out for users, e.g.
// "image too large: must be smaller than 2.0 MiB".
func TooLarge(maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return fmt.Errorf("%w: must be smaller than %s", ErrTooLarge, humanize.IBytes(uint64(maxBytes)))
}

// Encode reads at most maxBytes from r and returns a base64 data URI. If
// contentType is empty or generic, the type is sniffed from the content.
// Nothing is returned when the input exceeds maxBytes.
func Encode(r io.Reader, contentType string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	// Read one byte past the cap to detect oversize input without
	// buffering all of it.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", TooLarge(maxBytes)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}

	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, ct)
	}

	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// IsDataURI reports whether s is an embedded data URI rather than a remote
// URL.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}
