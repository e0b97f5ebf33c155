package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode not found")

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat float64, lon float64, displayName string, err error)
}

// BuildQuery joins non-empty address parts into a single lookup string.
func BuildQuery(parts ...string) string {
	cleaned := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ", ")
}
