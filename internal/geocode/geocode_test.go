package geocode

import (
	"errors"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	if q := BuildQuery("Kazakhstan", " Astana ", ""); q != "Kazakhstan, Astana" {
		t.Fatalf("unexpected query %q", q)
	}
	if q := BuildQuery("", "", ""); q != "" {
		t.Fatalf("expected empty query, got %q", q)
	}
}

func TestParseNominatimItems(t *testing.T) {
	_, err := parseNominatimItems(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	res, err := parseNominatimItems([]nominatimItem{
		{Lat: "51.1694", Lon: "71.4491", DisplayName: "Astana, Kazakhstan"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Lat != 51.1694 || res.Lon != 71.4491 || res.DisplayName != "Astana, Kazakhstan" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := parseNominatimItems([]nominatimItem{{Lat: "bad", Lon: "0"}}); err == nil {
		t.Fatal("expected parse error for invalid latitude")
	}
}
