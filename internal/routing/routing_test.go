package routing

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rescuegrid/backend/internal/models"
)

func TestStraightLine(t *testing.T) {
	from := models.Point{Latitude: 0, Longitude: 0}
	to := models.Point{Latitude: 0, Longitude: 1}

	res := StraightLine(from, to)
	if len(res.Points) != 2 || res.Points[0] != from || res.Points[1] != to {
		t.Fatalf("expected two-point route, got %+v", res.Points)
	}
	// One degree of longitude at the equator is about 111 km; at 60 km/h
	// that is a bit under two hours.
	if res.DistanceKm < 110 || res.DistanceKm > 112 {
		t.Fatalf("expected ~111 km, got %f", res.DistanceKm)
	}
	wantDur := time.Duration(res.DistanceKm / 60.0 * float64(time.Hour))
	if math.Abs(float64(res.Duration-wantDur)) > float64(time.Second) {
		t.Fatalf("expected duration %v, got %v", wantDur, res.Duration)
	}
}

func TestOSRMProvider_Route(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/route/v1/driving/71.449100,51.169400;71.500000,51.200000" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 5200.5,
				"duration": 420,
				"geometry": {"coordinates": [[71.4491, 51.1694], [71.47, 51.18], [71.5, 51.2]]}
			}]
		}`))
	}))
	defer srv.Close()

	p := &OSRMProvider{BaseURL: srv.URL}
	res, err := p.Route(context.Background(),
		models.Point{Latitude: 51.1694, Longitude: 71.4491},
		models.Point{Latitude: 51.2, Longitude: 71.5})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(res.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(res.Points))
	}
	// GeoJSON pairs are lon,lat.
	if res.Points[0].Latitude != 51.1694 || res.Points[0].Longitude != 71.4491 {
		t.Fatalf("coordinate order wrong: %+v", res.Points[0])
	}
	if math.Abs(res.DistanceKm-5.2005) > 0.0001 {
		t.Fatalf("expected 5.2005 km, got %f", res.DistanceKm)
	}
	if res.Duration != 7*time.Minute {
		t.Fatalf("expected 7m, got %v", res.Duration)
	}
}

func TestOSRMProvider_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer srv.Close()

	p := &OSRMProvider{BaseURL: srv.URL}
	_, err := p.Route(context.Background(), models.Point{}, models.Point{Latitude: 1})
	if !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}

func TestOSRMProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := &OSRMProvider{BaseURL: srv.URL}
	if _, err := p.Route(context.Background(), models.Point{}, models.Point{Latitude: 1}); err == nil {
		t.Fatal("expected error on http 502")
	}
}
