package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rescuegrid/backend/internal/models"
)

// OSRMProvider queries an OSRM instance's route service over HTTP.
type OSRMProvider struct {
	BaseURL string
	Client  *http.Client
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

func (p *OSRMProvider) Route(ctx context.Context, from, to models.Point) (Result, error) {
	if p.Client == nil {
		p.Client = &http.Client{Timeout: 10 * time.Second}
	}

	endpoint := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		p.BaseURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("osrm http error: %s", resp.Status)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, err
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return Result{}, ErrNoRoute
	}

	route := parsed.Routes[0]
	points := make([]models.Point, 0, len(route.Geometry.Coordinates))
	for _, pair := range route.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		points = append(points, models.Point{Longitude: pair[0], Latitude: pair[1]})
	}
	if len(points) == 0 {
		return Result{}, ErrNoRoute
	}

	return Result{
		Points:     points,
		DistanceKm: route.Distance / 1000.0,
		Duration:   time.Duration(route.Duration * float64(time.Second)),
	}, nil
}
