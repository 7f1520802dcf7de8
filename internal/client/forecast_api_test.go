package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"traffic-signal-optimizer-go/internal/model"
	"traffic-signal-optimizer-go/pkg/models"

	"github.com/sirupsen/logrus"
)

func newTestClient(url string) *ForecastAPIClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewForecastAPIClient(url+"/", 2*time.Second, logger)
}

func TestForecast_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/forecast" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req models.ForecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Samples) != 1 || req.Samples[0].Day != "Wednesday" || req.Samples[0].Hour != 8 {
			t.Errorf("unexpected samples %+v", req.Samples)
		}

		json.NewEncoder(w).Encode(models.ForecastResponse{
			Status: "success",
			Samples: []models.VolumeRecord{
				{Day: "Thursday", Hour: 8, TotalVehicles: 420},
				{Day: "thu", Hour: 9, TotalVehicles: 380},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.Forecast(context.Background(), []model.VolumeSample{{Day: model.Wednesday, Hour: 8, TotalVehicles: 400}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Day != model.Thursday || got[1].TotalVehicles != 380 {
		t.Errorf("unexpected forecast %+v", got)
	}
}

func TestForecast_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  error
	}{
		{
			name: "status 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
			target: ErrUpstream,
		},
		{
			name: "error status in body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error","message":"boom"}`))
			},
			target: ErrUpstream,
		},
		{
			name: "broken json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":`))
			},
			target: ErrUpstream,
		},
		{
			name: "invalid forecast record",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success","samples":[{"day":"Monday","hour":30,"total_vehicles":5}]}`))
			},
			target: model.ErrInvalidSample,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			_, err := newTestClient(server.URL).Forecast(context.Background(), nil)
			if !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestForecast_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Forecast(context.Background(), nil)
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"status":"healthy","version":"1.2.0"}`))
	}))
	defer server.Close()

	health, err := newTestClient(server.URL).CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != "healthy" || health.Version != "1.2.0" {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestFromRecord_RejectsNonFiniteVolumes(t *testing.T) {
	records := []models.VolumeRecord{
		{Day: "Monday", Hour: 8, TotalVehicles: math.Inf(1)},
		{Day: "Monday", Hour: 8, TotalVehicles: 100, PerDirectionVehicles: []float64{math.NaN(), 50, 25, 25}},
	}
	for _, r := range records {
		if _, err := fromRecord(r); !errors.Is(err, model.ErrInvalidSample) {
			t.Errorf("record %+v: expected ErrInvalidSample, got %v", r, err)
		}
	}
}
