package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	readinessapp "plantsched/internal/readiness/application"
	readiness "plantsched/internal/readiness/domain"
	"plantsched/internal/readiness/infrastructure/memory"
	registry "plantsched/internal/registry/domain"
	signals "plantsched/internal/signals/domain"
)

type stubPlantRepo struct {
	plants []registry.Plant
}

func (s stubPlantRepo) Get(_ context.Context, id string) (*registry.Plant, error) {
	for _, plant := range s.plants {
		if plant.ID == id {
			clone := plant
			return &clone, nil
		}
	}
	return nil, nil
}

func (s stubPlantRepo) List(_ context.Context) ([]registry.Plant, error) {
	return s.plants, nil
}

type nilMeterReader struct{}

func (nilMeterReader) LatestByPlant(context.Context, string) (*signals.MeterRecord, error) {
	return nil, nil
}

type nilWeatherReader struct{}

func (nilWeatherReader) LatestByLocation(context.Context, string) (*signals.WeatherRecord, error) {
	return nil, nil
}

type nilReportReader struct{}

func (nilReportReader) LatestByPlant(context.Context, string) (*signals.FieldReport, error) {
	return nil, nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	service, err := readinessapp.NewService(
		stubPlantRepo{plants: []registry.Plant{{ID: "plant-1", Name: "Plant One", Type: registry.TypeWind}}},
		memory.NewRecordRepository(),
		memory.NewTriggerRepository(),
		memory.NewNotificationRepository(),
		nilMeterReader{},
		nilWeatherReader{},
		nilReportReader{},
		readinessapp.DefaultConfig(),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestListReadinessEmpty(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/readiness", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var records []readiness.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestCheckPlantRoute(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/check", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var record readiness.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.PlantID != "plant-1" || record.Status != readiness.StatusNoAction {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestCheckPlantRouteMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/readiness/plant-1/check", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestGetPlantReadinessNotFound(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/readiness/plant-1", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first check, got %d", resp.Code)
	}
}

func TestManualRevisionRoute(t *testing.T) {
	handler := newTestHandler(t)

	body := strings.NewReader(`{"reason":"Operator request"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/manual", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var record readiness.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Status != readiness.StatusPending {
		t.Fatalf("expected PENDING, got %s", record.Status)
	}
	if !strings.Contains(record.TriggerReason, readiness.TriggerManual) {
		t.Fatalf("expected Manual reason, got %q", record.TriggerReason)
	}
}

func TestManualRevisionUnknownPlant(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-404/manual", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestContinueAndReadyRoutes(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var record readiness.Record
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Status != readiness.StatusReady || record.RevisionNumber != 1 {
		t.Fatalf("unexpected record %+v", record)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/continue", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("continue: expected 200, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Status != readiness.StatusNoAction {
		t.Fatalf("expected NO_ACTION after continue, got %s", record.Status)
	}
}

func TestRevisionRoute(t *testing.T) {
	handler := newTestHandler(t)

	body := strings.NewReader(`{"forecast_data":{"block_1":{"forecast":42}},"weather_adjustment":1.0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/revision", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var schedule readiness.RevisionSchedule
	if err := json.Unmarshal(resp.Body.Bytes(), &schedule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if schedule.TotalBlocks != readiness.TotalBlocks {
		t.Fatalf("expected %d blocks, got %d", readiness.TotalBlocks, schedule.TotalBlocks)
	}
	if schedule.Blocks[readiness.BlockKey(1)].Scheduled != 42 {
		t.Fatalf("unexpected block 1 %+v", schedule.Blocks[readiness.BlockKey(1)])
	}
}

func TestRevisionExportRoute(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readiness/plant-1/revision/export.xlsx", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected content type %q", got)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("expected non-empty export body")
	}
}

func TestNotificationRoutes(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/notifications/ntf-missing/read", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown notification, got %d", resp.Code)
	}
}
