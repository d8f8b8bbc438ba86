package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	readinessapp "plantsched/internal/readiness/application"
	readiness "plantsched/internal/readiness/domain"
	"plantsched/internal/readiness/interfaces"
	signals "plantsched/internal/signals/domain"
)

// Handler provides schedule readiness HTTP endpoints.
type Handler struct {
	service *readinessapp.Service
}

// NewHandler constructs a handler.
func NewHandler(service *readinessapp.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("readiness handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles /api/v1/readiness, /api/v1/notifications and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/readiness":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleList(w, r)
		return
	case r.URL.Path == "/api/v1/readiness/check":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleCheckAll(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/readiness/"):
		h.handlePlant(w, r)
		return
	case r.URL.Path == "/api/v1/notifications":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleListNotifications(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/notifications/"):
		h.handleNotificationAction(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	list, err := h.service.ListReadiness(r.Context(), status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	census, err := h.service.CheckAllPlants(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, census)
}

func (h *Handler) handlePlant(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/readiness/")
	parts := strings.Split(path, "/")
	plantID := parts[0]
	if plantID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		record, err := h.service.GetPlantReadiness(r.Context(), plantID)
		if err != nil {
			respondReadinessError(w, err)
			return
		}
		writeJSON(w, record)
		return
	}

	action := strings.Join(parts[1:], "/")
	switch action {
	case "check", "manual", "continue", "ready":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handlePlantAction(w, r, plantID, action)
	case "revision":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleRevision(w, r, plantID, "json")
	case "revision/export.xlsx":
		h.handleRevision(w, r, plantID, "xlsx")
	case "revision/export.pdf":
		h.handleRevision(w, r, plantID, "pdf")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handlePlantAction(w http.ResponseWriter, r *http.Request, plantID, action string) {
	var (
		record *readiness.Record
		err    error
	)
	switch action {
	case "check":
		record, err = h.service.CheckPlantReadiness(r.Context(), plantID)
	case "manual":
		var body struct {
			Reason string `json:"reason"`
		}
		if err := decodeBody(r, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		record, err = h.service.TriggerManualRevision(r.Context(), plantID, body.Reason)
	case "continue":
		record, err = h.service.ContinueExistingSchedule(r.Context(), plantID)
	case "ready":
		var body struct {
			UploadDeadline time.Time `json:"upload_deadline"`
		}
		if err := decodeBody(r, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		record, err = h.service.MarkScheduleReady(r.Context(), plantID, body.UploadDeadline)
	}
	if err != nil {
		respondReadinessError(w, err)
		return
	}
	writeJSON(w, record)
}

type revisionRequest struct {
	MeterData         map[string]signals.BlockReading  `json:"meter_data"`
	ForecastData      map[string]signals.ForecastBlock `json:"forecast_data"`
	WeatherAdjustment float64                          `json:"weather_adjustment"`
}

func (h *Handler) handleRevision(w http.ResponseWriter, r *http.Request, plantID, format string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body revisionRequest
	if err := decodeBody(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	schedule, err := h.service.GenerateRevisionSchedule(r.Context(), plantID, body.MeterData, body.ForecastData, body.WeatherAdjustment)
	if err != nil {
		respondReadinessError(w, err)
		return
	}

	switch format {
	case "xlsx":
		data, err := interfaces.BuildScheduleXLSX(schedule)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="revision_schedule.xlsx"`)
		_, _ = w.Write(data)
	case "pdf":
		data, err := interfaces.BuildSchedulePDF(schedule)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="revision_schedule.pdf"`)
		_, _ = w.Write(data)
	default:
		writeJSON(w, schedule)
	}
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	plantID := r.URL.Query().Get("plant_id")
	unreadOnly := r.URL.Query().Get("unread_only") == "true"
	list, err := h.service.ListNotifications(r.Context(), plantID, unreadOnly)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (h *Handler) handleNotificationAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "read" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	notification, err := h.service.MarkNotificationRead(r.Context(), parts[0])
	if err != nil {
		respondReadinessError(w, err)
		return
	}
	writeJSON(w, notification)
}

func respondReadinessError(w http.ResponseWriter, err error) {
	if errors.Is(err, readiness.ErrNotFound) || errors.Is(err, readiness.ErrPlantNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func decodeBody(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(out); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
