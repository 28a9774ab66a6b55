package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the route table.
func NewRouter(h *Handler, metricsEnabled bool, metricsPath string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/checkins", h.handleCheckIn)
	mux.HandleFunc("GET /api/v1/users/{id}/streak", h.handleGetStreak)
	mux.HandleFunc("GET /api/v1/users/{id}/checkins", h.handleCheckInHistory)

	mux.HandleFunc("GET /api/v1/users/{id}/reminders", h.handleListReminders)
	mux.HandleFunc("PUT /api/v1/users/{id}/reminders", h.handleSetReminder)
	mux.HandleFunc("DELETE /api/v1/users/{id}/reminders", h.handleDeleteReminder)

	mux.HandleFunc("PUT /api/v1/users/{id}/timezone", h.handleSetTimezone)
	mux.HandleFunc("PUT /api/v1/users/{id}/language", h.handleSetLanguage)

	mux.HandleFunc("POST /api/v1/tafsir", h.handleTafsir)

	mux.HandleFunc("GET /health", h.handleHealth)

	if metricsEnabled {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle("GET "+metricsPath, promhttp.Handler())
	}

	return mux
}
