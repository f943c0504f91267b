package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petcare/appointment-service/internal/appointment"
)

type RouterConfig struct {
	Service *appointment.Service
	DB      Pinger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.DB, cfg.Env, cfg.Version)
	r.Get("/health", health.Health)
	r.Get("/health/ready", health.Readiness)

	r.Post("/appointments", createAppointmentHandler(cfg.Service))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/stats", statsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Put("/appointments/{id}", updateAppointmentHandler(cfg.Service))
	r.Patch("/appointments/{id}/status", updateStatusHandler(cfg.Service))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))

	return r
}
