// Package api pkg/api/server.go
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/HughKantsime/printfarm/pkg/db"
	httpx "github.com/HughKantsime/printfarm/pkg/http"
	"github.com/HughKantsime/printfarm/pkg/models"
	"github.com/HughKantsime/printfarm/pkg/monitor"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
	defaultAlertLimit = 100

	maxTargetCelsius = 300
)

// PrinterSummary is one row of the fleet listing: registry identity plus
// the live snapshot.
type PrinterSummary struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Kind    models.Kind            `json:"kind"`
	Host    string                 `json:"host"`
	Enabled bool                   `json:"enabled"`
	Status  models.CanonicalStatus `json:"status"`
}

// Server exposes fleet state over HTTP. Everything is JSON; the routes
// are read-only except for command passthrough and alert acks.
type Server struct {
	monitor Monitor
	store   Store
	router  *mux.Router
}

// NewServer wires the HTTP routes over a monitor and its store.
func NewServer(mon Monitor, store Store) *Server {
	s := &Server{
		monitor: mon,
		store:   store,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)

	// Fleet endpoints
	s.router.HandleFunc("/api/printers", s.getPrinters).Methods("GET")
	s.router.HandleFunc("/api/printers/{id}/status", s.getPrinterStatus).Methods("GET")
	s.router.HandleFunc("/api/printers/{id}/history", s.getPrinterHistory).Methods("GET")
	s.router.HandleFunc("/api/printers/{id}/commands/{verb}", s.postPrinterCommand).Methods("POST")
	s.router.HandleFunc("/api/printers/{id}/temperature", s.postPrinterTemperature).Methods("POST")

	// Relay polling for out-of-process consumers
	s.router.HandleFunc("/api/events", s.getEvents).Methods("GET")

	// Alert digest
	s.router.HandleFunc("/api/alerts", s.getAlerts).Methods("GET")
	s.router.HandleFunc("/api/alerts/{id}/ack", s.postAlertAck).Methods("POST")
}

// Start serves the API until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the routed handler for callers that manage their own
// http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) getPrinters(w http.ResponseWriter, _ *http.Request) {
	printers, err := s.store.ListPrinters(false)
	if err != nil {
		log.Printf("Failed to list printers: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	summaries := make([]PrinterSummary, 0, len(printers))

	for _, p := range printers {
		st, _ := s.monitor.Status(p.ID) // Offline() when no worker is running

		// Raw device payloads stay on the per-printer status endpoint.
		st.Raw = nil

		summaries = append(summaries, PrinterSummary{
			ID:      p.ID,
			Name:    p.Name,
			Kind:    p.Kind,
			Host:    p.Host,
			Enabled: p.Enabled,
			Status:  st,
		})
	}

	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		log.Printf("Error encoding printers response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) getPrinterStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	status, err := s.monitor.Status(vars["id"])
	if err != nil {
		http.Error(w, "Printer not found", http.StatusNotFound)
		return
	}

	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Printf("Error encoding status response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) getPrinterHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	printerID := vars["id"]

	if _, err := s.monitor.Status(printerID); err != nil {
		http.Error(w, "Printer not found", http.StatusNotFound)
		return
	}

	samples := s.monitor.History(printerID)
	if samples == nil {
		samples = []models.StatusSample{}
	}

	if err := json.NewEncoder(w).Encode(samples); err != nil {
		log.Printf("Error encoding history response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) postPrinterCommand(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	printerID := vars["id"]
	verb := vars["verb"]

	var err error

	switch verb {
	case "pause":
		err = s.monitor.Pause(r.Context(), printerID)
	case "resume":
		err = s.monitor.Resume(r.Context(), printerID)
	case "cancel":
		err = s.monitor.Cancel(r.Context(), printerID)
	default:
		http.Error(w, "Unknown command", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, monitor.ErrUnknownPrinter):
		http.Error(w, "Printer not found", http.StatusNotFound)
	case err != nil:
		log.Printf("Command %s for printer %s failed: %v", verb, printerID, err)
		http.Error(w, "Command failed", http.StatusBadGateway)
	default:
		// The adapter accepted the command; the device applies it on its
		// own schedule.
		w.WriteHeader(http.StatusAccepted)
	}
}

type temperatureRequest struct {
	Tool    string  `json:"tool"`
	Celsius float64 `json:"celsius"`
}

func (s *Server) postPrinterTemperature(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	printerID := vars["id"]

	var req temperatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Tool != "bed" && req.Tool != "nozzle" {
		http.Error(w, "Unknown tool", http.StatusBadRequest)
		return
	}

	if req.Celsius < 0 || req.Celsius > maxTargetCelsius {
		http.Error(w, "Target out of range", http.StatusBadRequest)
		return
	}

	err := s.monitor.SetTemperature(r.Context(), printerID, req.Tool, req.Celsius)

	switch {
	case errors.Is(err, monitor.ErrUnknownPrinter):
		http.Error(w, "Printer not found", http.StatusNotFound)
	case err != nil:
		log.Printf("Temperature command for printer %s failed: %v", printerID, err)
		http.Error(w, "Command failed", http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	after, err := queryInt64(r, "after", 0)
	if err != nil {
		http.Error(w, "Invalid after parameter", http.StatusBadRequest)
		return
	}

	limit, err := queryInt(r, "limit", defaultEventLimit)
	if err != nil || limit < 1 {
		http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
		return
	}

	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := s.store.RelayEventsAfter(after, limit)
	if err != nil {
		log.Printf("Failed to load relay events: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	if events == nil {
		events = []db.RelayEvent{}
	}

	if err := json.NewEncoder(w).Encode(events); err != nil {
		log.Printf("Error encoding events response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "Missing user parameter", http.StatusBadRequest)
		return
	}

	unackedOnly := r.URL.Query().Get("unacked") == "1"

	limit, err := queryInt(r, "limit", defaultAlertLimit)
	if err != nil || limit < 1 {
		http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
		return
	}

	alerts, err := s.store.ListAlerts(userID, unackedOnly, limit)
	if err != nil {
		log.Printf("Failed to list alerts for user %s: %v", userID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	if err := json.NewEncoder(w).Encode(alerts); err != nil {
		log.Printf("Error encoding alerts response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) postAlertAck(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	alertID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid alert id", http.StatusBadRequest)
		return
	}

	switch err := s.store.AcknowledgeAlert(alertID); {
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Alert not found", http.StatusNotFound)
	case err != nil:
		log.Printf("Failed to acknowledge alert %d: %v", alertID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func queryInt64(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.ParseInt(raw, 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
