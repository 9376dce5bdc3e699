package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux; the route surface
// is small enough that a third-party router buys nothing.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// RegisterIoTRoutes registers the device-facing endpoints.
func (r *Router) RegisterIoTRoutes(v *VitalsHandler, d *DeviceHandler) {
	r.Handle("/iot/api/v1/vitals", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		v.Ingest(w, req)
	})

	// /iot/api/v1/devices/{id}/active
	r.Handle("/iot/api/v1/devices/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/iot/api/v1/devices/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "active" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		d.Active(w, req, parts[0])
	})
}

// RegisterDataRoutes registers the doctor-facing endpoints.
func (r *Router) RegisterDataRoutes(v *VitalsHandler, dev *DeviceHandler, dis *DiseaseHandler, a *AlertHandler, rep *ReportHandler) {
	r.Handle("/data/api/v1/diseases", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		dis.Catalog(w, req)
	})

	r.Handle("/data/api/v1/diseases/match", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		dis.DirectMatch(w, req)
	})

	r.Handle("/data/api/v1/alerts", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		a.List(w, req)
	})

	r.Handle("/data/api/v1/alerts/unread", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		a.ListUnread(w, req)
	})

	r.Handle("/data/api/v1/alerts/unread/count", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		a.CountUnread(w, req)
	})

	r.Handle("/data/api/v1/alerts/read-all", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		a.MarkAllRead(w, req)
	})

	// /data/api/v1/alerts/{id}/read
	r.Handle("/data/api/v1/alerts/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/alerts/")
		parts := strings.Split(rest, "/")
		if len(parts) == 2 && parts[0] != "" && parts[1] == "read" {
			if req.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			a.MarkRead(w, req, parts[0])
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	// /data/api/v1/devices/{id}/patient
	r.Handle("/data/api/v1/devices/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/devices/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "patient" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		dev.ActivePatient(w, req, parts[0])
	})

	// /data/api/v1/history/{id}/status and /notes
	r.Handle("/data/api/v1/history/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/history/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch parts[1] {
		case "status":
			dis.UpdateStatus(w, req, parts[0])
		case "notes":
			dis.AddNotes(w, req, parts[0])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// /data/api/v1/patients/{id}/<resource...>
	r.Handle("/data/api/v1/patients/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/patients/")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		patientID, resource := parts[0], parts[1]

		switch {
		case resource == "vitals/recent" && req.Method == http.MethodGet:
			v.Recent(w, req, patientID)
		case resource == "vitals/latest" && req.Method == http.MethodGet:
			v.Latest(w, req, patientID)
		case resource == "vitals/range" && req.Method == http.MethodGet:
			v.Range(w, req, patientID)
		case resource == "diseases/matches" && req.Method == http.MethodGet:
			dis.MatchesForPatient(w, req, patientID)
		case resource == "history" && req.Method == http.MethodGet:
			dis.History(w, req, patientID)
		case resource == "history" && req.Method == http.MethodPost:
			dis.RecordDisease(w, req, patientID)
		case resource == "history/summary" && req.Method == http.MethodGet:
			dis.HistorySummary(w, req, patientID)
		case resource == "history/auto-record" && req.Method == http.MethodPost:
			dis.AutoRecord(w, req, patientID)
		case resource == "device" && req.Method == http.MethodPost:
			dev.Assign(w, req, patientID)
		case resource == "device" && req.Method == http.MethodDelete:
			dev.Unassign(w, req, patientID)
		case resource == "alerts" && req.Method == http.MethodGet:
			a.ListByPatient(w, req, patientID)
		case resource == "report" && req.Method == http.MethodGet:
			rep.Download(w, req, patientID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// RegisterHealthRoutes registers the liveness endpoint.
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/health", h.Check)
}
