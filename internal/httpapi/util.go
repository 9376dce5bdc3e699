package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

const maxBodyBytes = 1 << 20

// doctorIDHeader stands in for the authorization layer; upstream
// infrastructure is expected to authenticate and set it.
const doctorIDHeader = "X-Doctor-ID"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// doctorID extracts the caller identity; empty when the header is
// missing.
func doctorID(r *http.Request) string {
	return r.Header.Get(doctorIDHeader)
}

// requireDoctor writes a 401 envelope and returns "" when the identity
// header is absent.
func requireDoctor(w http.ResponseWriter, r *http.Request) string {
	id := doctorID(r)
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, Fail("missing "+doctorIDHeader+" header"))
	}
	return id
}

// writeServiceError maps domain sentinels to HTTP statuses. Unknown
// errors are logged and hidden behind a generic message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, domain.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, Fail(err.Error()))
	case errors.Is(err, domain.ErrNoActiveBinding):
		writeJSON(w, http.StatusConflict, Fail(err.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal server error"))
	}
}
