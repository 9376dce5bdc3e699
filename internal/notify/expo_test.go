package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medico-vitals/internal/domain"
)

func testDoctor(token string) *domain.Doctor {
	d := &domain.Doctor{ID: "d1", FullName: "Dr. Smith"}
	if token != "" {
		d.ExpoPushToken = sql.NullString{String: token, Valid: true}
	}
	return d
}

func testPatient() *domain.Patient {
	return &domain.Patient{ID: "p1", FullName: "Jane Roe"}
}

func TestSendCriticalAlert_PostsExpoPayload(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewExpoDispatcher(srv.URL, zap.NewNop())
	d.SendCriticalAlert(context.Background(), testDoctor("ExponentPushToken[abc]"), testPatient(),
		"Scenario 1: Bradycardia, Hypothermia, Hypoxemia")

	require.NotNil(t, received)
	assert.Equal(t, "ExponentPushToken[abc]", received["to"])
	assert.Equal(t, "🚨 Critical Alert: Jane Roe", received["title"])
	assert.Equal(t, "high", received["priority"])
	assert.Equal(t, "medico-alerts", received["channelId"])

	data, ok := received["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", data["patientId"])
	assert.Equal(t, "CRITICAL", data["alertType"])
}

func TestSendWarningAlert_Title(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewExpoDispatcher(srv.URL, zap.NewNop())
	d.SendWarningAlert(context.Background(), testDoctor("tok"), testPatient(), "Scenario 6: Tachycardia")

	require.NotNil(t, received)
	assert.Equal(t, "⚠️ Warning: Jane Roe", received["title"])
	data := received["data"].(map[string]any)
	assert.Equal(t, "WARNING", data["alertType"])
}

func TestSend_SkipsDoctorWithoutToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := NewExpoDispatcher(srv.URL, zap.NewNop())
	d.SendCriticalAlert(context.Background(), testDoctor(""), testPatient(), "msg")

	assert.False(t, called)
}

func TestSend_DeliveryFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewExpoDispatcher(srv.URL, zap.NewNop())
	// Must not panic or propagate anything.
	d.SendCriticalAlert(context.Background(), testDoctor("tok"), testPatient(), "msg")
}
