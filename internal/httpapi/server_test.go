package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
	"github.com/stretchr/testify/require"
)

type fakeLink struct{ connected bool }

func (f fakeLink) Connected() bool { return f.connected }

func TestHealthzReflectsConnectionState(t *testing.T) {
	store := fieldstore.New()
	router := NewRouter(fakeLink{connected: true}, store)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body["connected"])
}

func TestStatusReturnsWrittenFieldsOnly(t *testing.T) {
	store := fieldstore.New()
	store.Set(frame.FieldRobotKillState, []byte{byte(frame.Killed)}, time.Now())

	router := NewRouter(fakeLink{connected: false}, store)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshots []fieldSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 1)
	require.Equal(t, "robot_kill_state", snapshots[0].Field)
	require.Equal(t, "KILLED", snapshots[0].Value)
}

func TestStatusNeverMutatesStore(t *testing.T) {
	store := fieldstore.New()
	router := NewRouter(fakeLink{connected: true}, store)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.False(t, store.Has(frame.FieldRobotKillState))
}
