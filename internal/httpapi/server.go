// Package httpapi implements opboxlink's read-only diagnostic HTTP surface:
// a liveness probe reflecting Link Engine connection state and a Field Store
// snapshot for debugging.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/osu-uwrt/opboxlink/internal/fieldstore"
	"github.com/osu-uwrt/opboxlink/internal/frame"
)

// ConnectionState is consulted by the /healthz handler.
type ConnectionState interface {
	Connected() bool
}

// fieldSnapshot is one entry in the /status response body. Value is the
// field's decoded semantic value (e.g. "KILLED", "WARN"), not its raw wire
// bytes.
type fieldSnapshot struct {
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	WriteTime time.Time `json:"write_time"`
}

// NewRouter builds the diagnostic HTTP surface over link's connection state
// and store's current fields.
func NewRouter(link ConnectionState, store *fieldstore.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/healthz", healthzHandler(link))
	r.Get("/status", statusHandler(store))

	return r
}

func healthzHandler(link ConnectionState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"connected": link.Connected()})
	}
}

func statusHandler(store *fieldstore.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshots := make([]fieldSnapshot, 0, len(frame.Layouts))
		seen := make(map[frame.FieldID]bool)

		for _, layout := range frame.Layouts {
			for _, fl := range layout.PayloadFields() {
				if seen[fl.Field] {
					continue
				}
				seen[fl.Field] = true

				value, writeTime, ok := store.GetStamped(fl.Field)
				if !ok {
					continue
				}
				snapshots = append(snapshots, fieldSnapshot{
					Field:     fl.Field.String(),
					Value:     frame.DecodeField(fl.Field, value),
					WriteTime: writeTime,
				})
			}
		}

		writeJSON(w, http.StatusOK, snapshots)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
