// Package internal hosts the operator-facing inspection endpoints.
package internal

import (
	"conquest/domain"
	"conquest/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

type RoomsProvider func() []domain.Snapshot
type StatsProvider func() map[string]any
type RoomRemover func(domain.RoomID) bool

// StartDebugServer serves read-only JSON views of the live rooms plus the
// one administrative operation the game has: deleting a room. Listens in
// the background; it is an operator tool, not part of the game protocol.
func StartDebugServer(log *slog.Logger, port int, rooms RoomsProvider, stats StatsProvider, remove RoomRemover) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /rooms", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, rooms())
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, stats())
	})

	mux.HandleFunc("DELETE /rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := domain.RoomID(r.PathValue("id"))
		if !remove(id) {
			http.Error(w, errors.ErrRoomNotFound.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Debug server stopped", "err", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
