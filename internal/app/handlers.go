package app

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	redisstore "firewall/internal/storage/redis"
)

var startedAt = time.Now()

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleIndex serves the service root.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "firewall",
		"message": "request inspection firewall is running",
	})
}

// handleSystemInfo reports runtime details.
func handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"goVersion":  runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"uptime":     time.Since(startedAt).String(),
	})
}

// handleHealth reports liveness of the service and its shared store. The
// service is healthy even when the store is down; protection checks fail
// open, they do not take the service with them.
func handleHealth(manager *redisstore.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := "down"
		if client := manager.GetClient(); client != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if client.Ping(ctx) == nil {
				store = "up"
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"store":  store,
		})
	}
}
