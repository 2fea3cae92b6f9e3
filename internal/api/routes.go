// Route registration and go-chi router setup.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MCPPath is the single well-known path accepting the MCP event-stream
// transport. Everything else answers the fixed 404 below.
const MCPPath = "/mcp"

// NewRouter creates the chi router: the MCP endpoint, an unauthenticated
// health probe, and a deterministic plain-text 404 for every other path.
func NewRouter(mcpHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check — used by load balancers and health probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// The one functional path: GET/POST/DELETE all belong to the
	// streamable-HTTP transport, so the handler gets every method.
	r.Handle(MCPPath, mcpHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Not found.\n\nThis server exposes a single MCP endpoint:\n  %s\n", MCPPath) //nolint:errcheck
	})

	return r
}
