package adminapi

import "net/http"

// NewRouter builds the admin HTTP mux. Every route but /healthz
// requires a valid bearer admin token.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /v1/audit/events", deps.authMiddleware(deps.handleListEvents))
	mux.HandleFunc("GET /v1/policy/overrides/{tool_name}", deps.authMiddleware(deps.handleGetOverride))
	mux.HandleFunc("PUT /v1/policy/overrides/{tool_name}", deps.authMiddleware(deps.handleSetOverride))

	return requestLogging(mux, deps.Logger)
}
