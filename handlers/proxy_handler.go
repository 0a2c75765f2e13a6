package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/tmsuite/console-gateway/utils"
	"go.uber.org/zap"
)

// ProxyHandler forwards guarded console requests to the upstream TMS
// API. The client's BearerTransport attaches the session's token and
// tears the session down on a 401, so a browser whose upstream token
// expired is redirected to login on its next guarded request.
type ProxyHandler struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewProxyHandler creates a ProxyHandler. The client must carry the
// upstream.BearerTransport.
func NewProxyHandler(client *http.Client, baseURL string, logger *zap.Logger) *ProxyHandler {
	return &ProxyHandler{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Forward relays the request to the same path on the upstream API and
// copies the response back. Upstream errors map to 502; the upstream's
// own status codes (including the 401 the transport reacts to) pass
// through untouched.
func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	target := h.baseURL + strings.TrimPrefix(r.URL.Path, "/api/v1")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		_ = utils.WriteInternalServerError(w, "")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("upstream request failed",
			zap.String("target", target),
			zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse{
			Error:   "bad_gateway",
			Message: "Upstream service unavailable",
		})
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
