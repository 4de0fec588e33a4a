// Package handlers implements the HTTP front door: route the request to the
// right processor, run its verify/parse/handle pipeline, and translate
// pipeline errors into status codes.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"webhook-notifier/internal/common/errors"
	"webhook-notifier/internal/common/logging"
	"webhook-notifier/internal/processors"
)

// maxBodyBytes bounds inbound payloads. The largest real payload (a GitHub
// workflow_run event) is well under 1 MiB.
const maxBodyBytes = 1 << 20

// WebhookHandler serves the /webhook endpoints.
type WebhookHandler struct {
	registry *processors.Registry
	logger   logging.Logger
}

// NewWebhookHandler creates the front door handler.
func NewWebhookHandler(registry *processors.Registry, logger logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &WebhookHandler{
		registry: registry,
		logger:   logger,
	}
}

// Receive handles POST /webhook/{source} and POST /webhook with the
// X-Webhook-Source header.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)
	if source == "" {
		h.writeError(w, errors.UnknownSourceError(""))
		return
	}

	processor, err := h.registry.Get(source)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, errors.PayloadError("reading request body", err))
		return
	}

	log := h.logger.WithFields(logging.String("source", source))

	if err := processor.Verify(r, body); err != nil {
		log.Warn("Webhook rejected",
			logging.String("reason", err.Error()),
			logging.String("remote_addr", r.RemoteAddr),
		)
		h.writeError(w, err)
		return
	}

	evt, err := processor.Parse(body, time.Now())
	if err != nil {
		log.Warn("Webhook payload rejected",
			logging.String("reason", err.Error()),
			logging.String("payload", truncate(body, 256)),
		)
		h.writeError(w, err)
		return
	}

	result, err := processor.Handle(r.Context(), evt)
	if err != nil {
		log.Error("Webhook handling failed", err,
			logging.String("trigger_kind", evt.TriggerKind()))
		h.writeError(w, err)
		return
	}

	log.Info("Webhook resolved",
		logging.String("trigger_kind", evt.TriggerKind()),
		logging.String("outcome", string(result.Outcome)),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// Challenge handles GET /webhook/{source} for providers that probe the
// endpoint before sending events.
func (h *WebhookHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	source := sourceFrom(r)

	processor, err := h.registry.Get(source)
	if err != nil {
		h.writeError(w, err)
		return
	}

	responder, ok := processor.(processors.ChallengeResponder)
	if !ok {
		w.Header().Set("Allow", http.MethodPost)
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error": "source does not support challenges",
		})
		return
	}

	body, err := responder.Challenge(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Health handles GET /healthz.
func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"sources": h.registry.Sources(),
	})
}

// sourceFrom resolves the source from the path, falling back to the
// X-Webhook-Source header for the bare /webhook route.
func sourceFrom(r *http.Request) string {
	if source, ok := mux.Vars(r)["source"]; ok && source != "" {
		return source
	}
	return r.Header.Get("X-Webhook-Source")
}

// writeError maps pipeline error types onto status codes.
func (h *WebhookHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeAuth:
		status = http.StatusUnauthorized
	case errors.ErrTypeMalformedPayload:
		status = http.StatusBadRequest
	case errors.ErrTypeUnknownSource:
		status = http.StatusNotFound
	case errors.ErrTypeDelivery, errors.ErrTypeDispatch:
		status = http.StatusBadGateway
	case errors.ErrTypeTimeout:
		status = http.StatusGatewayTimeout
	}

	h.writeJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}

func (h *WebhookHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
