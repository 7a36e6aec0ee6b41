package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"repoguard/internal/signature"
	"repoguard/internal/utils"
)

// maxBodySize caps webhook and bulk request bodies. GitHub documents
// 25 MB as the largest webhook payload.
const maxBodySize = 32 * 1024 * 1024

type WebhookHandler struct {
	dispatcher *Dispatcher
	logger     *utils.Logger
}

func NewWebhookHandler(dispatcher *Dispatcher, logger *utils.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Routes registers the service endpoints on router.
func (h *WebhookHandler) Routes(router *mux.Router) {
	router.HandleFunc("/repo/event_callback", h.HandleEventCallback).Methods(http.MethodPost)
	router.HandleFunc("/repo/protect", h.HandleProtect).Methods(http.MethodPost)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("repoguard is running"))
	}).Methods(http.MethodGet)
}

// HandleEventCallback receives repository webhooks. The body is read raw
// so the signature is checked over the exact bytes GitHub signed. Every
// request whose body could be read is answered 200, including rejected
// ones; the outcome is only visible in the logs.
func (h *WebhookHandler) HandleEventCallback(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Error(fmt.Sprintf("Failed to read request body: %v", err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The workflow must finish even if GitHub stops waiting for the response.
	ctx := context.WithoutCancel(r.Context())
	h.dispatcher.HandleEvent(ctx, body, r.Header.Get(signature.Header))

	w.WriteHeader(http.StatusOK)
}

// HandleProtect applies the workflow to a JSON array of repository full
// names.
func (h *WebhookHandler) HandleProtect(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var names []string
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&names); err != nil {
		h.logger.Error(fmt.Sprintf("Failed to parse JSON payload: %v", err))
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	h.logger.Info(fmt.Sprintf("Applying protections to %d repositories", len(names)))
	h.dispatcher.ProtectRepositories(context.WithoutCancel(r.Context()), names)

	w.WriteHeader(http.StatusOK)
}
