package cmd

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/UOR-Foundation/stone/internal/bootstrap"
	"github.com/UOR-Foundation/stone/internal/bootstrap/logging"
	"github.com/UOR-Foundation/stone/internal/errs"
	"github.com/UOR-Foundation/stone/internal/usecase/orchestrator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GitHub webhook receiver",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, orch *orchestrator.Orchestrator) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = ":8088"
		}

		secret := app.Config.GitHub.WebhookSecret

		server := &http.Server{
			Addr:    addr,
			Handler: newWebhookRouter(ctx, orch, secret),
		}

		logging.Info(ctx, "webhook server started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "webhook server failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve webhooks")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8088", "Webhook listen address")
}

// webhookService is the slice of the orchestrator the HTTP layer needs.
type webhookService interface {
	ProcessWebhook(ctx context.Context, eventType string, deliveryID string, payload []byte) orchestrator.WebhookResult
}

type webhookHTTPHandler struct {
	baseCtx context.Context
	svc     webhookService
	secret  string
}

type webhookAckResponse struct {
	Accepted  bool   `json:"accepted"`
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate"`
	Action    string `json:"action,omitempty"`
}

type webhookErrorResponse struct {
	Error string `json:"error"`
}

func newWebhookRouter(ctx context.Context, svc webhookService, secret string) http.Handler {
	h := &webhookHTTPHandler{
		baseCtx: ctx,
		svc:     svc,
		secret:  secret,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/webhooks/github", h.handleGitHub)
	return r
}

// handleGitHub authenticates the delivery and hands it to the orchestrator.
// Processing outcome never affects the acknowledgement: a recognized-or-not
// event type is accepted with 202 once the signature checks out.
func (h *webhookHTTPHandler) handleGitHub(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeWebhookError(w, http.StatusInternalServerError, "webhook service is not configured")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeWebhookError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	if err := validateGitHubSignature(h.secret, r.Header.Get("X-Hub-Signature-256"), payload); err != nil {
		writeWebhookError(w, http.StatusUnauthorized, err.Error())
		return
	}

	eventType := strings.TrimSpace(r.Header.Get("X-GitHub-Event"))
	if action := webhookAction(payload); eventType == "issues" && action != "" {
		eventType = eventType + "." + action
	}
	deliveryID := strings.TrimSpace(r.Header.Get("X-GitHub-Delivery"))

	out := h.svc.ProcessWebhook(h.baseCtx, eventType, deliveryID, payload)

	writeWebhookJSON(w, http.StatusAccepted, webhookAckResponse{
		Accepted:  true,
		Handled:   out.Handled,
		Duplicate: out.Duplicate,
		Action:    out.Action,
	})
}

func webhookAction(payload []byte) string {
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Action)
}

func validateGitHubSignature(secret string, signatureHeader string, payload []byte) error {
	normalizedSecret := strings.TrimSpace(secret)
	if normalizedSecret == "" {
		return nil
	}

	signature := strings.TrimSpace(signatureHeader)
	if signature == "" {
		return errors.New("missing X-Hub-Signature-256")
	}

	const prefix = "sha256="
	if len(signature) <= len(prefix) || !strings.EqualFold(signature[:len(prefix)], prefix) {
		return errors.New("invalid X-Hub-Signature-256 format")
	}

	decoded, err := hex.DecodeString(strings.TrimSpace(signature[len(prefix):]))
	if err != nil {
		return errors.New("invalid X-Hub-Signature-256 digest")
	}

	mac := hmac.New(sha256.New, []byte(normalizedSecret))
	if _, err := mac.Write(payload); err != nil {
		return errs.Wrap(err, "compute github webhook signature")
	}

	if !hmac.Equal(decoded, mac.Sum(nil)) {
		return errors.New("invalid X-Hub-Signature-256")
	}
	return nil
}

func writeWebhookError(w http.ResponseWriter, status int, message string) {
	writeWebhookJSON(w, status, webhookErrorResponse{Error: message})
}

func writeWebhookJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
