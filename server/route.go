package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/oklog/ulid/v2"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/datastore"
	"github.com/onetakeda/sapio-webhooks/pkg/log"
	"github.com/onetakeda/sapio-webhooks/util"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

// genericFailureText is shown to the user when a handler fails in a way it
// did not explain itself.
const genericFailureText = "An unexpected error occurred. Please contact a system administrator."

func (s *Server) handleWebhook(e Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lo := log.FromContext(r.Context())

		var wctx webhook.Context
		if err := json.NewDecoder(r.Body).Decode(&wctx); err != nil {
			_ = render.Render(w, r, util.NewErrorResponse("invalid webhook payload", http.StatusBadRequest))
			return
		}

		logWebhookRequest(lo, e, &wctx)

		// Bound the invocation to the configured client timeout so a stuck
		// handler cannot hold the connection past the write timeout.
		ctx, cancel := context.WithTimeout(r.Context(),
			time.Duration(s.cfg.Client.TimeoutSeconds)*time.Second)
		defer cancel()

		start := time.Now()
		res := s.invoke(ctx, e, &wctx)
		took := time.Since(start)

		logWebhookResponse(lo, e, res, took)

		observeInvocation(e.Path, res.Passed, took)
		s.recordInvocation(e, &wctx, res, took)

		// The platform treats non-200 responses as infrastructure failures,
		// so handler-level failures still travel as a well-formed result.
		render.Status(r, http.StatusOK)
		render.JSON(w, r, res)
	}
}

// logWebhookRequest dumps the incoming context at debug level, with the
// session token masked so credentials never land in log output.
func logWebhookRequest(lo log.StdLogger, e Endpoint, wctx *webhook.Context) {
	redacted := *wctx
	redacted.SessionToken = "[REDACTED]"

	payload, err := json.Marshal(&redacted)
	if err != nil {
		return
	}

	lo.WithFields(log.Fields{
		"endpoint": e.Path,
		"handler":  e.Name,
		"payload":  string(payload),
	}).Debug("webhook invocation received")
}

func logWebhookResponse(lo log.StdLogger, e Endpoint, res *webhook.Result, took time.Duration) {
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}

	lo.WithFields(log.Fields{
		"endpoint": e.Path,
		"passed":   res.Passed,
		"duration": took.String(),
		"payload":  string(payload),
	}).Debug("webhook invocation completed")
}

func (s *Server) invoke(ctx context.Context, e Endpoint, wctx *webhook.Context) (res *webhook.Result) {
	lo := log.FromContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			lo.WithFields(log.Fields{"endpoint": e.Path, "handler": e.Name, "panic": rec}).
				Error("webhook handler panicked")
			res = webhook.NewResultWithText(false, genericFailureText)
		}
	}()

	sapio, err := client.NewFromContext(s.cfg.Client, wctx)
	if err != nil {
		lo.WithError(err).WithFields(log.Fields{"endpoint": e.Path}).
			Error("failed to build platform client from webhook context")
		return webhook.NewResultWithText(false, genericFailureText)
	}

	handler := e.Factory(sapio)

	res, err = handler.Execute(ctx, wctx)
	if err != nil {
		lo.WithError(err).WithFields(log.Fields{"endpoint": e.Path, "handler": e.Name}).
			Error("webhook handler failed")
		return webhook.NewResultWithText(false, genericFailureText)
	}

	if res == nil {
		res = webhook.NewResult(true)
	}

	return res
}

// recordInvocation writes the audit row. Failures are logged and dropped:
// the log must never fail the invocation it describes.
func (s *Server) recordInvocation(e Endpoint, wctx *webhook.Context, res *webhook.Result, took time.Duration) {
	if s.repo == nil {
		return
	}

	// Detached from the request context so a client disconnect cannot
	// cancel the write.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv := &datastore.Invocation{
		UID:          ulid.Make().String(),
		EndpointPath: e.Path,
		Handler:      e.Name,
		Username:     wctx.Username,
		Passed:       res.Passed,
		Message:      res.DisplayText,
		DurationMS:   took.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateInvocation(ctx, inv); err != nil {
		s.logger.WithError(err).Error("failed to record webhook invocation")
	}
}

func (s *Server) getInvocations(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		_ = render.Render(w, r, util.NewErrorResponse("invocation log is not configured", http.StatusNotFound))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			_ = render.Render(w, r, util.NewErrorResponse("limit must be between 1 and 1000", http.StatusBadRequest))
			return
		}
		limit = n
	}

	var (
		invocations []datastore.Invocation
		err         error
	)

	if endpoint := r.URL.Query().Get("endpoint"); endpoint != "" {
		invocations, err = s.repo.FindInvocationsByEndpoint(r.Context(), endpoint, limit)
	} else {
		invocations, err = s.repo.FindRecentInvocations(r.Context(), limit)
	}

	if err != nil {
		log.FromContext(r.Context()).WithError(err).Error("failed to fetch invocations")
		_ = render.Render(w, r, util.NewErrorResponse("failed to fetch invocations", http.StatusInternalServerError))
		return
	}

	_ = render.Render(w, r, util.NewServerResponse("invocations retrieved successfully", invocations, http.StatusOK))
}
