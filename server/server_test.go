package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/onetakeda/sapio-webhooks/client"
	"github.com/onetakeda/sapio-webhooks/config"
	"github.com/onetakeda/sapio-webhooks/datastore"
	"github.com/onetakeda/sapio-webhooks/pkg/log"
	"github.com/onetakeda/sapio-webhooks/webhook"
)

type stubHandler struct {
	res   *webhook.Result
	err   error
	panic bool
}

func (h *stubHandler) Execute(ctx context.Context, wctx *webhook.Context) (*webhook.Result, error) {
	if h.panic {
		panic("boom")
	}

	return h.res, h.err
}

func stubFactory(h webhook.Handler) HandlerFactory {
	return func(sapio *client.Client) webhook.Handler { return h }
}

type memoryRepo struct {
	invocations []datastore.Invocation
	err         error
}

func (m *memoryRepo) CreateInvocation(ctx context.Context, inv *datastore.Invocation) error {
	if m.err != nil {
		return m.err
	}

	m.invocations = append(m.invocations, *inv)
	return nil
}

func (m *memoryRepo) FindRecentInvocations(ctx context.Context, limit int) ([]datastore.Invocation, error) {
	if m.err != nil {
		return nil, m.err
	}

	if limit > len(m.invocations) {
		limit = len(m.invocations)
	}

	return m.invocations[:limit], nil
}

func (m *memoryRepo) FindInvocationsByEndpoint(ctx context.Context, endpointPath string, limit int) ([]datastore.Invocation, error) {
	out := make([]datastore.Invocation, 0)
	for _, inv := range m.invocations {
		if inv.EndpointPath == endpointPath {
			out = append(out, inv)
		}
	}

	return out, m.err
}

func newTestServer(t *testing.T, repo datastore.InvocationRepository) *Server {
	t.Helper()

	cfg := config.Configuration{
		Server: config.ServerConfiguration{
			HTTP: config.HTTPServerConfiguration{Port: 8080},
		},
		Client: config.ClientConfiguration{TimeoutSeconds: 5},
		Logger: config.LoggerConfiguration{Level: "info"},
	}

	return New(cfg, repo, log.NewLogger(io.Discard))
}

func webhookBody(t *testing.T) string {
	t.Helper()

	return `{
		"webhookEndpointType": "ACTIONMENU",
		"webhookEndpointPath": "/stub",
		"webserviceUrl": "https://lims.example.com",
		"username": "jdoe",
		"sessionToken": "tok-123"
	}`
}

func postWebhook(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) *webhook.Result {
	t.Helper()

	var res webhook.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return &res
}

func TestServer_Ping(t *testing.T) {
	s := newTestServer(t, nil)
	router := s.BuildRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Alive!", w.Body.String())
}

func TestServer_HandleWebhook(t *testing.T) {
	tests := []struct {
		name        string
		handler     webhook.Handler
		wantPassed  bool
		wantDisplay string
	}{
		{
			name:       "passing result travels unchanged",
			handler:    &stubHandler{res: webhook.NewResultWithText(true, "all good")},
			wantPassed: true, wantDisplay: "all good",
		},
		{
			name:       "nil result defaults to a pass",
			handler:    &stubHandler{},
			wantPassed: true,
		},
		{
			name:        "handler error becomes a failed result",
			handler:     &stubHandler{err: errors.New("platform unreachable")},
			wantPassed:  false,
			wantDisplay: genericFailureText,
		},
		{
			name:        "handler panic becomes a failed result",
			handler:     &stubHandler{panic: true},
			wantPassed:  false,
			wantDisplay: genericFailureText,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			s.Registry().Register("/stub", "Stub", stubFactory(tc.handler))
			router := s.BuildRoutes()

			w := postWebhook(t, router, "/stub", webhookBody(t))

			// handler-level failures still answer 200; the platform reads
			// the outcome from the result body
			require.Equal(t, http.StatusOK, w.Code)

			res := decodeResult(t, w)
			require.Equal(t, tc.wantPassed, res.Passed)
			require.Equal(t, tc.wantDisplay, res.DisplayText)
		})
	}
}

func TestServer_HandleWebhook_BadPayload(t *testing.T) {
	s := newTestServer(t, nil)
	s.Registry().Register("/stub", "Stub", stubFactory(&stubHandler{}))
	router := s.BuildRoutes()

	w := postWebhook(t, router, "/stub", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_HandleWebhook_RequiresJSONContentType(t *testing.T) {
	s := newTestServer(t, nil)
	s.Registry().Register("/stub", "Stub", stubFactory(&stubHandler{}))
	router := s.BuildRoutes()

	req := httptest.NewRequest(http.MethodPost, "/stub", strings.NewReader(webhookBody(t)))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestServer_DebugLevelLogsPayloads(t *testing.T) {
	serve := func(level log.Level) string {
		var buf bytes.Buffer
		lo := log.NewLogger(&buf)
		lo.SetLevel(level)

		cfg := config.Configuration{
			Server: config.ServerConfiguration{
				HTTP: config.HTTPServerConfiguration{Port: 8080},
			},
			Client: config.ClientConfiguration{TimeoutSeconds: 5},
			Logger: config.LoggerConfiguration{Level: level.String()},
		}

		s := New(cfg, nil, lo)
		s.Registry().Register("/stub", "Stub", stubFactory(&stubHandler{res: webhook.NewResultWithText(true, "all good")}))
		router := s.BuildRoutes()

		w := postWebhook(t, router, "/stub", webhookBody(t))
		require.Equal(t, http.StatusOK, w.Code)

		return buf.String()
	}

	infoOut := serve(log.InfoLevel)
	require.NotContains(t, infoOut, "webhook invocation received")
	require.NotContains(t, infoOut, "webhook invocation completed")

	debugOut := serve(log.DebugLevel)
	require.Contains(t, debugOut, "webhook invocation received")
	require.Contains(t, debugOut, "webhook invocation completed")

	// both payloads are dumped, with the session token masked
	require.Contains(t, debugOut, "lims.example.com")
	require.Contains(t, debugOut, "all good")
	require.Contains(t, debugOut, "[REDACTED]")
	require.NotContains(t, debugOut, "tok-123")
}

func TestServer_RecordsInvocation(t *testing.T) {
	repo := &memoryRepo{}
	s := newTestServer(t, repo)
	s.Registry().Register("/stub", "Stub", stubFactory(&stubHandler{res: webhook.NewResultWithText(false, "nope")}))
	router := s.BuildRoutes()

	w := postWebhook(t, router, "/stub", webhookBody(t))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, repo.invocations, 1)
	inv := repo.invocations[0]
	require.NotEmpty(t, inv.UID)
	require.Equal(t, "/stub", inv.EndpointPath)
	require.Equal(t, "Stub", inv.Handler)
	require.Equal(t, "jdoe", inv.Username)
	require.False(t, inv.Passed)
	require.Equal(t, "nope", inv.Message)
	require.WithinDuration(t, time.Now().UTC(), inv.CreatedAt, time.Minute)
}

func TestServer_RecordInvocationFailureDoesNotFailRequest(t *testing.T) {
	repo := &memoryRepo{err: errors.New("disk full")}
	s := newTestServer(t, repo)
	s.Registry().Register("/stub", "Stub", stubFactory(&stubHandler{}))
	router := s.BuildRoutes()

	w := postWebhook(t, router, "/stub", webhookBody(t))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeResult(t, w).Passed)
}

func TestServer_GetInvocations(t *testing.T) {
	repo := &memoryRepo{invocations: []datastore.Invocation{
		{UID: "01A", EndpointPath: "/stub", Handler: "Stub", Passed: true},
		{UID: "01B", EndpointPath: "/other", Handler: "Other", Passed: false},
	}}
	s := newTestServer(t, repo)
	router := s.BuildRoutes()

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantUIDs []string
	}{
		{
			name:     "defaults",
			target:   "/invocations",
			wantCode: http.StatusOK,
			wantUIDs: []string{"01A", "01B"},
		},
		{
			name:     "endpoint filter",
			target:   "/invocations?endpoint=/other",
			wantCode: http.StatusOK,
			wantUIDs: []string{"01B"},
		},
		{
			name:     "limit applies",
			target:   "/invocations?limit=1",
			wantCode: http.StatusOK,
			wantUIDs: []string{"01A"},
		},
		{
			name:     "limit out of range",
			target:   "/invocations?limit=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "limit not a number",
			target:   "/invocations?limit=ten",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.target, nil))

			require.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Data []datastore.Invocation `json:"data"`
			}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

			uids := make([]string, 0, len(body.Data))
			for _, inv := range body.Data {
				uids = append(uids, inv.UID)
			}
			require.Equal(t, tc.wantUIDs, uids)
		})
	}
}

func TestServer_GetInvocations_NoRepo(t *testing.T) {
	s := newTestServer(t, nil)
	router := s.BuildRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invocations", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("/one", "One", stubFactory(&stubHandler{}))
	r.Register("/two", "Two", stubFactory(&stubHandler{}))

	endpoints := r.Endpoints()
	require.Len(t, endpoints, 2)
	require.Equal(t, "/one", endpoints[0].Path)
	require.Equal(t, "/two", endpoints[1].Path)

	require.Panics(t, func() { r.Register("/one", "Again", stubFactory(&stubHandler{})) })
	require.Panics(t, func() { r.Register("no-slash", "Bad", stubFactory(&stubHandler{})) })
}
