package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/api"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/phrazzld/srsforge/internal/service"
	"github.com/phrazzld/srsforge/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testToken = "valid-token"

// fakeRunService records calls and returns canned results.
type fakeRunService struct {
	createFn    func(ctx context.Context, clientID uuid.UUID, name, content string) (*domain.Run, error)
	getFn       func(ctx context.Context, clientID, runID uuid.UUID) (*domain.Run, error)
	listFn      func(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error)
	artifactsFn func(ctx context.Context, clientID, runID uuid.UUID) ([]*domain.Artifact, error)
}

var _ service.RunService = (*fakeRunService)(nil)

func (f *fakeRunService) CreateRunAndEnqueue(ctx context.Context, clientID uuid.UUID, name, content string) (*domain.Run, error) {
	if f.createFn != nil {
		return f.createFn(ctx, clientID, name, content)
	}
	return domain.NewRun(clientID, name, content, "generated_app")
}

func (f *fakeRunService) GetRun(ctx context.Context, clientID, runID uuid.UUID) (*domain.Run, error) {
	if f.getFn != nil {
		return f.getFn(ctx, clientID, runID)
	}
	return nil, service.ErrRunNotFound
}

func (f *fakeRunService) ListRuns(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error) {
	if f.listFn != nil {
		return f.listFn(ctx, clientID, limit, offset)
	}
	return nil, nil
}

func (f *fakeRunService) ListArtifacts(ctx context.Context, clientID, runID uuid.UUID) ([]*domain.Artifact, error) {
	if f.artifactsFn != nil {
		return f.artifactsFn(ctx, clientID, runID)
	}
	return nil, nil
}

// fakeIssuer implements api.TokenIssuer.
type fakeIssuer struct {
	token *auth.Token
	err   error
}

func (f *fakeIssuer) Authenticate(_ context.Context, _ uuid.UUID, _ string) (*auth.Token, error) {
	return f.token, f.err
}

type testServer struct {
	handler  http.Handler
	clientID uuid.UUID
	runs     *fakeRunService
	issuer   *fakeIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clientID := uuid.New()
	runs := &fakeRunService{}
	issuer := &fakeIssuer{token: &auth.Token{
		AccessToken: "issued",
		ExpiresAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, tok string) (*auth.Claims, error) {
			if tok != testToken {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{ClientID: clientID}, nil
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := api.NewRouter(api.RouterDeps{
		Auth:          api.NewAuthHandler(issuer, logger),
		Runs:          api.NewRunHandler(runs, logger),
		Manifests:     api.NewManifestHandler(logger),
		JWTService:    jwt,
		Logger:        logger,
		DisableReqLog: true,
	})
	return &testServer{handler: h, clientID: clientID, runs: runs, issuer: issuer}
}

func (s *testServer) do(t *testing.T, method, path, contentType string, body []byte, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
