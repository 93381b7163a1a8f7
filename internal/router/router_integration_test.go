//go:build integration

package router

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idioma", "es")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin access token
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("propuestas_test"),
		tcPostgres.WithUsername("propuestas"),
		tcPostgres.WithPassword("propuestas"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                  "test",
		DefaultLang:          "es",
		RateLimit:            1000,
		JWTSecret:            "integration-secret-with-enough-entropy",
		JWTExpirationHours:   8,
		JWTRefreshHours:      24,
		SessionCheckTimeout:  3 * time.Second,
		RoleCacheTTL:         time.Minute,
		PendingTransitionTTL: 5 * time.Minute,
		DatabaseURL:          pgURL,
		RedisURL:             rdURL,
		PDFStoragePath:       t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &model.Usuario{ID: uuid.New(), Email: "admin@e2e.test", Nombre: "Admin E2E", PasswordHash: string(hash), Activo: true}
	require.NoError(t, repository.NewUsuarioRepository(db).Create(ctx, admin, "admin"))

	app := New(ctx, cfg, db, rdb, Infra{
		Webhook:    infra.NewWebhookClient("", infra.NewCircuitBreaker(infra.DefaultCBConfig())),
		Dispatcher: worker.NewDispatcher(rdb),
	})
	srv := httptest.NewServer(app.Engine)
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/v1/auth/sign-in",
		jsonBody(t, map[string]string{"email": "admin@e2e.test", "password": "secreto123"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ses dto.SesionResponse
	decodeJSON(t, resp, &ses)
	require.NotEmpty(t, ses.AccessToken)
	require.Equal(t, "admin", ses.User.Rol)

	return &testEnv{server: srv, token: ses.AccessToken}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_CicloDePropuesta(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Create
	resp := do(t, env.server, http.MethodPost, "/v1/propuestas", jsonBody(t, map[string]any{
		"nombre_cliente": "Hotel Sol",
		"articulos": []map[string]any{
			{"designacion": "Toalla baño", "cantidad": 100, "precio_unitario": "3.50"},
		},
	}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.PropuestaResponse
	decodeJSON(t, resp, &p)
	assert.Equal(t, "propuesta_en_curso", p.Estado.Codigo)
	base := "/v1/propuestas/" + p.ID

	// 2. Plain transition, one history entry
	resp = do(t, env.server, http.MethodPost, base+"/transiciones",
		jsonBody(t, map[string]any{"destino": "propuesta_enviada"}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr dto.TransicionResponse
	decodeJSON(t, resp, &tr)
	require.NotNil(t, tr.Propuesta)
	assert.Equal(t, "propuesta_enviada", tr.Propuesta.Estado.Codigo)
	assert.Len(t, tr.Propuesta.Historial, 1)

	// 3. Rejection without a reason is refused and nothing is written
	resp = do(t, env.server, http.MethodPut, base+"/estado",
		jsonBody(t, map[string]any{"destino": "rejeitada", "captura": map[string]any{}}), env.token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, base, nil, env.token)
	decodeJSON(t, resp, &p)
	assert.Equal(t, "propuesta_enviada", p.Estado.Codigo)
	assert.Len(t, p.Historial, 1)

	// 4. Two-step rejection: pending token, then confirm
	resp = do(t, env.server, http.MethodPost, base+"/transiciones",
		jsonBody(t, map[string]any{"destino": "rejeitada"}), env.token)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	decodeJSON(t, resp, &tr)
	require.NotNil(t, tr.Pendiente)

	resp = do(t, env.server, http.MethodPost, "/v1/transiciones/"+tr.Pendiente.Token+"/confirmar",
		jsonBody(t, map[string]any{"captura": map[string]any{"rechazo": map[string]any{"motivo": "precio"}}}), env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &p)
	assert.Equal(t, "rejeitada", p.Estado.Codigo)
	assert.Len(t, p.Historial, 2)

	// the token is single use
	resp = do(t, env.server, http.MethodDelete, "/v1/transiciones/"+tr.Pendiente.Token, nil, env.token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// 5. Terminal status admits no further move
	resp = do(t, env.server, http.MethodPost, base+"/transiciones",
		jsonBody(t, map[string]any{"destino": "follow_up"}), env.token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var apiErr struct {
		Codigo string `json:"codigo"`
	}
	decodeJSON(t, resp, &apiErr)
	assert.Equal(t, "estado_terminal", apiErr.Codigo)
}

func TestE2E_SesionYSalud(t *testing.T) {
	env := setupTestEnv(t)

	resp := do(t, env.server, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	decodeJSON(t, resp, &health)
	assert.Equal(t, "connected", health["db"])
	assert.Equal(t, "connected", health["redis"])

	resp = do(t, env.server, http.MethodGet, "/v1/propuestas", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodPost, "/v1/auth/sign-out", nil, env.token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, http.MethodGet, "/v1/auth/me", nil, env.token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "revoked session")
	resp.Body.Close()
}
