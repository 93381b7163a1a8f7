package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { backoffBase = time.Millisecond }

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubNotificador struct {
	mu       sync.Mutex
	llamadas int
	errs     []error // one per call; nil once exhausted
}

func (s *stubNotificador) NotificarPropuesta(_ context.Context, _ uuid.UUID) (*dto.NotificarResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llamadas++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dto.NotificarResponse{Enviada: true, Tipo: "15_dias"}, nil
}

type stubMailer struct {
	configurado bool
	fallos      int
	enviados    [][]string
}

func (m *stubMailer) Configurado() bool { return m.configurado }

func (m *stubMailer) Enviar(to []string, _, _, _ string) error {
	if m.fallos > 0 {
		m.fallos--
		return errors.New("smtp: 421 try later")
	}
	m.enviados = append(m.enviados, to)
	return nil
}

var _ Enviador = (*infra.Mailer)(nil)

type stubPendientes struct {
	ids []uuid.UUID
	err error
}

func (s *stubPendientes) Pendientes(context.Context) ([]uuid.UUID, error) { return s.ids, s.err }

type stubColaAlertas struct {
	encoladas []uuid.UUID
	falla     map[uuid.UUID]bool
}

func (c *stubColaAlertas) EnqueueAlerta(_ context.Context, id uuid.UUID) error {
	if c.falla[id] {
		return fmt.Errorf("redis: connection refused")
	}
	c.encoladas = append(c.encoladas, id)
	return nil
}

var (
	_ ColaAlertas       = (*Dispatcher)(nil)
	_ AlertasPendientes = (service.AlertaService)(nil)
	_ Notificador       = (service.AlertaService)(nil)
)

func payload(t *testing.T, v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// ── Alert worker ──────────────────────────────────────────────────────────────

func TestAlertaWorkerReintentaFallosDeEnvio(t *testing.T) {
	svc := &stubNotificador{errs: []error{
		fmt.Errorf("%w: timeout", service.ErrNotificacionFallida),
		nil,
	}}
	w := NewAlertaWorker(svc)

	err := w.Process(context.Background(), payload(t, dto.AlertaJob{PropuestaID: uuid.NewString()}))
	require.NoError(t, err)
	assert.Equal(t, 2, svc.llamadas)
}

func TestAlertaWorkerTerminaSinReintentar(t *testing.T) {
	for _, e := range []error{service.ErrYaNotificada, service.ErrSinAlerta, service.ErrNotificacionEnCurso} {
		svc := &stubNotificador{errs: []error{e}}
		err := NewAlertaWorker(svc).Process(context.Background(), payload(t, dto.AlertaJob{PropuestaID: uuid.NewString()}))
		assert.NoError(t, err, e.Error())
		assert.Equal(t, 1, svc.llamadas, e.Error())
	}
}

func TestAlertaWorkerAgotaReintentos(t *testing.T) {
	fallo := fmt.Errorf("%w: 500", service.ErrNotificacionFallida)
	svc := &stubNotificador{errs: []error{fallo, fallo, fallo}}

	err := NewAlertaWorker(svc).Process(context.Background(), payload(t, dto.AlertaJob{PropuestaID: uuid.NewString()}))
	assert.ErrorIs(t, err, service.ErrNotificacionFallida)
	assert.Equal(t, maxAttempts, svc.llamadas)
}

func TestAlertaWorkerPayloadInvalido(t *testing.T) {
	svc := &stubNotificador{}
	err := NewAlertaWorker(svc).Process(context.Background(), payload(t, dto.AlertaJob{PropuestaID: "no-uuid"}))
	assert.Error(t, err)
	assert.Zero(t, svc.llamadas)
}

// ── Email worker ──────────────────────────────────────────────────────────────

func TestEmailWorker(t *testing.T) {
	m := &stubMailer{configurado: true, fallos: 1}
	job := dto.CorreoJob{Para: []string{"ventas@example.com"}, Asunto: "Alerta 1001", Cuerpo: "..."}

	require.NoError(t, NewEmailWorker(m).Process(context.Background(), payload(t, job)))
	assert.Equal(t, [][]string{{"ventas@example.com"}}, m.enviados)

	sinSMTP := &stubMailer{}
	require.NoError(t, NewEmailWorker(sinSMTP).Process(context.Background(), payload(t, job)))
	assert.Empty(t, sinSMTP.enviados)

	caido := &stubMailer{configurado: true, fallos: maxAttempts}
	assert.Error(t, NewEmailWorker(caido).Process(context.Background(), payload(t, job)))
}

// ── Cron ──────────────────────────────────────────────────────────────────────

func TestProcesarAlertasEncolaCadaPendiente(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	cola := &stubColaAlertas{falla: map[uuid.UUID]bool{b: true}}
	cfg := AlertaCronConfig{Alertas: &stubPendientes{ids: []uuid.UUID{a, b, c}}, Cola: cola}

	assert.Equal(t, 2, procesarAlertas(context.Background(), cfg))
	assert.Equal(t, []uuid.UUID{a, c}, cola.encoladas)
}

func TestProcesarAlertasConBreakerAbierto(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = cb.Execute(func() error { return errors.New("boom") })
	require.Equal(t, infra.CBOpen, cb.State())

	cola := &stubColaAlertas{}
	cfg := AlertaCronConfig{Alertas: &stubPendientes{ids: []uuid.UUID{uuid.New()}}, Cola: cola, CB: cb}
	assert.Zero(t, procesarAlertas(context.Background(), cfg))
	assert.Empty(t, cola.encoladas)
}

func TestProcesarAlertasErrorDeConsulta(t *testing.T) {
	cola := &stubColaAlertas{}
	cfg := AlertaCronConfig{Alertas: &stubPendientes{err: errors.New("db down")}, Cola: cola}
	assert.Zero(t, procesarAlertas(context.Background(), cfg))
}

func TestWithRetryRespetaElContexto(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 5, func(int) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
