package service

import (
	"context"
	"errors"
	"testing"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/alerta"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertaFixture struct {
	svc       *alertaService
	props     *stubPropuestaRepo
	followUps *stubFollowUpRepo
	webhook   *stubWebhook
	locker    *stubLocker
	cola      *stubCola
}

func newAlertaFixture(cfg *config.Config) *alertaFixture {
	if cfg == nil {
		cfg = &config.Config{DefaultLang: "es"}
	}
	f := &alertaFixture{
		props:     newStubPropuestaRepo(),
		followUps: newStubFollowUpRepo(),
		webhook:   &stubWebhook{},
		locker:    newStubLocker(),
		cola:      &stubCola{},
	}
	f.svc = NewAlertaService(f.props, f.followUps, f.webhook, f.locker, f.cola, cfg).(*alertaService)
	f.svc.now = reloj
	return f
}

// enviadaHace stores a sent proposal whose send date is dias days ago.
func enviadaHace(f *alertaFixture, a Actor, dias int) *model.Propuesta {
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnviada)
	envio := fechaFija.AddDate(0, 0, -dias)
	p.FechaEnvioPropuesta = &envio
	p.NombreResponsable = strPtr("Carlos")
	return p
}

func TestAlertaDe16DiasNotificaUnaSolaVez(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 16)
	ctx := context.Background()

	ids, err := f.svc.Pendientes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p.ID}, ids)

	resp, err := f.svc.NotificarPropuesta(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, resp.Enviada)
	assert.Equal(t, string(alerta.Tipo15Dias), resp.Tipo)

	require.Equal(t, 1, f.webhook.total())
	enviado := f.webhook.enviados[0]
	assert.Equal(t, 1001, enviado.NumeroPropuesta)
	assert.Equal(t, "Hotel Sol", enviado.NombreCliente)
	assert.Equal(t, "Carlos", enviado.NombreResponsable)
	assert.Equal(t, "15_dias", enviado.TipoAlerta)
	require.NotNil(t, f.props.get(p.ID).Webhook15dSentAt)

	// the cron and a manual retry both stop here
	_, err = f.svc.NotificarPropuesta(ctx, p.ID)
	assert.ErrorIs(t, err, ErrYaNotificada)
	ids, err = f.svc.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 1, f.webhook.total())
}

func TestAlertaAntesDe15DiasNoNotifica(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 14)

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrSinAlerta)
	assert.Equal(t, 0, f.webhook.total())
}

func TestFollowUpFuturoSilenciaLaAlerta(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 40)
	futuro := fechaFija.AddDate(0, 0, 3)
	f.followUps.fus[p.ID] = []model.FollowUp{{ID: uuid.New(), PropuestaID: p.ID, FechaRealizado: fechaFija, FechaFuturoFollowUp: &futuro}}

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrSinAlerta)
}

func TestWebhookSinOKNoMarcaLaAlerta(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 20)
	f.webhook.err = errors.New("webhook: respuesta sin ok=true")

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotificacionFallida)
	assert.Nil(t, f.props.get(p.ID).Webhook15dSentAt)
	assert.Empty(t, f.locker.tomados, "lock released after failure")

	f.webhook.err = nil
	_, err = f.svc.NotificarPropuesta(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, f.props.get(p.ID).Webhook15dSentAt)
}

// Two senders read the proposal before either stamped it; the lock is gone
// by the time the second one posts, so only the flag claim stops it.
func TestSegundoRemitenteConCopiaViejaNoReenvia(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 20)
	primera, segunda := *p, *p
	ctx := context.Background()

	_, err := f.svc.notificar(ctx, &primera, i18n.ES)
	require.NoError(t, err)
	_, err = f.svc.notificar(ctx, &segunda, i18n.ES)
	assert.ErrorIs(t, err, ErrYaNotificada)
	assert.Equal(t, 1, f.webhook.total())
	assert.NotNil(t, f.props.get(p.ID).Webhook15dSentAt)
}

func TestReintentoTrasMarcaConfirmadaNoReenvia(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 20)
	vieja := *p
	ctx := context.Background()

	_, err := f.svc.NotificarPropuesta(ctx, p.ID)
	require.NoError(t, err)
	// a worker retry still holding the pre-send copy
	_, err = f.svc.notificar(ctx, &vieja, i18n.ES)
	assert.ErrorIs(t, err, ErrYaNotificada)
	assert.Equal(t, 1, f.webhook.total())
}

func TestNotificarSinFollowUpsFalla(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 20)
	f.followUps.err = errStore

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	assert.ErrorIs(t, err, errStore)
	assert.Equal(t, 0, f.webhook.total())
}

func TestNotificacionEnCurso(t *testing.T) {
	f := newAlertaFixture(nil)
	p := enviadaHace(f, actorComercial(), 20)
	f.locker.tomados["alerta:"+p.ID.String()+":15_dias"] = true

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotificacionEnCurso)
	assert.Equal(t, 0, f.webhook.total())
}

func TestFollowUpVencidoNotificaTipoFuturo(t *testing.T) {
	f := newAlertaFixture(nil)
	p := nuevaPropuesta(f.props, actorComercial(), estado.FollowUp)
	vencido := fechaFija.AddDate(0, 0, -2)
	f.followUps.fus[p.ID] = []model.FollowUp{{ID: uuid.New(), PropuestaID: p.ID, FechaRealizado: fechaFija.AddDate(0, 0, -9), FechaFuturoFollowUp: &vencido}}

	resp, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(alerta.TipoFollowUpFuturo), resp.Tipo)
	assert.NotNil(t, f.props.get(p.ID).WebhookFutureFUSentAt)
	assert.Nil(t, f.props.get(p.ID).Webhook15dSentAt)
}

func TestCopiaPorCorreoSeEncola(t *testing.T) {
	f := newAlertaFixture(&config.Config{DefaultLang: "pt", AlertEmailTo: "ventas@example.com, jefe@example.com"})
	p := enviadaHace(f, actorComercial(), 16)

	_, err := f.svc.NotificarPropuesta(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, f.cola.jobs, 1)
	job, ok := f.cola.jobs[0].(dto.CorreoJob)
	require.True(t, ok)
	assert.Equal(t, []string{"ventas@example.com", "jefe@example.com"}, job.Para)
	assert.Contains(t, job.Asunto, "1001")
	assert.Contains(t, job.Cuerpo, i18n.T(i18n.PT, "alerta_15_dias", 16))
}

func TestListarAlertasDelComercial(t *testing.T) {
	f := newAlertaFixture(nil)
	ana := actorComercial()
	otro := actorComercial()
	mia := enviadaHace(f, ana, 16)
	enviadaHace(f, otro, 30)
	enviadaHace(f, ana, 3)

	resp, err := f.svc.Listar(context.Background(), ana)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, mia.ID.String(), resp.Data[0].Propuesta.ID)
	assert.Equal(t, 16, resp.Data[0].Alerta.Dias)
	assert.Nil(t, resp.Data[0].Notificada)

	admin := Actor{UsuarioID: uuid.New(), Admin: true, Idioma: i18n.EN}
	resp, err = f.svc.Listar(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
}

func TestListarAlertasDegradaSinFollowUps(t *testing.T) {
	f := newAlertaFixture(nil)
	a := actorComercial()
	enviadaHace(f, a, 16)
	f.followUps.err = errStore

	resp, err := f.svc.Listar(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}
