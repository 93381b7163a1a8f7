package workflow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ahora = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func propuestaEn(e estado.Estado, articulos ...model.ArticuloPropuesta) *model.Propuesta {
	return &model.Propuesta{
		ID:        uuid.New(),
		Estado:    e,
		Articulos: articulos,
	}
}

func articulo(designacion string) model.ArticuloPropuesta {
	return model.ArticuloPropuesta{ID: uuid.New(), Designacion: designacion, Cantidad: 10}
}

func pedir(p *model.Propuesta, a estado.Estado, c *Captura) (*Plan, error) {
	return Planificar(p, Peticion{Destino: a, Captura: c, Actor: "ana@eppo.pt", Idioma: i18n.ES, Ahora: ahora})
}

func causa(t *testing.T, err error) error {
	t.Helper()
	var werr *Error
	require.True(t, errors.As(err, &werr), "expected *workflow.Error, got %v", err)
	return werr.Causa
}

func TestValidar(t *testing.T) {
	dejoEnviada := model.Historial{
		historial.CambioEstado(estado.PropuestaEnCurso, estado.PropuestaEnviada, "", "ana", ahora),
		historial.CambioEstado(estado.PropuestaEnviada, estado.FollowUp, "", "ana", ahora),
	}

	tests := []struct {
		name  string
		de    estado.Estado
		a     estado.Estado
		h     model.Historial
		causa error
	}{
		{"envio inicial", estado.PropuestaEnCurso, estado.PropuestaEnviada, nil, nil},
		{"salto directo a follow-up", estado.PropuestaEnCurso, estado.FollowUp, nil, nil},
		{"volver a en curso", estado.FollowUp, estado.PropuestaEnCurso, dejoEnviada, ErrEstadoAbandonado},
		{"volver a enviada", estado.FollowUp, estado.PropuestaEnviada, dejoEnviada, ErrEstadoAbandonado},
		{"mismo estado", estado.FollowUp, estado.FollowUp, dejoEnviada, ErrMismoEstado},
		{"desde concluida", estado.EncomendaConcluida, estado.FollowUp, nil, ErrEstadoTerminal},
		{"desde rechazada", estado.Rejeitada, estado.PropuestaEnEdicion, nil, ErrEstadoTerminal},
		{"edicion a follow-up", estado.PropuestaEnEdicion, estado.FollowUp, dejoEnviada, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validar(tc.de, tc.a, tc.h)
			if tc.causa == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.causa)
		})
	}

	assert.ErrorIs(t, Validar(estado.FollowUp, estado.Estado("muestra_pedida"), nil), estado.ErrDesconocido)
}

func TestDisponiblesExcludesAbandonedStates(t *testing.T) {
	h := model.Historial{historial.CambioEstado(estado.PropuestaEnviada, estado.FollowUp, "", "ana", ahora)}
	disp := Disponibles(estado.FollowUp, h)
	assert.NotContains(t, disp, estado.PropuestaEnviada)
	assert.NotContains(t, disp, estado.PropuestaEnCurso)
	assert.NotContains(t, disp, estado.FollowUp)
	assert.Contains(t, disp, estado.Rejeitada)
	assert.Empty(t, Disponibles(estado.Rejeitada, nil))
}

func TestPlanNamesBothLabels(t *testing.T) {
	p := propuestaEn(estado.PropuestaEnCurso)
	plan, err := pedir(p, estado.PropuestaEnviada, nil)
	require.NoError(t, err)

	assert.Equal(t, historial.TipoCambioEstado, plan.Entrada.Tipo)
	assert.Contains(t, plan.Entrada.Descripcion, "Propuesta en curso")
	assert.Contains(t, plan.Entrada.Descripcion, "Propuesta enviada")
	assert.Equal(t, "propuesta_en_curso", plan.Entrada.De)
	assert.Equal(t, "propuesta_enviada", plan.Entrada.A)
	assert.Equal(t, ahora, plan.Campos["fecha_envio_propuesta"])
}

func TestPlanFollowUpFlags(t *testing.T) {
	plan, err := pedir(propuestaEn(estado.PropuestaEnviada), estado.FollowUp, nil)
	require.NoError(t, err)
	assert.True(t, plan.SembrarFollowUp)
	v, ok := plan.Campos["webhook_15d_sent_at"]
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = plan.Campos["webhook_future_fu_sent_at"]
	assert.False(t, ok)

	plan, err = pedir(propuestaEn(estado.FollowUp), estado.AguardaDossier, nil)
	require.NoError(t, err)
	assert.False(t, plan.SembrarFollowUp)
	v, ok = plan.Campos["webhook_future_fu_sent_at"]
	assert.True(t, ok, "leaving follow_up clears the future-date flag")
	assert.Nil(t, v)
}

func TestRejeitadaRequiresReason(t *testing.T) {
	p := propuestaEn(estado.FollowUp)

	_, err := pedir(p, estado.Rejeitada, nil)
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	_, err = pedir(p, estado.Rejeitada, &Captura{Rechazo: &CapturaRechazo{}})
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	_, err = pedir(p, estado.Rejeitada, &Captura{Rechazo: &CapturaRechazo{Motivo: "caro"}})
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	_, err = pedir(p, estado.Rejeitada, &Captura{Rechazo: &CapturaRechazo{Motivo: MotivoOtro, Otro: "  "}})
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "required", werr.Campos["rechazo.otro"])

	plan, err := pedir(p, estado.Rejeitada, &Captura{Rechazo: &CapturaRechazo{Motivo: MotivoOtro, Otro: "cerró la obra"}})
	require.NoError(t, err)
	assert.Equal(t, "otro", plan.Campos["motivo_rechazo"])
	assert.Equal(t, "cerró la obra", plan.Campos["motivo_rechazo_otro"])
	assert.Contains(t, plan.Entrada.Descripcion, "Motivo: Otro: cerró la obra")
}

func TestPedidoDeEncomendaMinimalPayload(t *testing.T) {
	sinCodigo := articulo("Caneca personalizada")
	p := propuestaEn(estado.AguardaPagamento, sinCodigo)

	plan, err := pedir(p, estado.PedidoDeEncomenda, &Captura{PedidoEncomenda: &CapturaPedidoEncomenda{
		Lineas: []LineaPedido{{ArticuloID: sinCodigo.ID, Cantidad: 500}},
	}})
	require.NoError(t, err)
	require.NotNil(t, plan.Solicitud)
	require.Len(t, plan.Solicitud.Items, 1)
	assert.Equal(t, 500, plan.Solicitud.Items[0].Cantidad)
	assert.Nil(t, plan.Solicitud.Items[0].Referencia)
}

func TestPedidoDeEncomendaRejectsMissingQuantityOrItems(t *testing.T) {
	a1, a2 := articulo("A"), articulo("B")
	p := propuestaEn(estado.FollowUp, a1, a2)

	_, err := pedir(p, estado.PedidoDeEncomenda, &Captura{PedidoEncomenda: &CapturaPedidoEncomenda{
		Lineas: []LineaPedido{{ArticuloID: a1.ID}, {ArticuloID: a2.ID, Cantidad: 1}},
	}})
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	_, err = pedir(p, estado.PedidoDeEncomenda, &Captura{PedidoEncomenda: &CapturaPedidoEncomenda{
		Lineas: []LineaPedido{{ArticuloID: a1.ID, Cantidad: 3}},
	}})
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "incompleto", werr.Campos["pedido_encomenda.lineas"])
}

func TestAmostraNeedsItemsOrPhotos(t *testing.T) {
	a1 := articulo("A")
	p := propuestaEn(estado.PropuestaEnviada, a1)

	_, err := pedir(p, estado.AmostraPedida, &Captura{Amostra: &CapturaAmostra{}})
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	plan, err := pedir(p, estado.AmostraEnviada, &Captura{Amostra: &CapturaAmostra{FotoURLs: []string{"https://cdn.example.com/f.jpg"}}})
	require.NoError(t, err)
	assert.Equal(t, "enviada", plan.Amostra.Fase)
	assert.Contains(t, plan.Entrada.Descripcion, "1 foto(s)")
}

func TestDossierAtMostThreeDocuments(t *testing.T) {
	p := propuestaEn(estado.AguardaDossier)
	docs := []string{"https://x.io/1.pdf", "https://x.io/2.pdf", "https://x.io/3.pdf", "https://x.io/4.pdf"}

	_, err := pedir(p, estado.AguardaAprovacaoDossier, &Captura{Dossier: &CapturaDossier{Documentos: docs}})
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	plan, err := pedir(p, estado.AguardaAprovacaoDossier, &Captura{Dossier: &CapturaDossier{Documentos: docs[:3]}})
	require.NoError(t, err)
	assert.Len(t, plan.Dossier.Documentos, 3)
}

func TestPagamentoCapture(t *testing.T) {
	p := propuestaEn(estado.AguardaCreacionCliente)

	_, err := pedir(p, estado.AguardaPagamento, &Captura{Pagamento: &CapturaPagamento{
		NumeroCliente: "C-1", TipoCliente: "empresa", NumeroFactura: "F-9",
	}})
	assert.ErrorIs(t, err, ErrCapturaInvalida, "zero award value")

	plan, err := pedir(p, estado.AguardaPagamento, &Captura{Pagamento: &CapturaPagamento{
		NumeroCliente: "C-1", TipoCliente: "empresa", NumeroFactura: "F-9",
		ValorAdjudicacion: decimal.RequireFromString("1250.5"),
	}})
	require.NoError(t, err)
	assert.Equal(t, "F-9", plan.Campos["numero_factura"])
	assert.Contains(t, plan.Entrada.Descripcion, "1250.50")
}

func TestEncomendaRoundTripToConcluida(t *testing.T) {
	a1, a2 := articulo("A"), articulo("B")
	p := propuestaEn(estado.PedidoDeEncomenda, a1, a2)
	fecha := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)

	plan, err := pedir(p, estado.EncomendaEnCurso, &Captura{Encomenda: &CapturaEncomenda{Grupos: []GrupoEncomenda{{
		Proveedor: "ACME", NumeroEncomenda: "EC-2024-077", FechaEncomenda: fecha,
		Lineas: []LineaEncomenda{{ArticuloID: a1.ID, Cantidad: 10}},
	}}}})
	require.NoError(t, err)
	require.Len(t, plan.Encomendados, 1)
	require.Len(t, plan.Registros, 1)
	assert.Contains(t, plan.Entrada.Descripcion, "EC-2024-077")

	// apply the plan the way the repository does
	for i := range p.Articulos {
		for _, e := range plan.Encomendados {
			if p.Articulos[i].ID == e.ArticuloID {
				p.Articulos[i].Encomendado = true
				p.Articulos[i].NumeroEncomenda = &e.NumeroEncomenda
				f := e.FechaEncomenda
				p.Articulos[i].FechaEncomenda = &f
				prov := e.Proveedor
				p.Articulos[i].Proveedor = &prov
			}
		}
	}
	p.Estado = plan.A

	assert.False(t, RequiereCaptura(estado.EncomendaConcluida, p.Articulos))
	fin, err := pedir(p, estado.EncomendaConcluida, nil)
	require.NoError(t, err)
	assert.Contains(t, fin.Entrada.Descripcion, "EC-2024-077")
	assert.Contains(t, fin.Entrada.Descripcion, "2024-05-12")
	assert.Empty(t, fin.Adjudicados)
}

func TestConcluidaWithoutOrdersAsksForItems(t *testing.T) {
	a1 := articulo("A")
	p := propuestaEn(estado.AguardaPagamento, a1)

	_, err := pedir(p, estado.EncomendaConcluida, nil)
	assert.ErrorIs(t, err, ErrCapturaInvalida)

	plan, err := pedir(p, estado.EncomendaConcluida, &Captura{Conclusion: &CapturaConclusion{ArticuloIDs: []uuid.UUID{a1.ID}}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a1.ID}, plan.Adjudicados)
}

func TestEncomendaRejectsDuplicateSupplier(t *testing.T) {
	a1, a2 := articulo("A"), articulo("B")
	p := propuestaEn(estado.PedidoDeEncomenda, a1, a2)
	_, err := pedir(p, estado.EncomendaEnCurso, &Captura{Encomenda: &CapturaEncomenda{Grupos: []GrupoEncomenda{
		{Proveedor: "ACME", NumeroEncomenda: "1", FechaEncomenda: ahora, Lineas: []LineaEncomenda{{ArticuloID: a1.ID, Cantidad: 1}}},
		{Proveedor: "acme ", NumeroEncomenda: "2", FechaEncomenda: ahora, Lineas: []LineaEncomenda{{ArticuloID: a2.ID, Cantidad: 1}}},
	}}})
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "proveedor_duplicado", werr.Campos["encomenda.grupos"])
}

func TestEncomendaRejectsBlankOrderNumber(t *testing.T) {
	a1 := articulo("A")
	p := propuestaEn(estado.PedidoDeEncomenda, a1)
	_, err := pedir(p, estado.EncomendaEnCurso, &Captura{Encomenda: &CapturaEncomenda{Grupos: []GrupoEncomenda{
		{Proveedor: "ACME", NumeroEncomenda: "   ", FechaEncomenda: ahora, Lineas: []LineaEncomenda{{ArticuloID: a1.ID, Cantidad: 1}}},
	}}})
	var werr *Error
	require.ErrorAs(t, err, &werr)
	var tag string
	for k, v := range werr.Campos {
		if strings.HasSuffix(k, "numero_encomenda") {
			tag = v
		}
	}
	assert.Equal(t, "notblank", tag)
}

func TestErrorMensajeIsLocalized(t *testing.T) {
	err := Validar(estado.Rejeitada, estado.FollowUp, nil)
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Contains(t, werr.Mensaje(i18n.EN), "Rejected")
	assert.Contains(t, werr.Mensaje(i18n.PT), "Rejeitada")
	assert.Equal(t, ErrEstadoTerminal, causa(t, err))
}
