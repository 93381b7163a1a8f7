package service

import (
	"context"
	"testing"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/historial"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propuestaFixture struct {
	svc       *propuestaService
	props     *stubPropuestaRepo
	followUps *stubFollowUpRepo
	productos *stubProductoRepo
}

func newPropuestaFixture(t *testing.T) *propuestaFixture {
	f := &propuestaFixture{
		props:     newStubPropuestaRepo(),
		followUps: newStubFollowUpRepo(),
		productos: &stubProductoRepo{},
	}
	svc := NewPropuestaService(f.props, &stubArticuloRepo{props: f.props}, newStubCapturaRepo(), f.followUps,
		f.productos, &config.Config{PDFStoragePath: t.TempDir()})
	f.svc = svc.(*propuestaService)
	f.svc.now = reloj
	return f
}

func TestCrearPropuesta(t *testing.T) {
	f := newPropuestaFixture(t)
	proveedorID := uuid.New()
	f.productos.productos = []model.Producto{{
		ID:          uuid.New(),
		CodigoPHC:   "PHC-001",
		Nombre:      "Toalla 50x100",
		ProveedorID: &proveedorID,
		Proveedor:   &model.Proveedor{ID: proveedorID, Nombre: "Textil Norte"},
	}}
	a := actorComercial()

	resp, err := f.svc.Crear(context.Background(), a, dto.CrearPropuestaRequest{
		NombreCliente: "  Hotel Mar ",
		Articulos: []dto.ArticuloInput{
			{CodigoProducto: strPtr("PHC-001"), Designacion: "Toalla", Cantidad: 20, PrecioUnitario: decimal.RequireFromString("2.5")},
			{Designacion: "Bata bordada", Cantidad: 2, PrecioUnitario: decimal.RequireFromString("30"), Personalizado: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, resp.NumeroPropuesta)
	assert.Equal(t, "Hotel Mar", resp.NombreCliente)
	assert.Equal(t, a.Nombre, resp.NombreComercial)
	assert.Equal(t, "propuesta_en_curso", resp.Estado.Codigo)
	assert.Empty(t, resp.Historial, "creation is not logged")
	assert.True(t, resp.ValorTotal.Equal(decimal.NewFromInt(110)))

	require.Len(t, resp.Articulos, 2)
	require.NotNil(t, resp.Articulos[0].Proveedor)
	assert.Equal(t, "Textil Norte", *resp.Articulos[0].Proveedor)
	assert.NotNil(t, resp.Articulos[0].ProductoID)
	assert.Nil(t, resp.Articulos[1].ProductoID)

	guardada := f.props.get(uuid.MustParse(resp.ID))
	require.NotNil(t, guardada)
	assert.Equal(t, a.UsuarioID, *guardada.ComercialID)
	assert.Len(t, guardada.Articulos, 2)
}

func TestObtenerPropuestaAjena(t *testing.T) {
	f := newPropuestaFixture(t)
	p := nuevaPropuesta(f.props, actorComercial(), estado.PropuestaEnviada)

	_, err := f.svc.Obtener(context.Background(), actorComercial(), p.ID)
	assert.ErrorIs(t, err, ErrPropuestaNoEncontrada)

	_, err = f.svc.Obtener(context.Background(), actorComercial(), uuid.New())
	assert.ErrorIs(t, err, ErrPropuestaNoEncontrada)
}

func TestDetalleDegradaSinFollowUps(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnviada)
	envio := fechaFija.AddDate(0, 0, -20)
	p.FechaEnvioPropuesta = &envio

	resp, err := f.svc.Obtener(context.Background(), a, p.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Alerta)
	assert.Equal(t, 20, resp.Alerta.Dias)

	f.followUps.err = errStore
	resp, err = f.svc.Obtener(context.Background(), a, p.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.FollowUps)
	assert.NotEmpty(t, resp.Disponibles)
}

func TestActualizarRegistraCadaCampo(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnCurso)

	resp, err := f.svc.Actualizar(context.Background(), a, p.ID, dto.ActualizarPropuestaRequest{
		NombreCliente: strPtr("Hotel Sol & Spa"),
		Pais:          strPtr("Portugal"),
		AreaNegocio:   strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hotel Sol & Spa", resp.NombreCliente)

	h := f.props.get(p.ID).Historial
	require.Len(t, h, 1)
	assert.Equal(t, historial.TipoEdicion, h[0].Tipo)
	assert.Contains(t, h[0].Descripcion, "Cliente: Hotel Sol → Hotel Sol & Spa")
	assert.Contains(t, h[0].Descripcion, "País: (vacío) → Portugal")
	assert.NotContains(t, h[0].Descripcion, "Área", "unchanged empty field is not logged")

	require.Len(t, resp.Historial, 1)
	assert.Len(t, resp.Historial[0].Puntos, 2)
}

func TestActualizarSinCambiosNoEscribe(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnCurso)

	_, err := f.svc.Actualizar(context.Background(), a, p.ID, dto.ActualizarPropuestaRequest{NombreCliente: strPtr("Hotel Sol")})
	require.NoError(t, err)
	assert.Equal(t, 0, f.props.escrituras)
}

func TestComentar(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.FollowUp)

	resp, err := f.svc.Comentar(context.Background(), a, p.ID, dto.ComentarioRequest{Texto: " Cliente pide descuento "})
	require.NoError(t, err)
	require.Len(t, resp.Historial, 1)
	assert.Equal(t, historial.TipoComentario, resp.Historial[0].Tipo)
	assert.Equal(t, "Cliente pide descuento", resp.Historial[0].Texto)
}

func TestEliminarSoloAdmin(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnCurso)

	assert.ErrorIs(t, f.svc.Eliminar(context.Background(), a, p.ID), ErrPermisos)
	assert.NotNil(t, f.props.get(p.ID))

	admin := Actor{UsuarioID: uuid.New(), Admin: true, Idioma: i18n.ES}
	require.NoError(t, f.svc.Eliminar(context.Background(), admin, p.ID))
	assert.Nil(t, f.props.get(p.ID))
	assert.ErrorIs(t, f.svc.Eliminar(context.Background(), admin, p.ID), ErrPropuestaNoEncontrada)
}

func TestMarcarEncomendados(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PedidoDeEncomenda)
	fecha := time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC)

	resp, err := f.svc.MarcarEncomendados(context.Background(), a, p.ID, dto.MarcarEncomendadosRequest{
		ArticuloIDs:     []string{p.Articulos[0].ID.String()},
		NumeroEncomenda: "ENC-9",
		FechaEncomenda:  fecha,
	})
	require.NoError(t, err)
	assert.True(t, resp.Articulos[0].Encomendado)
	assert.Equal(t, "ENC-9", *resp.Articulos[0].NumeroEncomenda)
	assert.False(t, resp.Articulos[1].Encomendado)

	h := f.props.get(p.ID).Historial
	require.Len(t, h, 1)
	assert.Equal(t, historial.TipoArticulosEncomendados, h[0].Tipo)
	assert.Contains(t, h[0].Descripcion, "ENC-9")
	assert.Contains(t, h[0].Descripcion, "2024-06-19")

	_, err = f.svc.MarcarEncomendados(context.Background(), a, p.ID, dto.MarcarEncomendadosRequest{
		ArticuloIDs:     []string{uuid.NewString()},
		NumeroEncomenda: "ENC-10",
		FechaEncomenda:  fecha,
	})
	assert.ErrorIs(t, err, ErrArticuloNoEncontrado)
}

func TestMarcarEncomendadosSinNumeroNoEscribe(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PedidoDeEncomenda)

	_, err := f.svc.MarcarEncomendados(context.Background(), a, p.ID, dto.MarcarEncomendadosRequest{
		ArticuloIDs:     []string{p.Articulos[0].ID.String()},
		NumeroEncomenda: " \t ",
		FechaEncomenda:  time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrNumeroEncomendaVacio)
	assert.False(t, f.props.get(p.ID).Articulos[0].Encomendado)
	assert.Empty(t, f.props.get(p.ID).Historial)
}

func TestFijarFechaEntregaMuestraElCambio(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.EncomendaEnCurso)
	anterior := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	p.Articulos[1].FechaPrevistaEntrega = &anterior

	_, err := f.svc.FijarFechaEntrega(context.Background(), a, p.ID, dto.FechaEntregaRequest{
		ArticuloIDs:          []string{p.Articulos[0].ID.String(), p.Articulos[1].ID.String()},
		FechaPrevistaEntrega: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	h := f.props.get(p.ID).Historial
	require.Len(t, h, 1)
	assert.Contains(t, h[0].Descripcion, "Toalla: entrega prevista 2024-07-10")
	assert.Contains(t, h[0].Descripcion, "Albornoz: entrega prevista 2024-07-01 → 2024-07-10")
}

func TestListarConFiltroDeAlerta(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	vieja := nuevaPropuesta(f.props, a, estado.PropuestaEnviada)
	envio := fechaFija.AddDate(0, 0, -18)
	vieja.FechaEnvioPropuesta = &envio
	reciente := nuevaPropuesta(f.props, a, estado.PropuestaEnviada)
	hoy := fechaFija
	reciente.FechaEnvioPropuesta = &hoy
	nuevaPropuesta(f.props, actorComercial(), estado.PropuestaEnviada)

	todas, err := f.svc.Listar(context.Background(), a, dto.PropuestaFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, todas.Total)

	conAlerta, err := f.svc.Listar(context.Background(), a, dto.PropuestaFilter{Alerta: true, Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 1, conAlerta.Total)
	assert.Equal(t, vieja.ID.String(), conAlerta.Data[0].ID)
	require.NotNil(t, conAlerta.Data[0].Alerta)
	assert.Equal(t, "15_dias", conAlerta.Data[0].Alerta.Tipo)
}

func TestExportarYResumen(t *testing.T) {
	f := newPropuestaFixture(t)
	a := actorComercial()
	p := nuevaPropuesta(f.props, a, estado.PropuestaEnviada)

	xlsx, err := f.svc.ExportarXLSX(context.Background(), a, dto.PropuestaFilter{})
	require.NoError(t, err)
	defer xlsx.Close()
	cliente, err := xlsx.GetCellValue(i18n.T(i18n.ES, "doc_propuesta"), "B2")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Sol", cliente)

	path, err := f.svc.ResumenPDF(context.Background(), a, p.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
