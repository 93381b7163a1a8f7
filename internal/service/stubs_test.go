package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Propuestas ────────────────────────────────────────────────────────────────

// stubPropuestaRepo is an in-memory PropuestaRepository. Reads return copies
// so a service never sees its own unsaved changes. escrituras counts every
// successful write.
type stubPropuestaRepo struct {
	mu         sync.Mutex
	propuestas map[uuid.UUID]*model.Propuesta
	numero     int
	escrituras int
}

func newStubPropuestaRepo() *stubPropuestaRepo {
	return &stubPropuestaRepo{propuestas: make(map[uuid.UUID]*model.Propuesta), numero: 999}
}

func (r *stubPropuestaRepo) put(p *model.Propuesta) *model.Propuesta {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.propuestas[p.ID] = p
	return p
}

// get returns the stored proposal itself, for assertions.
func (r *stubPropuestaRepo) get(id uuid.UUID) *model.Propuesta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.propuestas[id]
}

func copiar(p *model.Propuesta) *model.Propuesta {
	c := *p
	c.Historial = append(model.Historial{}, p.Historial...)
	c.Articulos = append([]model.ArticuloPropuesta{}, p.Articulos...)
	return &c
}

func (r *stubPropuestaRepo) Create(_ context.Context, _ *gorm.DB, p *model.Propuesta) error {
	r.put(copiar(p))
	r.escrituras++
	return nil
}

func (r *stubPropuestaRepo) NextNumero(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numero++
	return r.numero, nil
}

func (r *stubPropuestaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Propuesta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.propuestas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copiar(p), nil
}

func (r *stubPropuestaRepo) List(_ context.Context, filter dto.PropuestaFilter, comercialID *uuid.UUID) ([]model.Propuesta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Propuesta
	for _, p := range r.propuestas {
		if comercialID != nil && (p.ComercialID == nil || *p.ComercialID != *comercialID) {
			continue
		}
		if filter.Estado != "" && string(p.Estado) != filter.Estado {
			continue
		}
		out = append(out, *copiar(p))
	}
	return out, int64(len(out)), nil
}

func (r *stubPropuestaRepo) ListByEstados(_ context.Context, estados []estado.Estado, comercialID *uuid.UUID) ([]model.Propuesta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incluidos := map[estado.Estado]bool{}
	for _, e := range estados {
		incluidos[e] = true
	}
	var out []model.Propuesta
	for _, p := range r.propuestas {
		if !incluidos[p.Estado] {
			continue
		}
		if comercialID != nil && (p.ComercialID == nil || *p.ComercialID != *comercialID) {
			continue
		}
		out = append(out, *copiar(p))
	}
	return out, nil
}

func (r *stubPropuestaRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.propuestas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.propuestas, id)
	r.escrituras++
	return nil
}

func (r *stubPropuestaRepo) AplicarTransicion(_ context.Context, _ *gorm.DB, id uuid.UUID, de, a estado.Estado, campos map[string]interface{}, entrada model.EntradaHistorial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.propuestas[id]
	if !ok || p.Estado != de {
		return repository.ErrConflicto
	}
	p.Estado = a
	aplicarCampos(p, campos)
	p.Historial = append(p.Historial, entrada)
	r.escrituras++
	return nil
}

func (r *stubPropuestaRepo) AgregarHistorial(_ context.Context, _ *gorm.DB, id uuid.UUID, campos map[string]interface{}, entrada model.EntradaHistorial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.propuestas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	aplicarCampos(p, campos)
	p.Historial = append(p.Historial, entrada)
	r.escrituras++
	return nil
}

func (r *stubPropuestaRepo) MarcarAlertaEnviada(_ context.Context, id uuid.UUID, columna string, cuando time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.propuestas[id]
	if !ok {
		return false, nil
	}
	flag := &p.Webhook15dSentAt
	if columna == "webhook_future_fu_sent_at" {
		flag = &p.WebhookFutureFUSentAt
	}
	if *flag != nil {
		return false, nil
	}
	*flag = &cuando
	r.escrituras++
	return true, nil
}

func (r *stubPropuestaRepo) DesmarcarAlerta(_ context.Context, id uuid.UUID, columna string, cuando time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.propuestas[id]
	if !ok {
		return nil
	}
	flag := &p.Webhook15dSentAt
	if columna == "webhook_future_fu_sent_at" {
		flag = &p.WebhookFutureFUSentAt
	}
	if *flag != nil && (*flag).Equal(cuando) {
		*flag = nil
	}
	return nil
}

func (r *stubPropuestaRepo) LimpiarAlerta(_ context.Context, _ *gorm.DB, id uuid.UUID, columna string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.propuestas[id]; ok {
		aplicarCampos(p, map[string]interface{}{columna: nil})
	}
	return nil
}

func (r *stubPropuestaRepo) DB() *gorm.DB { return nil }

var _ repository.PropuestaRepository = (*stubPropuestaRepo)(nil)

// aplicarCampos mirrors the column updates the services issue.
func aplicarCampos(p *model.Propuesta, campos map[string]interface{}) {
	str := func(v interface{}) *string {
		if s, ok := v.(string); ok {
			return &s
		}
		return nil
	}
	for k, v := range campos {
		switch k {
		case "fecha_envio_propuesta":
			t := v.(time.Time)
			p.FechaEnvioPropuesta = &t
		case "webhook_15d_sent_at":
			p.Webhook15dSentAt = nil
		case "webhook_future_fu_sent_at":
			p.WebhookFutureFUSentAt = nil
		case "nombre_cliente":
			p.NombreCliente = v.(string)
		case "nombre_comercial":
			p.NombreComercial = v.(string)
		case "nombre_responsable":
			p.NombreResponsable = str(v)
		case "pais":
			p.Pais = str(v)
		case "area_negocio":
			p.AreaNegocio = str(v)
		case "numero_cliente":
			p.NumeroCliente = str(v)
		case "tipo_cliente":
			p.TipoCliente = str(v)
		case "comentarios":
			p.Comentarios = str(v)
		case "numero_factura":
			p.NumeroFactura = str(v)
		case "valor_adjudicacion":
			d := v.(decimal.Decimal)
			p.ValorAdjudicacion = &d
		case "motivo_rechazo":
			p.MotivoRechazo = str(v)
		case "motivo_rechazo_otro":
			p.MotivoRechazoOtro = str(v)
		}
	}
}

// ── Artículos ─────────────────────────────────────────────────────────────────

// stubArticuloRepo writes into the proposals held by props.
type stubArticuloRepo struct {
	props *stubPropuestaRepo
}

func (r *stubArticuloRepo) CreateBatch(_ context.Context, _ *gorm.DB, items []model.ArticuloPropuesta) error {
	r.props.mu.Lock()
	defer r.props.mu.Unlock()
	for _, it := range items {
		p, ok := r.props.propuestas[it.PropuestaID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		p.Articulos = append(p.Articulos, it)
	}
	return nil
}

func (r *stubArticuloRepo) cada(propuestaID uuid.UUID, ids []uuid.UUID, fn func(a *model.ArticuloPropuesta)) error {
	r.props.mu.Lock()
	defer r.props.mu.Unlock()
	p, ok := r.props.propuestas[propuestaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, id := range ids {
		encontrado := false
		for i := range p.Articulos {
			if p.Articulos[i].ID == id {
				fn(&p.Articulos[i])
				encontrado = true
			}
		}
		if !encontrado {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *stubArticuloRepo) MarcarEncomendados(_ context.Context, _ *gorm.DB, propuestaID uuid.UUID, enc []repository.Encomienda) error {
	for _, e := range enc {
		e := e
		err := r.cada(propuestaID, []uuid.UUID{e.ArticuloID}, func(a *model.ArticuloPropuesta) {
			numero, fecha := e.NumeroEncomenda, e.FechaEncomenda
			a.Encomendado = true
			a.NumeroEncomenda = &numero
			a.FechaEncomenda = &fecha
			if e.Proveedor != nil {
				a.Proveedor = e.Proveedor
			}
			if e.Cantidad != nil {
				a.CantidadEncomendada = e.Cantidad
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *stubArticuloRepo) MarcarAdjudicados(_ context.Context, _ *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID) error {
	return r.cada(propuestaID, ids, func(a *model.ArticuloPropuesta) { a.Adjudicado = true })
}

func (r *stubArticuloRepo) FijarFechaEntrega(_ context.Context, _ *gorm.DB, propuestaID uuid.UUID, ids []uuid.UUID, fecha time.Time) error {
	return r.cada(propuestaID, ids, func(a *model.ArticuloPropuesta) { a.FechaPrevistaEntrega = &fecha })
}

var _ repository.ArticuloRepository = (*stubArticuloRepo)(nil)

// ── Capturas ──────────────────────────────────────────────────────────────────

type stubCapturaRepo struct {
	amostras    []model.Amostra
	dossiers    []model.Dossier
	solicitudes map[uuid.UUID]*model.SolicitudCompra
	registros   []model.RegistroEncomenda
}

func newStubCapturaRepo() *stubCapturaRepo {
	return &stubCapturaRepo{solicitudes: make(map[uuid.UUID]*model.SolicitudCompra)}
}

func (r *stubCapturaRepo) CreateAmostra(_ context.Context, _ *gorm.DB, a *model.Amostra) error {
	r.amostras = append(r.amostras, *a)
	return nil
}

func (r *stubCapturaRepo) CreateDossier(_ context.Context, _ *gorm.DB, d *model.Dossier) error {
	r.dossiers = append(r.dossiers, *d)
	return nil
}

func (r *stubCapturaRepo) ReemplazarSolicitud(_ context.Context, _ *gorm.DB, s *model.SolicitudCompra) error {
	r.solicitudes[s.PropuestaID] = s
	return nil
}

func (r *stubCapturaRepo) CreateRegistros(_ context.Context, _ *gorm.DB, regs []model.RegistroEncomenda) error {
	r.registros = append(r.registros, regs...)
	return nil
}

func (r *stubCapturaRepo) FindSolicitud(_ context.Context, propuestaID uuid.UUID) (*model.SolicitudCompra, error) {
	s, ok := r.solicitudes[propuestaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCapturaRepo) ListRegistros(_ context.Context, propuestaID uuid.UUID) ([]model.RegistroEncomenda, error) {
	var out []model.RegistroEncomenda
	for _, reg := range r.registros {
		if reg.PropuestaID == propuestaID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *stubCapturaRepo) ListDossiers(_ context.Context, _ uuid.UUID) ([]model.Dossier, error) {
	return r.dossiers, nil
}

func (r *stubCapturaRepo) ListAmostras(_ context.Context, _ uuid.UUID) ([]model.Amostra, error) {
	return r.amostras, nil
}

var _ repository.CapturaRepository = (*stubCapturaRepo)(nil)

// ── Follow-ups ────────────────────────────────────────────────────────────────

// stubFollowUpRepo fails every read with err when set.
type stubFollowUpRepo struct {
	mu  sync.Mutex
	fus map[uuid.UUID][]model.FollowUp
	err error
}

func newStubFollowUpRepo() *stubFollowUpRepo {
	return &stubFollowUpRepo{fus: make(map[uuid.UUID][]model.FollowUp)}
}

func (r *stubFollowUpRepo) Create(_ context.Context, _ *gorm.DB, fu *model.FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fus[fu.PropuestaID] = append(r.fus[fu.PropuestaID], *fu)
	return nil
}

func (r *stubFollowUpRepo) Count(_ context.Context, _ *gorm.DB, propuestaID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.fus[propuestaID])), nil
}

func (r *stubFollowUpRepo) ListByPropuesta(_ context.Context, propuestaID uuid.UUID) ([]model.FollowUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.FollowUp{}, r.fus[propuestaID]...), nil
}

func (r *stubFollowUpRepo) ListByPropuestas(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.FollowUp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make(map[uuid.UUID][]model.FollowUp, len(ids))
	for _, id := range ids {
		if fus := r.fus[id]; len(fus) > 0 {
			out[id] = append([]model.FollowUp{}, fus...)
		}
	}
	return out, nil
}

var _ repository.FollowUpRepository = (*stubFollowUpRepo)(nil)

// ── Proveedores / productos ───────────────────────────────────────────────────

type stubProveedorRepo struct {
	proveedores []model.Proveedor
	err         error
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	for _, q := range r.proveedores {
		if q.Nombre == p.Nombre {
			return gorm.ErrDuplicatedKey
		}
	}
	r.proveedores = append(r.proveedores, *p)
	return nil
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	return r.proveedores, r.err
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

type stubProductoRepo struct {
	productos []model.Producto
	err       error
	lecturas  int
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if _, err := r.FindByCodigo(context.Background(), p.CodigoPHC); err == nil {
		return gorm.ErrDuplicatedKey
	}
	r.productos = append(r.productos, *p)
	return nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Producto, error) {
	for i := range r.productos {
		if r.productos[i].CodigoPHC == codigo {
			return &r.productos[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) ListActivos(_ context.Context) ([]model.Producto, error) {
	r.lecturas++
	return r.productos, r.err
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Redis-backed stores ───────────────────────────────────────────────────────

type stubTransicionStore struct {
	mu     sync.Mutex
	tokens map[string]repository.TransicionPendiente
}

func newStubTransicionStore() *stubTransicionStore {
	return &stubTransicionStore{tokens: make(map[string]repository.TransicionPendiente)}
}

func (s *stubTransicionStore) Guardar(_ context.Context, t *repository.TransicionPendiente, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Token] = *t
	return nil
}

func (s *stubTransicionStore) Obtener(_ context.Context, token string) (*repository.TransicionPendiente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrTransicionNoEncontrada
	}
	return &t, nil
}

func (s *stubTransicionStore) Eliminar(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

var _ repository.TransicionStore = (*stubTransicionStore)(nil)

type stubLocker struct {
	mu      sync.Mutex
	tomados map[string]bool
}

func newStubLocker() *stubLocker { return &stubLocker{tomados: make(map[string]bool)} }

func (l *stubLocker) Adquirir(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tomados[key] {
		return false, nil
	}
	l.tomados[key] = true
	return true, nil
}

func (l *stubLocker) Liberar(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.tomados, key)
	return nil
}

var _ repository.Locker = (*stubLocker)(nil)

type stubCache struct {
	datos map[string][]byte
	err   error
}

func newStubCache() *stubCache { return &stubCache{datos: make(map[string][]byte)} }

func (c *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.datos[key], nil
}

func (c *stubCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.datos[key] = val
	return nil
}

func (c *stubCache) Del(_ context.Context, key string) error {
	delete(c.datos, key)
	return nil
}

var _ repository.Cache = (*stubCache)(nil)

type stubPreferencias struct {
	valores map[uuid.UUID]map[string]string
	err     error
}

func (s *stubPreferencias) Obtener(_ context.Context, id uuid.UUID) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.valores[id], nil
}

func (s *stubPreferencias) Guardar(_ context.Context, id uuid.UUID, v map[string]string) error {
	if s.valores == nil {
		s.valores = make(map[uuid.UUID]map[string]string)
	}
	if s.valores[id] == nil {
		s.valores[id] = map[string]string{}
	}
	for k, val := range v {
		s.valores[id][k] = val
	}
	return nil
}

var _ repository.PreferenciasStore = (*stubPreferencias)(nil)

// ── Outbound collaborators ────────────────────────────────────────────────────

type stubWebhook struct {
	mu       sync.Mutex
	enviados []infra.AlertaPayload
	err      error
}

func (w *stubWebhook) Configurado() bool { return true }

func (w *stubWebhook) Enviar(_ context.Context, p infra.AlertaPayload) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.enviados = append(w.enviados, p)
	return nil
}

func (w *stubWebhook) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.enviados)
}

var _ Notificador = (*stubWebhook)(nil)

type stubCola struct {
	jobs []interface{}
}

func (c *stubCola) EnqueueEmail(_ context.Context, payload interface{}) error {
	c.jobs = append(c.jobs, payload)
	return nil
}

var _ Encolador = (*stubCola)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

var errStore = errors.New("store unavailable")

// fechaFija is the clock of every service under test.
var fechaFija = time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)

func reloj() time.Time { return fechaFija }

func actorComercial() Actor {
	return Actor{UsuarioID: uuid.New(), Nombre: "Ana Comercial", Idioma: i18n.ES}
}

// nuevaPropuesta stores a proposal owned by a in status e with two items.
func nuevaPropuesta(repo *stubPropuestaRepo, a Actor, e estado.Estado) *model.Propuesta {
	id := uuid.New()
	comercial := a.UsuarioID
	return repo.put(&model.Propuesta{
		ID:              id,
		NumeroPropuesta: 1001,
		NombreCliente:   "Hotel Sol",
		NombreComercial: a.Nombre,
		ComercialID:     &comercial,
		FechaPropuesta:  fechaFija.AddDate(0, 0, -30),
		Estado:          e,
		Historial:       model.Historial{},
		CreatedAt:       fechaFija.AddDate(0, 0, -30),
		Articulos: []model.ArticuloPropuesta{
			{ID: uuid.New(), PropuestaID: id, Designacion: "Toalla", Cantidad: 10, PrecioUnitario: decimal.RequireFromString("3.50")},
			{ID: uuid.New(), PropuestaID: id, Designacion: "Albornoz", Cantidad: 4, PrecioUnitario: decimal.RequireFromString("12")},
		},
	})
}
