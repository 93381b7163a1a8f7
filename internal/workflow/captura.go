package workflow

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rejection reasons.
const (
	MotivoPrecio             = "precio"
	MotivoPlazoEntrega       = "plazo_entrega"
	MotivoCompetencia        = "competencia"
	MotivoSinRespuesta       = "sin_respuesta"
	MotivoProductoNoAdecuado = "producto_no_adecuado"
	MotivoOtro               = "otro"
)

// MotivosRechazo is the fixed reason set in display order.
var MotivosRechazo = []string{
	MotivoPrecio, MotivoPlazoEntrega, MotivoCompetencia,
	MotivoSinRespuesta, MotivoProductoNoAdecuado, MotivoOtro,
}

// MaxDocumentosDossier caps the documents attached for dossier approval.
const MaxDocumentosDossier = 3

// Captura carries the state-specific data of a transition. Only the member
// matching the target status is read.
type Captura struct {
	Amostra         *CapturaAmostra         `json:"amostra,omitempty"`
	Dossier         *CapturaDossier         `json:"dossier,omitempty"`
	Pagamento       *CapturaPagamento       `json:"pagamento,omitempty"`
	PedidoEncomenda *CapturaPedidoEncomenda `json:"pedido_encomenda,omitempty"`
	Encomenda       *CapturaEncomenda       `json:"encomenda,omitempty"`
	Conclusion      *CapturaConclusion      `json:"conclusion,omitempty"`
	Rechazo         *CapturaRechazo         `json:"rechazo,omitempty"`
}

// CapturaAmostra needs at least one selected item or one photo.
type CapturaAmostra struct {
	ArticuloIDs []uuid.UUID `json:"articulo_ids"`
	FotoURLs    []string    `json:"foto_urls" validate:"omitempty,dive,url"`
}

type CapturaDossier struct {
	Documentos []string `json:"documentos" validate:"required,min=1,max=3,dive,url"`
}

type CapturaPagamento struct {
	NumeroCliente     string          `json:"numero_cliente"     validate:"required,max=50"`
	TipoCliente       string          `json:"tipo_cliente"       validate:"required,max=50"`
	NumeroFactura     string          `json:"numero_factura"     validate:"required,max=50"`
	ValorAdjudicacion decimal.Decimal `json:"valor_adjudicacion" validate:"gt=0"`
}

// LineaPedido is one line of the purchasing request. Only Cantidad is
// mandatory; the rest describes items without a canonical product code.
type LineaPedido struct {
	ArticuloID      uuid.UUID        `json:"articulo_id"      validate:"required"`
	Cantidad        int              `json:"cantidad"         validate:"required,min=1"`
	Referencia      *string          `json:"referencia"       validate:"omitempty,max=100"`
	Designacion     *string          `json:"designacion"      validate:"omitempty,max=255"`
	Peso            *decimal.Decimal `json:"peso"`
	CantidadPorCaja *int             `json:"cantidad_por_caja" validate:"omitempty,min=1"`
	Personalizacion *string          `json:"personalizacion"`
}

type CapturaPedidoEncomenda struct {
	Lineas []LineaPedido `json:"lineas" validate:"required,min=1,dive"`
}

type LineaEncomenda struct {
	ArticuloID uuid.UUID `json:"articulo_id" validate:"required"`
	Cantidad   int       `json:"cantidad"    validate:"required,min=1"`
}

// GrupoEncomenda is the order placed with one supplier.
type GrupoEncomenda struct {
	Proveedor       string           `json:"proveedor"        validate:"required,notblank,max=150"`
	NumeroEncomenda string           `json:"numero_encomenda" validate:"required,notblank,max=50"`
	FechaEncomenda  time.Time        `json:"fecha_encomenda"  validate:"required"`
	Lineas          []LineaEncomenda `json:"lineas"           validate:"required,min=1,dive"`
}

type CapturaEncomenda struct {
	Grupos []GrupoEncomenda `json:"grupos" validate:"required,min=1,dive"`
}

// CapturaConclusion lists the items the client went ahead with when no order
// was registered beforehand.
type CapturaConclusion struct {
	ArticuloIDs []uuid.UUID `json:"articulo_ids" validate:"required,min=1"`
}

type CapturaRechazo struct {
	Motivo string `json:"motivo" validate:"required,oneof=precio plazo_entrega competencia sin_respuesta producto_no_adecuado otro"`
	Otro   string `json:"otro"   validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// order numbers and suppliers end up trimmed in the ledger
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidarCaptura checks c against the requirements of target a. A nil
// capture is fine for targets that need none.
func ValidarCaptura(de, a estado.Estado, c *Captura, articulos []model.ArticuloPropuesta) error {
	if !RequiereCaptura(a, articulos) {
		return nil
	}
	campos := map[string]string{}
	if c == nil {
		c = &Captura{}
	}
	idx := indexar(articulos)

	switch a {
	case estado.AmostraPedida, estado.AmostraEnviada:
		validarAmostra(campos, c.Amostra, idx)
	case estado.AguardaAprovacaoDossier:
		if c.Dossier == nil {
			campos["dossier"] = "required"
		} else {
			agregar(campos, "dossier", validate.Struct(c.Dossier))
		}
	case estado.AguardaPagamento:
		if c.Pagamento == nil {
			campos["pagamento"] = "required"
		} else {
			agregar(campos, "pagamento", validate.Struct(c.Pagamento))
		}
	case estado.PedidoDeEncomenda:
		validarPedido(campos, c.PedidoEncomenda, idx)
	case estado.EncomendaEnCurso:
		validarEncomenda(campos, c.Encomenda, idx)
	case estado.EncomendaConcluida:
		validarConclusion(campos, c.Conclusion, idx)
	case estado.Rejeitada:
		validarRechazo(campos, c.Rechazo)
	}

	if len(campos) > 0 {
		return &Error{Causa: ErrCapturaInvalida, De: de, A: a, Campos: campos}
	}
	return nil
}

func validarAmostra(campos map[string]string, c *CapturaAmostra, idx map[uuid.UUID]model.ArticuloPropuesta) {
	if c == nil || len(c.ArticuloIDs)+len(c.FotoURLs) == 0 {
		campos["amostra"] = "required"
		return
	}
	agregar(campos, "amostra", validate.Struct(c))
	for _, id := range c.ArticuloIDs {
		if _, ok := idx[id]; !ok {
			campos["amostra.articulo_ids"] = "articulo_no_encontrado"
		}
	}
}

func validarPedido(campos map[string]string, c *CapturaPedidoEncomenda, idx map[uuid.UUID]model.ArticuloPropuesta) {
	if c == nil {
		campos["pedido_encomenda"] = "required"
		return
	}
	agregar(campos, "pedido_encomenda", validate.Struct(c))
	vistos := map[uuid.UUID]bool{}
	for _, l := range c.Lineas {
		if _, ok := idx[l.ArticuloID]; !ok {
			campos["pedido_encomenda.lineas"] = "articulo_no_encontrado"
			continue
		}
		if vistos[l.ArticuloID] {
			campos["pedido_encomenda.lineas"] = "duplicado"
		}
		vistos[l.ArticuloID] = true
	}
	if _, ok := campos["pedido_encomenda.lineas"]; !ok && len(vistos) != len(idx) {
		campos["pedido_encomenda.lineas"] = "incompleto"
	}
}

func validarEncomenda(campos map[string]string, c *CapturaEncomenda, idx map[uuid.UUID]model.ArticuloPropuesta) {
	if c == nil {
		campos["encomenda"] = "required"
		return
	}
	agregar(campos, "encomenda", validate.Struct(c))
	proveedores := map[string]bool{}
	articulos := map[uuid.UUID]bool{}
	for _, g := range c.Grupos {
		clave := strings.ToLower(strings.TrimSpace(g.Proveedor))
		if proveedores[clave] {
			campos["encomenda.grupos"] = "proveedor_duplicado"
		}
		proveedores[clave] = true
		for _, l := range g.Lineas {
			if _, ok := idx[l.ArticuloID]; !ok {
				campos["encomenda.lineas"] = "articulo_no_encontrado"
				continue
			}
			if articulos[l.ArticuloID] {
				campos["encomenda.lineas"] = "duplicado"
			}
			articulos[l.ArticuloID] = true
		}
	}
}

func validarConclusion(campos map[string]string, c *CapturaConclusion, idx map[uuid.UUID]model.ArticuloPropuesta) {
	if c == nil {
		campos["conclusion"] = "required"
		return
	}
	agregar(campos, "conclusion", validate.Struct(c))
	for _, id := range c.ArticuloIDs {
		if _, ok := idx[id]; !ok {
			campos["conclusion.articulo_ids"] = "articulo_no_encontrado"
		}
	}
}

func validarRechazo(campos map[string]string, c *CapturaRechazo) {
	if c == nil {
		campos["rechazo.motivo"] = "required"
		return
	}
	agregar(campos, "rechazo", validate.Struct(c))
	if c.Motivo == MotivoOtro && strings.TrimSpace(c.Otro) == "" {
		campos["rechazo.otro"] = "required"
	}
}

func indexar(articulos []model.ArticuloPropuesta) map[uuid.UUID]model.ArticuloPropuesta {
	idx := make(map[uuid.UUID]model.ArticuloPropuesta, len(articulos))
	for _, a := range articulos {
		idx[a.ID] = a
	}
	return idx
}

// agregar copies validator failures into campos under prefijo.
func agregar(campos map[string]string, prefijo string, err error) {
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		campos[prefijo] = "invalid"
		return
	}
	for _, fe := range ve {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		campos[prefijo+"."+ns] = fe.Tag()
	}
}
