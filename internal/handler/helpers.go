package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/apierror"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// report fields by their JSON name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	lang := middleware.GetIdioma(c)
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.T(lang, "json_invalido", err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.T(lang, "json_invalido", err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(lang, fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	lang := middleware.GetIdioma(c)
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.T(lang, "json_invalido", err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.T(lang, "json_invalido", err.Error()))
		return false
	}
	return true
}

// paramID parses a UUID path parameter, answering 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.T(middleware.GetIdioma(c), "id_invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the caller set by JWTAuth. Routes using it are always behind
// that middleware.
func actor(c *gin.Context) service.Actor {
	a, _ := middleware.GetActor(c)
	return a
}

// respondError maps service, workflow and repository errors onto a status
// and a localized message. Unknown errors become a logged 500.
func respondError(c *gin.Context, err error) {
	lang := middleware.GetIdioma(c)

	var werr *workflow.Error
	if errors.As(err, &werr) {
		if len(werr.Campos) > 0 {
			c.JSON(http.StatusUnprocessableEntity, &apierror.ValidationError{Detail: werr.Mensaje(lang), Fields: werr.Campos})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, &apierror.APIError{Detail: werr.Mensaje(lang), Codigo: codigoWorkflow(werr)})
		return
	}

	status, key := clasificar(err)
	if status == 0 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.T(lang, "error_interno"))
		return
	}
	if key == "estado_invalido" {
		c.JSON(status, apierror.T(lang, key, detalle(err)))
		return
	}
	c.JSON(status, apierror.T(lang, key))
}

func clasificar(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNoAutenticado):
		return http.StatusUnauthorized, "no_autenticado"
	case errors.Is(err, service.ErrCredenciales):
		return http.StatusUnauthorized, "credenciales_invalidas"
	case errors.Is(err, service.ErrPermisos):
		return http.StatusForbidden, "permisos_insuficientes"
	case errors.Is(err, service.ErrUsuarioExistente):
		return http.StatusConflict, "usuario_existente"
	case errors.Is(err, service.ErrPropuestaNoEncontrada):
		return http.StatusNotFound, "propuesta_no_encontrada"
	case errors.Is(err, service.ErrArticuloNoEncontrado):
		return http.StatusNotFound, "articulo_no_encontrado"
	case errors.Is(err, repository.ErrTransicionNoEncontrada), errors.Is(err, service.ErrTransicionAjena):
		return http.StatusNotFound, "transicion_no_encontrada"
	case errors.Is(err, repository.ErrConflicto):
		return http.StatusConflict, "conflicto_concurrente"
	case errors.Is(err, estado.ErrDesconocido):
		return http.StatusUnprocessableEntity, "estado_invalido"
	case errors.Is(err, workflow.ErrCapturaInvalida):
		return http.StatusUnprocessableEntity, "captura_invalida"
	case errors.Is(err, service.ErrSinAlerta):
		return http.StatusConflict, "sin_alerta"
	case errors.Is(err, service.ErrYaNotificada):
		return http.StatusConflict, "notificacion_ya_enviada"
	case errors.Is(err, service.ErrNotificacionEnCurso):
		return http.StatusConflict, "notificacion_en_curso"
	case errors.Is(err, service.ErrNotificacionFallida):
		return http.StatusBadGateway, "notificacion_no_enviada"
	case errors.Is(err, service.ErrRolInvalido):
		return http.StatusUnprocessableEntity, "rol_invalido"
	case errors.Is(err, service.ErrNumeroEncomendaVacio):
		return http.StatusUnprocessableEntity, "validacion"
	case errors.Is(err, service.ErrArchivoInvalido):
		return http.StatusUnprocessableEntity, "archivo_invalido"
	case errors.Is(err, infra.ErrStorageNoDisponible):
		return http.StatusServiceUnavailable, "almacenamiento_no_disp"
	case errors.Is(err, service.ErrUsuarioNoEncontrado):
		return http.StatusNotFound, "usuario_no_encontrado"
	case errors.Is(err, service.ErrProductoExistente):
		return http.StatusConflict, "producto_existente"
	case errors.Is(err, service.ErrProveedorExistente):
		return http.StatusConflict, "proveedor_existente"
	// repository errors no service translated
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "registro_existente"
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "no_encontrado"
	}
	return 0, ""
}

func codigoWorkflow(e *workflow.Error) string {
	switch {
	case errors.Is(e, workflow.ErrEstadoTerminal):
		return "estado_terminal"
	case errors.Is(e, workflow.ErrMismoEstado):
		return "mismo_estado"
	case errors.Is(e, workflow.ErrEstadoAbandonado):
		return "estado_abandonado"
	case errors.Is(e, workflow.ErrCapturaInvalida):
		return "captura_invalida"
	}
	return "transicion_no_permitida"
}

// detalle extracts the offending value from a wrapped "%w: %q" error.
func detalle(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return strings.Trim(msg[i+2:], `"`)
	}
	return msg
}
