package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/apierror"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PropuestasHandler struct{ svc service.PropuestaService }

func NewPropuestasHandler(svc service.PropuestaService) *PropuestasHandler {
	return &PropuestasHandler{svc: svc}
}

// Crear godoc
// @Summary Crear propuesta
// @Tags propuestas
// @Accept json
// @Produce json
// @Param body body dto.CrearPropuestaRequest true "Cabecera y artículos"
// @Success 201 {object} dto.PropuestaResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/propuestas [post]
func (h *PropuestasHandler) Crear(c *gin.Context) {
	var req dto.CrearPropuestaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Listar propuestas
// @Tags propuestas
// @Produce json
// @Param estado query string false "Código de estado"
// @Param cliente query string false "Cliente (contiene)"
// @Param alerta query bool false "Solo con alerta activa"
// @Success 200 {object} dto.PropuestaListResponse
// @Router /v1/propuestas [get]
func (h *PropuestasHandler) Listar(c *gin.Context) {
	var filter dto.PropuestaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropuestasHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropuestasHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPropuestaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropuestasHandler) Comentar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ComentarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Comentar(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PropuestasHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PropuestasHandler) MarcarEncomendados(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.MarcarEncomendadosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.MarcarEncomendados(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PropuestasHandler) FijarFechaEntrega(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.FechaEntregaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.FijarFechaEntrega(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar streams the filtered list as an XLSX workbook.
// GET /v1/propuestas/export
func (h *PropuestasHandler) Exportar(c *gin.Context) {
	var filter dto.PropuestaFilter
	if !bindQuery(c, &filter) {
		return
	}
	f, err := h.svc.ExportarXLSX(c.Request.Context(), actor(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\"propuestas.xlsx\"")
	c.Header("Content-Transfer-Encoding", "binary")
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("xlsx write failed")
	}
}

// ResumenPDF renders the proposal summary and sends it as a download.
// GET /v1/propuestas/:id/pdf
func (h *PropuestasHandler) ResumenPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.ResumenPDF(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if path == "" {
		c.JSON(http.StatusInternalServerError, apierror.T(middleware.GetIdioma(c), "exportacion_fallida"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	c.File(path)
}
