package handler

import (
	"net/http"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// EstadosHandler exposes the status workflow. A transition that needs extra
// data is two-step: Iniciar returns a token plus the capture context, and the
// client answers with Confirmar or Cancelar.
type EstadosHandler struct{ svc service.EstadoService }

func NewEstadosHandler(svc service.EstadoService) *EstadosHandler {
	return &EstadosHandler{svc: svc}
}

// Catalogo lists every status with its presentation and legal targets.
func (h *EstadosHandler) Catalogo(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Catalogo(middleware.GetIdioma(c)))
}

// Iniciar godoc
// @Summary Solicitar cambio de estado
// @Description Aplica el cambio o, si requiere datos, devuelve una transición pendiente (202).
// @Tags estados
// @Accept json
// @Produce json
// @Param id path string true "ID de la propuesta"
// @Param body body dto.IniciarTransicionRequest true "Estado destino"
// @Success 200 {object} dto.TransicionResponse
// @Success 202 {object} dto.TransicionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/propuestas/{id}/transiciones [post]
func (h *EstadosHandler) Iniciar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.IniciarTransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Iniciar(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if resp.Pendiente != nil {
		c.JSON(http.StatusAccepted, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EstadosHandler) Confirmar(c *gin.Context) {
	var req dto.ConfirmarTransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Confirmar(c.Request.Context(), actor(c), c.Param("token"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EstadosHandler) Cancelar(c *gin.Context) {
	resp, err := h.svc.Cancelar(c.Request.Context(), actor(c), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Solicitar is the one-step variant: the capture travels with the request
// and a missing one is a validation error.
// PUT /v1/propuestas/:id/estado
func (h *EstadosHandler) Solicitar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.IniciarTransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Solicitar(c.Request.Context(), actor(c), id, req.Destino, req.Captura)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
