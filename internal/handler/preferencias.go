package handler

import (
	"net/http"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type PreferenciasHandler struct{ svc service.PreferenciasService }

func NewPreferenciasHandler(svc service.PreferenciasService) *PreferenciasHandler {
	return &PreferenciasHandler{svc: svc}
}

func (h *PreferenciasHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreferenciasHandler) Guardar(c *gin.Context) {
	var req dto.PreferenciasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
