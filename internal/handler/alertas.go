package handler

import (
	"net/http"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertasHandler struct{ svc service.AlertaService }

func NewAlertasHandler(svc service.AlertaService) *AlertasHandler {
	return &AlertasHandler{svc: svc}
}

// Listar is the alert dashboard of the caller.
func (h *AlertasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Notificar sends the current alert of a proposal right away.
// POST /v1/propuestas/:id/notificar
func (h *AlertasHandler) Notificar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Notificar(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
