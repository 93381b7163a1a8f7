package handler

import (
	"net/http"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowUpsHandler struct{ svc service.FollowUpService }

func NewFollowUpsHandler(svc service.FollowUpService) *FollowUpsHandler {
	return &FollowUpsHandler{svc: svc}
}

func (h *FollowUpsHandler) Listar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FollowUpsHandler) Crear(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearFollowUpRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
