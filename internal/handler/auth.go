package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

const heartbeatSSE = 30 * time.Second

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// SignIn godoc
// @Summary Inicio de sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignInRequest true "Credenciales"
// @Success 200 {object} dto.SesionResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignUp godoc
// @Summary Registro de comercial
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignUpRequest true "Datos de la cuenta"
// @Success 201 {object} dto.SesionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/auth/sign-up [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.svc.SignOut(c.Request.Context(), middleware.GetSesion(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the current user with its resolved role.
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.svc.CurrentUser(c.Request.Context(), actor(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eventos streams the caller's SIGNED_IN / SIGNED_OUT events as
// server-sent events until the client disconnects.
// GET /v1/auth/eventos?access_token=xxx
func (h *AuthHandler) Eventos(c *gin.Context) {
	sub := h.svc.Suscribir(actor(c).UsuarioID)
	defer sub.Cancelar()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"sub_id\":%q}\n\n", sub.ID)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatSSE)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-sub.Eventos:
			if !ok {
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Tipo, data)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) AsignarRol(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AsignarRolRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsignarRol(c.Request.Context(), id, req.Rol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
