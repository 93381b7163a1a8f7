package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/apierror"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SesionKey = "sesion"
	ActorKey  = "actor"
)

// SessionChecker validates access tokens. Satisfied by service.AuthService.
type SessionChecker interface {
	GetSession(ctx context.Context, token string) (*service.Sesion, error)
}

// RoleChecker answers whether a user is an administrator. Satisfied by
// *rol.Resolver.
type RoleChecker interface {
	EsAdmin(ctx context.Context, usuarioID uuid.UUID) bool
}

// JWTAuth validates the Bearer token on every protected route and stores the
// session and the acting user. The token may also come as ?access_token=,
// which EventSource clients need since they cannot set headers.
// Must run after Idioma.
func JWTAuth(auth SessionChecker, roles RoleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := GetIdioma(c)
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.T(lang, "no_autenticado"))
			return
		}

		ses, err := auth.GetSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.T(lang, "no_autenticado"))
			return
		}

		c.Set(SesionKey, ses)
		c.Set(ActorKey, service.Actor{
			UsuarioID: ses.UsuarioID,
			Nombre:    ses.Nombre,
			Admin:     roles.EsAdmin(c.Request.Context(), ses.UsuarioID),
			Idioma:    lang,
		})
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if header == "" {
		return c.Query("access_token")
	}
	return ""
}

// RequireAdmin rejects requests whose user is not an administrator.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := GetActor(c)
		if !ok || !a.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.T(GetIdioma(c), "permisos_insuficientes"))
			return
		}
		c.Next()
	}
}

// GetSesion returns the session stored by JWTAuth, or nil.
func GetSesion(c *gin.Context) *service.Sesion {
	v, ok := c.Get(SesionKey)
	if !ok {
		return nil
	}
	ses, _ := v.(*service.Sesion)
	return ses
}

// GetActor returns the acting user stored by JWTAuth.
func GetActor(c *gin.Context) (service.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return service.Actor{}, false
	}
	a, ok := v.(service.Actor)
	return a, ok
}
