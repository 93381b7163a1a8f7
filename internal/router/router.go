package router

import (
	"context"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/eventos"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/handler"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/rol"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infra groups the external clients built by the composition root.
type Infra struct {
	Webhook    *infra.WebhookClient
	Storage    *infra.Storage
	Dispatcher *worker.Dispatcher
}

// App is the wired HTTP engine plus the services the background workers
// need.
type App struct {
	Engine  *gin.Engine
	Alertas service.AlertaService
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the rate limiter purge goroutines.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, inf Infra) *App {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.APIRateLimiter(cfg.RateLimit)
	loginLimiter := middleware.LoginRateLimiter()
	apiLimiter.StartPurge(ctx)
	loginLimiter.StartPurge(ctx)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.Idioma())
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())
	// SSE must not be buffered by the compressor
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/v1/auth/eventos"})))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	propuestaRepo := repository.NewPropuestaRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	capturaRepo := repository.NewCapturaRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)

	transiciones := repository.NewTransicionStore(rdb)
	revocados := repository.NewRevocacionStore(rdb)
	preferencias := repository.NewPreferenciasStore(rdb)
	cache := repository.NewRedisCache(rdb)
	locker := repository.NewRedisLocker(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	roles := rol.NewResolver(usuarioRepo, cfg.RoleCacheTTL)
	hub := eventos.NewHub(8)

	authSvc := service.NewAuthService(usuarioRepo, revocados, roles, hub, cfg)
	propuestaSvc := service.NewPropuestaService(propuestaRepo, articuloRepo, capturaRepo, followUpRepo, productoRepo, cfg)
	estadoSvc := service.NewEstadoService(propuestaRepo, articuloRepo, capturaRepo, followUpRepo, proveedorRepo, transiciones, cfg)
	followUpSvc := service.NewFollowUpService(followUpRepo, propuestaRepo)
	alertaSvc := service.NewAlertaService(propuestaRepo, followUpRepo, inf.Webhook, locker, inf.Dispatcher, cfg)
	catalogoSvc := service.NewCatalogoService(productoRepo, proveedorRepo, cache)
	preferenciasSvc := service.NewPreferenciasService(preferencias)
	archivoSvc := service.NewArchivoService(inf.Storage)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	propuestasH := handler.NewPropuestasHandler(propuestaSvc)
	estadosH := handler.NewEstadosHandler(estadoSvc)
	followUpsH := handler.NewFollowUpsHandler(followUpSvc)
	alertasH := handler.NewAlertasHandler(alertaSvc)
	catalogoH := handler.NewCatalogoHandler(catalogoSvc)
	preferenciasH := handler.NewPreferenciasHandler(preferenciasSvc)
	archivosH := handler.NewArchivosHandler(archivoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var webhookCB *infra.CircuitBreaker
	if inf.Webhook != nil {
		webhookCB = inf.Webhook.Breaker()
	}
	r.GET("/health", handler.Health(db, rdb, webhookCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/sign-in", loginLimiter.Middleware(), authH.SignIn)
		auth.POST("/sign-up", loginLimiter.Middleware(), authH.SignUp)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(authSvc, roles)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/sign-out", authH.SignOut)
		v1.GET("/auth/me", authH.Me)
		v1.GET("/auth/eventos", authH.Eventos)

		v1.GET("/estados", estadosH.Catalogo)

		props := v1.Group("/propuestas")
		{
			props.GET("", propuestasH.Listar)
			props.POST("", propuestasH.Crear)
			props.GET("/export", propuestasH.Exportar)
			props.GET("/:id", propuestasH.Obtener)
			props.PATCH("/:id", propuestasH.Actualizar)
			props.DELETE("/:id", middleware.RequireAdmin(), propuestasH.Eliminar)
			props.GET("/:id/pdf", propuestasH.ResumenPDF)
			props.POST("/:id/comentarios", propuestasH.Comentar)
			props.POST("/:id/articulos/encomendados", propuestasH.MarcarEncomendados)
			props.POST("/:id/articulos/fecha-entrega", propuestasH.FijarFechaEntrega)

			props.POST("/:id/transiciones", estadosH.Iniciar)
			props.PUT("/:id/estado", estadosH.Solicitar)

			props.GET("/:id/follow-ups", followUpsH.Listar)
			props.POST("/:id/follow-ups", followUpsH.Crear)

			props.POST("/:id/notificar", alertasH.Notificar)
		}

		trans := v1.Group("/transiciones")
		{
			trans.POST("/:token/confirmar", estadosH.Confirmar)
			trans.DELETE("/:token", estadosH.Cancelar)
		}

		v1.GET("/alertas", alertasH.Listar)

		v1.GET("/productos", catalogoH.ListarProductos)
		v1.POST("/productos", middleware.RequireAdmin(), catalogoH.CrearProducto)
		v1.GET("/proveedores", catalogoH.ListarProveedores)
		v1.POST("/proveedores", middleware.RequireAdmin(), catalogoH.CrearProveedor)

		v1.GET("/preferencias", preferenciasH.Obtener)
		v1.PUT("/preferencias", preferenciasH.Guardar)

		v1.POST("/archivos/:carpeta", archivosH.Subir)

		usuarios := v1.Group("/usuarios", middleware.RequireAdmin())
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id/rol", usuariosH.AsignarRol)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &App{Engine: r, Alertas: alertaSvc}
}
