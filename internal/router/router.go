package router

import (
	"time"

	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/config"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/handler"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/middleware"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/rbac"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/repository"
	"github.com/ArturCreativeLab/averiasRepro-demo-I/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Role name shorthands for route declarations.
var (
	rolSuper   = string(rbac.RolSuperusuario)
	rolJefe    = string(rbac.RolJefeTecnico)
	rolOficina = string(rbac.RolOficina)
	rolTecnico = string(rbac.RolTecnico)
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	maquinaRepo := repository.NewMaquinaRepository(db)
	averiaRepo := repository.NewAveriaRepository(db)
	visitaRepo := repository.NewVisitaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	maquinaSvc := service.NewMaquinaService(maquinaRepo, cfg.MaquinasMax)
	averiaSvc := service.NewAveriaService(averiaRepo, maquinaRepo, usuarioRepo, rdb, cfg.ListadoMax)
	visitaSvc := service.NewVisitaService(visitaRepo, averiaRepo, maquinaRepo, usuarioRepo, cfg.ListadoMax)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	maquinasH := handler.NewMaquinasHandler(maquinaSvc)
	averiasH := handler.NewAveriasHandler(averiaSvc, visitaSvc)
	visitasH := handler.NewVisitasHandler(visitaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/perfil", authH.Perfil)

		// Averías — every role reads (técnicos see their own only, enforced
		// in the service); writes are gated per capability.
		v1.GET("/averias", averiasH.Listar)
		v1.GET("/averias/estadisticas", averiasH.Estadisticas)
		v1.GET("/averias/:id", averiasH.ObtenerPorID)
		v1.GET("/averias/:id/visitas", averiasH.ListarVisitas)
		v1.POST("/averias", middleware.RequireRole(rolSuper, rolJefe, rolOficina), averiasH.Crear)
		v1.PUT("/averias/:id", middleware.RequireRole(rolSuper, rolJefe, rolOficina), averiasH.Actualizar)
		v1.DELETE("/averias/:id", middleware.RequireRole(rolSuper), averiasH.Eliminar)
		v1.POST("/averias/:id/asignar", middleware.RequireRole(rolSuper, rolJefe), averiasH.AsignarTecnico)
		v1.POST("/averias/:id/notificar", middleware.RequireRole(rolSuper, rolJefe, rolOficina), averiasH.Notificar)

		// Visitas — all four roles create and edit work reports.
		v1.GET("/visitas", visitasH.Listar)
		v1.GET("/visitas/:id", visitasH.ObtenerPorID)
		v1.POST("/visitas", middleware.RequireRole(rolSuper, rolJefe, rolOficina, rolTecnico), visitasH.Crear)
		v1.PUT("/visitas/:id", middleware.RequireRole(rolSuper, rolJefe, rolOficina, rolTecnico), visitasH.Actualizar)

		// Máquinas — read-only catalog behind the picker.
		v1.GET("/maquinas", maquinasH.Listar)
		v1.GET("/maquinas/:id", maquinasH.ObtenerPorID)

		// Técnico listings for pickers and filter dropdowns.
		v1.GET("/tecnicos", usuariosH.ListarTecnicos)

		// User administration — superusuario only.
		usuarios := v1.Group("/usuarios", middleware.RequireRole(rolSuper))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
