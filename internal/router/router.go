package router

import (
	"context"

	"irigasi/internal/authz"
	"irigasi/internal/handlers"
	"irigasi/internal/middleware"
	"irigasi/internal/services"
	"irigasi/pkg/config"
	"irigasi/pkg/jwt"
	"irigasi/pkg/response"
	"irigasi/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps shared components the routes are built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *session.Registry
	Tokens   *jwt.JWTManager
	Engine   *authz.Engine
	Store    services.IdentityStore
	Issuer   *services.ClaimsIssuer
	Audit    *services.AuditService
}

// SetupRouter builds the engine with the global middleware chain
func SetupRouter(d Deps) *gin.Engine {
	if d.Engine == nil {
		d.Engine = authz.NewDefaultEngine()
	}

	auth := middleware.NewAuthMiddleware(middleware.AuthOptions{
		Tokens:     d.Tokens,
		Sessions:   d.Sessions,
		Claims:     d.Issuer,
		Users:      d.Store,
		Engine:     d.Engine,
		CookieName: d.Config.Auth.CookieName,
		LoginPath:  d.Config.Auth.LoginPath,
	})

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SecurityHeaders(d.Config))
	router.Use(middleware.SetupCORS(d.Config))
	router.Use(auth.RouteGuard())

	registerRoutes(router, d, auth)
	return router
}

func registerRoutes(router *gin.Engine, d Deps, auth *middleware.AuthMiddleware) {
	userService := services.NewUserService(d.DB)

	// ========== Public ==========

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(d.Config.Auth.LoginPath, loginPage)

	system := handlers.NewSystemHandler(map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": d.Sessions,
	})
	router.GET("/api/v1/health", system.Health)

	authHandler := handlers.NewAuthHandler(
		services.NewAuthService(d.Store),
		d.Issuer,
		d.Tokens,
		d.Sessions,
		d.Audit,
		userService,
		d.Engine,
		handlers.CookieOptions{Name: d.Config.Auth.CookieName, Secure: d.Config.Auth.CookieSecure},
	)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/refresh", auth.RequireAuthenticated(), authHandler.Refresh)
		authGroup.GET("/me", auth.RequireAuthenticated(), authHandler.Me)
	}

	contactHandler := handlers.NewContactHandler(services.NewContactService(d.DB))
	router.POST("/api/public/contact", contactHandler.Submit)

	// ========== Admin shell ==========

	adminHandler := handlers.NewAdminHandler(d.Engine)
	router.GET("/admin", adminHandler.Shell)
	router.GET("/admin/*page", adminHandler.Shell)

	// ========== Admin API ==========
	// the route guard has already applied the route table; mutations re-check
	// their permission at the handler

	api := router.Group("/api/admin", auth.RequireAuthenticated())
	api.GET("/navigation", adminHandler.Navigation)

	ws := handlers.NewWebSocketHandler(d.Sessions, d.Config.CORS.AllowOrigins)
	api.GET("/ws", ws.SessionEvents)

	userHandler := handlers.NewUserHandler(userService, d.Store, d.Sessions)
	users := api.Group("/users")
	{
		users.GET("", userHandler.GetAll)
		users.GET("/:id", userHandler.GetByID)
		users.POST("", auth.RequirePermission(authz.PermUsersCreate), userHandler.Create)
		users.PUT("/:id", auth.RequirePermission(authz.PermUsersEdit), userHandler.Update)
		users.DELETE("/:id", auth.RequirePermission(authz.PermUsersDelete), userHandler.Delete)
		users.PUT("/:id/role", auth.RequirePermission(authz.PermUsersRoles), userHandler.AssignRole)
		users.PUT("/:id/password", auth.RequirePermission(authz.PermUsersEdit), userHandler.ResetPassword)
		users.GET("/:id/sessions", userHandler.Sessions)
		users.POST("/:id/sessions/revoke", auth.RequirePermission(authz.PermUsersRoles), userHandler.RevokeSessions)
	}

	roleHandler := handlers.NewRoleHandler(services.NewRoleService(d.DB), userService, d.Sessions)
	roles := api.Group("/roles")
	{
		roles.GET("", roleHandler.GetAll)
		roles.GET("/:id", roleHandler.GetByID)
		roles.POST("", auth.RequirePermission(authz.PermRolesCreate), roleHandler.Create)
		roles.PUT("/:id", auth.RequirePermission(authz.PermRolesEdit), roleHandler.Update)
		roles.DELETE("/:id", auth.RequirePermission(authz.PermRolesDelete), roleHandler.Delete)
		roles.GET("/:id/permissions", roleHandler.GetPermissions)
		roles.PUT("/:id/permissions", auth.RequirePermission(authz.PermPermissionsEdit), roleHandler.SetPermissions)
	}

	permissionHandler := handlers.NewPermissionHandler(services.NewPermissionService(d.DB))
	api.GET("/permissions", permissionHandler.GetAll)
	api.GET("/permissions/:id", permissionHandler.GetByID)

	auditHandler := handlers.NewAuditHandler(d.Audit)
	api.GET("/login-audits", auth.RequireRole(authz.RoleSuperAdmin), auditHandler.LoginAudits)

	// ========== Content ==========

	newsHandler := handlers.NewNewsHandler(services.NewNewsService(d.DB))
	news := api.Group("/news")
	{
		news.GET("", newsHandler.GetAll)
		news.GET("/:id", newsHandler.GetByID)
		news.POST("", auth.RequirePermission(authz.PermNewsCreate), newsHandler.Create)
		news.PUT("/:id", auth.RequirePermission(authz.PermNewsEdit), newsHandler.Update)
		news.DELETE("/:id", auth.RequirePermission(authz.PermNewsDelete), newsHandler.Delete)
		news.POST("/:id/publish", auth.RequirePermission(authz.PermNewsPublish), newsHandler.Publish)
	}

	galleries := handlers.NewGalleryHandler(d.DB)
	crud(api.Group("/galleries"), auth, galleries.GetAll, galleries.GetByID, galleries.Create, galleries.Update, galleries.Delete,
		authz.PermGalleriesCreate, authz.PermGalleriesEdit, authz.PermGalleriesDelete)

	sliders := handlers.NewSliderHandler(d.DB)
	crud(api.Group("/sliders"), auth, sliders.GetAll, sliders.GetByID, sliders.Create, sliders.Update, sliders.Delete,
		authz.PermSlidersCreate, authz.PermSlidersEdit, authz.PermSlidersDelete)

	farmerGroups := handlers.NewFarmerGroupHandler(d.DB)
	crud(api.Group("/farmer-groups"), auth, farmerGroups.GetAll, farmerGroups.GetByID, farmerGroups.Create, farmerGroups.Update, farmerGroups.Delete,
		authz.PermFarmerGroupsCreate, authz.PermFarmerGroupsEdit, authz.PermFarmerGroupsDelete)

	contact := api.Group("/contact-submissions")
	{
		contact.GET("", contactHandler.GetAll)
		contact.GET("/:id", contactHandler.GetByID)
		contact.PUT("/:id", auth.RequirePermission(authz.PermContactEdit), contactHandler.UpdateStatus)
		contact.DELETE("/:id", auth.RequirePermission(authz.PermContactDelete), contactHandler.Delete)
	}

	// ========== Measurements ==========
	// water level and rainfall writes need the manage permission and the
	// role stored for the user, read fresh on every request

	storedAdmin := auth.RequireStoredRole(authz.AdministrativeRoles()...)
	manageWater := auth.RequirePermission(authz.PermWaterLevelsManage)
	manageRain := auth.RequirePermission(authz.PermRainfallManage)

	waterLevels := handlers.NewWaterLevelHandler(d.DB)
	wl := api.Group("/water-levels")
	{
		wl.GET("", waterLevels.GetAll)
		wl.GET("/:id", waterLevels.GetByID)
		wl.POST("", manageWater, storedAdmin, waterLevels.Create)
		wl.PUT("/:id", manageWater, storedAdmin, waterLevels.Update)
		wl.DELETE("/:id", manageWater, storedAdmin, waterLevels.Delete)
	}

	rainfall := handlers.NewRainfallHandler(d.DB)
	rf := api.Group("/rainfall")
	{
		rf.GET("", rainfall.GetAll)
		rf.GET("/:id", rainfall.GetByID)
		rf.POST("", manageRain, storedAdmin, rainfall.Create)
		rf.PUT("/:id", manageRain, storedAdmin, rainfall.Update)
		rf.DELETE("/:id", manageRain, storedAdmin, rainfall.Delete)
	}

	cropData := handlers.NewCropDataHandler(d.DB)
	crud(api.Group("/crop-data"), auth, cropData.GetAll, cropData.GetByID, cropData.Create, cropData.Update, cropData.Delete,
		authz.PermCropDataManage, authz.PermCropDataManage, authz.PermCropDataManage)
}

// crud registers the five resource routes with a permission re-check on each mutation
func crud(g *gin.RouterGroup, auth *middleware.AuthMiddleware, list, get, create, update, del gin.HandlerFunc, createPerm, editPerm, deletePerm string) {
	g.GET("", list)
	g.GET("/:id", get)
	g.POST("", auth.RequirePermission(createPerm), create)
	g.PUT("/:id", auth.RequirePermission(editPerm), update)
	g.DELETE("/:id", auth.RequirePermission(deletePerm), del)
}

// loginPage the redirect target for interactive requests
func loginPage(c *gin.Context) {
	response.Success(c, gin.H{
		"callback_url": c.Query("callbackUrl"),
		"error":        c.Query("error"),
		"login":        "/api/auth/login",
	})
}
