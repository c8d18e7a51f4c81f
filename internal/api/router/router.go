package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/williamGois/madnezz-api-sub001/config"
	"github.com/williamGois/madnezz-api-sub001/internal/api/handler"
	"github.com/williamGois/madnezz-api-sub001/internal/api/middleware"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/pkg/jwt"
	"github.com/williamGois/madnezz-api-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// 路由级 RoleAuth 只约束基础角色做粗粒度拦截，
// 层级可达性与部门授权的细粒度判定在 Service 层完成
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(8 << 20)) // 8MB，覆盖店长批量导入

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	master := string(model.RoleMaster)
	roleGO := string(model.RoleGO)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限速防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(rdb, 30, time.Minute), h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 上下文切换模块（仅 MASTER，Service 层再校验）
			context := authorized.Group("/context")
			{
				context.GET("", h.Context.GetContext)
				context.POST("/switch", middleware.RoleAuth(master), h.Context.SwitchContext)
				context.POST("/reset", middleware.RoleAuth(master), h.Context.ResetContext)
			}

			// 组织模块
			organizations := authorized.Group("/organizations")
			{
				organizations.GET("", middleware.RoleAuth(master), h.Organization.ListOrganizations)
				organizations.POST("", middleware.RoleAuth(master), h.Organization.CreateOrganization)
				organizations.GET("/:id", h.Organization.GetOrganization)
				organizations.GET("/:id/units", h.Organization.ListUnits)
				organizations.POST("/:id/regions", middleware.RoleAuth(master, roleGO), h.Organization.CreateRegion)
				organizations.POST("/:id/stores", middleware.RoleAuth(master, roleGO), h.Organization.CreateStore)
				organizations.POST("/:id/store-managers/import", middleware.RoleAuth(master, roleGO), h.User.ImportStoreManagers)
			}

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/me/permissions", h.User.GetEffectivePermissions)
				users.GET("/me/units", h.User.GetAccessibleUnits)
				users.GET("", middleware.RoleAuth(master, roleGO), h.User.ListUsers)
				users.POST("", middleware.RoleAuth(master, roleGO), h.User.CreateUser)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // 管理者或本人（Service 层鉴权）
				users.PUT("/:id/status", h.User.UpdateUserStatus)
			}
		}
	}

	return r
}
