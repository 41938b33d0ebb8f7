package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tnmle/vastra-backend/config"
	"github.com/tnmle/vastra-backend/internal/app/controller"
	"github.com/tnmle/vastra-backend/internal/authz"
	"github.com/tnmle/vastra-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	productController   *controller.ProductController
	cartController      *controller.CartController
	orderController     *controller.OrderController
	exportController    *controller.ExportController
	dashboardController *controller.DashboardController
	feedController      *controller.FeedController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	exportController *controller.ExportController,
	dashboardController *controller.DashboardController,
	feedController *controller.FeedController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		productController:   productController,
		cartController:      cartController,
		orderController:     orderController,
		exportController:    exportController,
		dashboardController: dashboardController,
		feedController:      feedController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Vastra API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		// Storefront catalog, readable by anyone
		v1.GET("/products", r.authMiddleware.OptionalAuthenticate(), r.productController.ListProducts)
		v1.GET("/products/:id", r.productController.GetProduct)
		v1.GET("/categories", r.productController.ListCategories)

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
		}

		// Checkout accepts guests; a logged-in caller is attached as owner
		v1.POST("/orders", r.authMiddleware.OptionalAuthenticate(), r.orderController.Checkout)

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetMyOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		{
			admin.POST("/products",
				r.authMiddleware.RequirePermission(authz.ResourceProduct, authz.ActionWrite),
				r.productController.CreateProduct,
			)
			admin.PUT("/products/:id",
				r.authMiddleware.RequirePermission(authz.ResourceProduct, authz.ActionWrite),
				r.productController.UpdateProduct,
			)
			admin.DELETE("/products/:id",
				r.authMiddleware.RequirePermission(authz.ResourceProduct, authz.ActionDelete),
				r.productController.DeleteProduct,
			)

			admin.GET("/products/:id/stock",
				r.authMiddleware.RequirePermission(authz.ResourceInventory, authz.ActionRead),
				r.productController.GetStockMatrix,
			)
			admin.PUT("/products/:id/stock",
				r.authMiddleware.RequirePermission(authz.ResourceInventory, authz.ActionWrite),
				r.productController.SyncStockMatrix,
			)
			admin.PATCH("/products/:id/stock",
				r.authMiddleware.RequirePermission(authz.ResourceInventory, authz.ActionWrite),
				r.productController.UpdateStockLevels,
			)

			admin.POST("/uploads",
				r.authMiddleware.RequirePermission(authz.ResourceProduct, authz.ActionWrite),
				r.productController.CreateUploadURL,
			)

			admin.GET("/orders",
				r.authMiddleware.RequirePermission(authz.ResourceOrder, authz.ActionRead),
				r.orderController.ListOrders,
			)
			admin.GET("/orders/export",
				r.authMiddleware.RequirePermission(authz.ResourceReport, authz.ActionRead),
				r.exportController.ExportOrders,
			)
			admin.GET("/orders/:id",
				r.authMiddleware.RequirePermission(authz.ResourceOrder, authz.ActionRead),
				r.orderController.GetOrder,
			)
			admin.PUT("/orders/:id/status",
				r.authMiddleware.RequirePermission(authz.ResourceOrder, authz.ActionWrite),
				r.orderController.UpdateStatus,
			)

			admin.GET("/dashboard",
				r.authMiddleware.RequirePermission(authz.ResourceDashboard, authz.ActionRead),
				r.dashboardController.GetOverview,
			)
			admin.GET("/audit",
				r.authMiddleware.RequirePermission(authz.ResourceAudit, authz.ActionRead),
				r.dashboardController.ListAuditLog,
			)

			admin.GET("/feed",
				r.authMiddleware.RequirePermission(authz.ResourceOrder, authz.ActionRead),
				r.feedController.Connect,
			)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
