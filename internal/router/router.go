package router

import (
	"github.com/farmavida/farmavida-backend/config"
	"github.com/farmavida/farmavida-backend/internal/app/controller"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	catalogController  *controller.CatalogController
	cartController     *controller.CartController
	cartFeedController *controller.CartFeedController
	checkoutController *controller.CheckoutController
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	catalogController *controller.CatalogController,
	cartController *controller.CartController,
	cartFeedController *controller.CartFeedController,
	checkoutController *controller.CheckoutController,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		catalogController:  catalogController,
		cartController:     cartController,
		cartFeedController: cartFeedController,
		checkoutController: checkoutController,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
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
			"message": "FarmaVida API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.catalogController.ListProducts)
			products.GET("/:id", r.catalogController.GetProduct)
			products.GET("/slug/:slug", r.catalogController.GetProductBySlug)
		}

		v1.GET("/categories", r.catalogController.ListCategories)
		v1.GET("/body-systems", r.catalogController.ListBodySystems)
		v1.GET("/conditions", r.catalogController.ListConditions)

		cart := v1.Group("/cart")
		cart.Use(r.sessionMiddleware.Identify())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PATCH("/items/:id", r.cartController.SetQuantity)
			cart.POST("/items/:id/increase", r.cartController.IncreaseQuantity)
			cart.POST("/items/:id/decrease", r.cartController.DecreaseQuantity)
			cart.DELETE("/items/:id", r.cartController.RemoveLine)
			cart.GET("/feed", r.cartFeedController.Connect)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.sessionMiddleware.Identify())
		{
			checkout.GET("/summary", r.checkoutController.GetSummary)
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
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-Token")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "X-Session-Token")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
