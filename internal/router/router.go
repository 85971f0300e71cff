// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/cache"
	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/handlers"
	"github.com/greensupply/greensupply-backend/internal/middleware"
	"github.com/greensupply/greensupply-backend/internal/services"
	"github.com/greensupply/greensupply-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	groupCache := cache.New(cfg.Redis)
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	routeService := services.NewRouteService(cfg)
	regionService := services.NewRegionService(db)

	businessService := services.NewBusinessService(db, cfg, regionService)
	listingService := services.NewListingService(db, cfg, storageService)
	groupService := services.NewGroupService(db, cfg, routeService, notificationService, groupCache)
	orderService := services.NewOrderService(db, routeService)
	dashboardService := services.NewDashboardService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg)
	recommendationService := services.NewRecommendationService(cfg, groupService)

	// Initialize handlers
	businessHandler := handlers.NewBusinessHandler(businessService, cfg)
	listingHandler := handlers.NewListingHandler(listingService)
	groupHandler := handlers.NewGroupHandler(groupService)
	orderHandler := handlers.NewOrderHandler(orderService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	regionHandler := handlers.NewRegionHandler(regionService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	recommendHandler := handlers.NewRecommendHandler(recommendationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Region routes
		regions := v1.Group("/regions")
		{
			regions.GET("", regionHandler.GetRegions)
			regions.GET("/resolve", regionHandler.ResolveRegion)
		}

		// Business routes
		businesses := v1.Group("/businesses")
		{
			businesses.POST("/register", businessHandler.Register)

			protected := businesses.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/me", businessHandler.GetProfile)
				protected.PUT("/me", businessHandler.UpdateProfile)
				protected.GET("/me/dashboard", dashboardHandler.GetBusinessDashboard)
				protected.GET("/me/orders", orderHandler.GetBusinessOrders)
			}
		}

		// Product catalog
		v1.GET("/products", listingHandler.GetProducts)

		// Listing routes
		listings := v1.Group("/listings")
		{
			listings.GET("", middleware.OptionalAuth(), listingHandler.GetListings)
			listings.GET("/:id", middleware.OptionalAuth(), listingHandler.GetListing)
		}

		// Buying group routes
		groups := v1.Group("/groups")
		{
			groups.GET("", middleware.OptionalAuth(), groupHandler.GetGroups)
			groups.GET("/:id", middleware.OptionalAuth(), groupHandler.GetGroup)
			groups.GET("/:id/impact", groupHandler.GetGroupImpact)
			groups.GET("/:id/order", middleware.AuthRequired(), orderHandler.GetGroupOrder)
			groups.GET("/:id/route", middleware.AuthRequired(), orderHandler.GetRoutePosition)

			protected := groups.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", groupHandler.CreateGroup)
				protected.POST("/:id/join", middleware.JoinRateLimit(), groupHandler.JoinGroup)
				protected.POST("/:id/payments/intent", paymentHandler.CreateSharePaymentIntent)
			}
		}

		// Packaging recommendations
		v1.POST("/recommend", middleware.OptionalAuth(), recommendHandler.RecommendGroupPackaging)

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/confirm", paymentHandler.ConfirmSharePayment)
		}

		// Supplier routes
		supplier := v1.Group("/supplier")
		supplier.Use(middleware.AuthRequired(), middleware.SupplierRequired())
		{
			supplier.POST("/listings", listingHandler.CreateListing)
			supplier.PUT("/listings/:id", listingHandler.UpdateListing)
			supplier.POST("/listings/:id/images", middleware.UploadRateLimit(), listingHandler.UploadListingImage)
			supplier.POST("/groups/:id/approve", groupHandler.ApproveGroup)
			supplier.GET("/groups/:id/payments", paymentHandler.GetGroupShares)
			supplier.GET("/orders", orderHandler.GetSupplierOrders)
		}
	}

	return r
}
