package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/controllers"
	"github.com/kendall-kelly/repair-shop-api/metrics"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/tracing"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Setup builds the router with every API route registered
func Setup(cfg *config.Config) *gin.Engine {
	utils.RegisterValidatorTagNames()

	router := gin.New()
	router.Use(middleware.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware(tracing.ServiceName))
	}
	router.Use(metrics.Default().Middleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Locale())

	router.GET("/metrics", gin.WrapH(metrics.Default().Handler()))

	requireStaff := middleware.RequireStaff(cfg)
	requireClient := middleware.RequireClient(cfg)

	admin := middleware.RequireRole(models.RoleAdmin)
	adminManager := middleware.RequireRole(models.RoleAdmin, models.RoleManager)
	adminMaster := middleware.RequireRole(models.RoleAdmin, models.RoleMaster)
	orderCreators := middleware.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleMaster)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)

		v1.POST("/auth/login", controllers.Login)
		v1.POST("/client-auth/register", controllers.RegisterClient)
		v1.POST("/client-auth/login", controllers.ClientLogin)
		v1.POST("/client-auth/activate", controllers.ActivateClient)
	}

	// Staff routes
	staff := v1.Group("", requireStaff)
	{
		staff.GET("/auth/profile", controllers.GetProfile)

		users := staff.Group("/users", admin)
		{
			users.GET("", controllers.ListUsers)
			users.GET("/:id", controllers.GetUser)
			users.POST("", controllers.CreateUser)
			users.PUT("/:id", controllers.UpdateUser)
			users.DELETE("/:id", controllers.DeleteUser)
		}

		devices := staff.Group("/devices")
		{
			devices.GET("/types", controllers.ListDeviceTypes)
			devices.POST("/types", admin, controllers.CreateDeviceType)
			devices.GET("/brands", controllers.ListBrands)
			devices.POST("/brands", admin, controllers.CreateBrand)

			devices.GET("", controllers.ListDevices)
			devices.GET("/:id", controllers.GetDevice)
			devices.POST("", adminManager, controllers.CreateDevice)
			devices.PUT("/:id", adminManager, controllers.UpdateDevice)
		}

		services := staff.Group("/services")
		{
			services.GET("", controllers.ListServices)
			services.GET("/:id", controllers.GetService)
			services.POST("", admin, controllers.CreateService)
			services.PUT("/:id", admin, controllers.UpdateService)
			services.DELETE("/:id", admin, controllers.DeleteService)
		}

		clients := staff.Group("/clients")
		{
			clients.GET("", controllers.ListClients)
			clients.GET("/:id", controllers.GetClient)
			clients.GET("/:id/orders", controllers.GetClientOrders)
			clients.POST("", adminManager, controllers.CreateClient)
			clients.PUT("/:id", adminManager, controllers.UpdateClient)
		}

		parts := staff.Group("/parts")
		{
			parts.GET("", controllers.ListParts)
			parts.POST("", admin, controllers.CreatePart)
			parts.PUT("/:id", admin, controllers.UpdatePart)
		}

		orders := staff.Group("/orders")
		{
			orders.POST("", orderCreators, controllers.CreateOrder)
			orders.GET("", controllers.ListOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.PUT("/:id", adminMaster, controllers.UpdateOrder)
			orders.GET("/:id/history", controllers.GetOrderHistory)
			orders.GET("/:id/receipt", controllers.GetOrderReceipt)
			orders.POST("/:id/parts", adminMaster, controllers.UseOrderPart)

			orders.GET("/:id/comments", controllers.ListOrderComments)
			orders.POST("/:id/comments", controllers.AddOrderComment)

			orders.POST("/:id/attachments", controllers.UploadOrderAttachment)
			orders.GET("/:id/attachments", controllers.ListOrderAttachments)
			orders.DELETE("/:id/attachments/:attachmentId", controllers.DeleteOrderAttachment)
		}

		requests := staff.Group("/repair-requests")
		{
			requests.GET("", adminManager, controllers.ListRequests)
			requests.GET("/:id", adminManager, controllers.GetRequest)
			requests.PUT("/:id/status", adminManager, controllers.UpdateRequestStatus)
			requests.POST("/:id/convert", orderCreators, controllers.ConvertRequest)
		}

		reports := staff.Group("/reports", adminManager)
		{
			reports.GET("/sales", controllers.SalesReport)
			reports.GET("/masters", controllers.MastersReport)
			reports.GET("/device-types", controllers.DeviceTypesReport)
		}
	}

	// Client routes
	client := v1.Group("", requireClient)
	{
		client.GET("/client-auth/profile", controllers.GetClientProfile)

		client.POST("/repair-requests", controllers.SubmitRequest)
		client.GET("/repair-requests/my-requests", controllers.ListMyRequests)
		client.GET("/repair-requests/my-requests/:id", controllers.GetMyRequest)

		client.GET("/client/orders", controllers.GetMyOrders)
		client.GET("/client/orders/:id", controllers.GetMyOrder)
		client.GET("/client/orders/:id/comments", controllers.ListMyOrderComments)
		client.POST("/client/orders/:id/comments", controllers.AddMyOrderComment)
	}

	return router
}
