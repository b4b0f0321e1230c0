// internal/api/routes/routes.go
package routes

import (
	"context"
	"time"

	"facility-ops-api-server/internal/api/handlers"
	"facility-ops-api-server/internal/api/middleware"
	"facility-ops-api-server/internal/api/response"
	"facility-ops-api-server/internal/apperror"
	"facility-ops-api-server/internal/models"
	"facility-ops-api-server/internal/services"
	"facility-ops-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are what the router needs from main.
type Dependencies struct {
	Services       *services.Services
	Hub            *socket.Hub
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
	Logger         *zap.Logger
}

// SetupRouter builds the gin engine with every route of the API.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))
	router.MaxMultipartMemory = services.MaxTemplateSize
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.NotFound("Route %s not found", c.Request.URL.Path))
	})

	svc := deps.Services
	authHandler := &handlers.AuthHandler{Auth: svc.Auth}
	facilityHandler := &handlers.FacilityHandler{Facilities: svc.Facilities}
	employeeHandler := &handlers.EmployeeHandler{Employees: svc.Employees}
	catalogHandler := &handlers.CatalogHandler{Catalogs: svc.Catalogs}
	iotCatalogHandler := &handlers.CatalogHandler{Catalogs: svc.IoTCatalogs}
	checklistHandler := &handlers.DailyChecklistHandler{Checklists: svc.Checklists}
	webSocketHandler := &handlers.WebSocketHandler{Hub: deps.Hub, Auth: svc.Auth, Logger: deps.Logger}
	healthHandler := &handlers.HealthHandler{Ping: deps.Ping}

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		if deps.Hub != nil {
			api.GET("/ws", webSocketHandler.ServeWs)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.Authenticate(svc.Auth), authHandler.Me)
		}

		protected := api.Group("/")
		protected.Use(middleware.Authenticate(svc.Auth))
		{
			facilities := protected.Group("/facilities")
			{
				adminOnly := middleware.Authorize(models.RoleSuperAdmin, models.RoleAdmin)
				facilities.POST("", adminOnly, facilityHandler.CreateFacility)
				facilities.GET("", facilityHandler.GetAllFacilities)
				facilities.GET("/:id", facilityHandler.GetFacilityByID)
				facilities.PUT("/:id", facilityHandler.UpdateFacility)
				facilities.DELETE("/:id", adminOnly, facilityHandler.DeleteFacility)
			}

			employees := protected.Group("/employees")
			{
				employees.POST("", employeeHandler.CreateEmployee)
				employees.GET("", employeeHandler.ListEmployees)
				employees.GET("/:id", employeeHandler.GetEmployee)
				employees.PUT("/:id", employeeHandler.UpdateEmployee)
				employees.DELETE("/:id", employeeHandler.DeleteEmployee)
			}

			registerCatalog(protected.Group("/services/:facilityId"), catalogHandler, false)
			registerCatalog(protected.Group("/iot-services/:facilityId"), iotCatalogHandler, true)

			handlers.NewFloorLocationHandler(svc.FloorLocations).Register(protected.Group("/floor-locations"))
			handlers.NewHygieneSectionHandler(svc.Hygiene).Register(protected.Group("/hygiene-sections"))
			handlers.NewHygieneChecklistHandler(svc.Hygiene).Register(protected.Group("/hygiene-checklists"))
			checklistHandler.Register(protected.Group("/daily-checklists"))

			handlers.NewResourceHandler[models.Roster](svc.Rosters, "Roster").
				Register(protected.Group("/rosters"))
			handlers.NewResourceHandler[models.LeavePlanner](svc.LeavePlanners, "Leave request",
				handlers.QueryFilter{Param: "employeeId", Field: "employeeId", ObjectID: true},
				handlers.QueryFilter{Param: "status", Field: "status"},
			).Register(protected.Group("/leave-planners"))
			handlers.NewResourceHandler[models.ShiftSchedule](svc.ShiftSchedules, "Shift schedule",
				handlers.QueryFilter{Param: "isActive", Field: "isActive", Bool: true},
			).Register(protected.Group("/shift-schedules"))
			handlers.NewResourceHandler[models.WeekoffPlanner](svc.WeekoffPlanners, "Weekoff planner",
				handlers.QueryFilter{Param: "employeeId", Field: "employeeId", ObjectID: true},
			).Register(protected.Group("/weekoff-planners"))
			handlers.NewResourceHandler[models.ServiceProvider](svc.ServiceProviders, "Service provider",
				handlers.QueryFilter{Param: "category", Field: "category"},
				handlers.QueryFilter{Param: "status", Field: "status"},
			).Register(protected.Group("/service-providers"))
		}
	}

	return router
}

func registerCatalog(group *gin.RouterGroup, h *handlers.CatalogHandler, iot bool) {
	group.POST("/initialize", h.Initialize)
	group.GET("", h.Get)
	group.DELETE("", h.Delete)
	group.POST("/categories", h.AddCategory)
	group.POST("/categories/:categoryId/services", h.AddService)
	group.PATCH("/categories/:categoryId/services/:serviceId", h.UpdateService)
	group.PATCH("/categories/:categoryId/services/:serviceId/toggle", h.ToggleService)
	group.DELETE("/categories/:categoryId/services/:serviceId", h.RemoveService)
	if iot {
		group.PATCH("/iot-enabled", h.SetIoTEnabled)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
