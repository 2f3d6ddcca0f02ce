// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/sellerdash/backend-go/internal/api/handlers"
	"github.com/andresuchdata/sellerdash/backend-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Imports  handlers.OrderImporter
	Orders   handlers.OrderBrowser
	Shipping handlers.ShippingImporter
	Settings handlers.ColumnSettings
	DB       handlers.Pinger
}

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.TenantHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	if services == nil {
		services = &Services{}
	}
	router.GET("/health", handlers.NewHealthHandler(services.DB).Health)

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Tenant())

	if services.Imports != nil {
		importHandler := handlers.NewImportHandler(services.Imports, opts.MaxUploadBytes)
		importGroup := apiGroup.Group("/imports")
		{
			importGroup.POST("/orders", importHandler.ImportOrders)
			importGroup.POST("/orders/preview", importHandler.PreviewOrders)
			importGroup.GET("/runs", importHandler.ListRuns)
			importGroup.POST("/runs/:id/replay", importHandler.ReplayRun)
		}
	}

	if services.Orders != nil {
		orderHandler := handlers.NewOrderHandler(services.Orders)
		apiGroup.GET("/orders", orderHandler.ListOrders)
		apiGroup.GET("/orders/:order_id/items", orderHandler.ListLineItems)
		apiGroup.GET("/variants", orderHandler.ListVariants)
		apiGroup.PATCH("/variants/:id/cost", orderHandler.SetVariantCost)
	}

	if services.Shipping != nil {
		shippingHandler := handlers.NewShippingHandler(services.Shipping, opts.MaxUploadBytes)
		apiGroup.POST("/imports/shipping", shippingHandler.ImportShipping)
		shippingGroup := apiGroup.Group("/shipping")
		{
			shippingGroup.GET("/labels", shippingHandler.ListLabels)
			shippingGroup.PATCH("/labels/:id/order", shippingHandler.LinkLabel)
		}
	}

	if services.Settings != nil {
		settingsHandler := handlers.NewSettingsHandler(services.Settings)
		settingsGroup := apiGroup.Group("/settings")
		{
			settingsGroup.GET("/columns", settingsHandler.GetColumns)
			settingsGroup.PUT("/columns", settingsHandler.PutColumns)
			settingsGroup.DELETE("/columns", settingsHandler.DeleteColumns)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
