package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/renewalhq/api/call-provider-service/internal/apperrors"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/internal/usecase"
)

// Handlers bundles the services behind the HTTP surface. The log repo is
// injected directly: log listings are plain reads with no business rules.
type Handlers struct {
	providers *usecase.ProviderService
	health    *usecase.HealthService
	usage     *usecase.UsageService
	settings  *usecase.SettingsService
	dispatch  *usecase.DispatchService
	logs      storage.LogRepo
}

// NewHandlers creates the handler set.
func NewHandlers(
	providers *usecase.ProviderService,
	health *usecase.HealthService,
	usage *usecase.UsageService,
	settings *usecase.SettingsService,
	dispatch *usecase.DispatchService,
	logs storage.LogRepo,
) *Handlers {
	return &Handlers{
		providers: providers,
		health:    health,
		usage:     usage,
		settings:  settings,
		dispatch:  dispatch,
		logs:      logs,
	}
}

// NewRouter wires all routes. Webhook receivers sit outside the API group:
// vendors call them unauthenticated with only the provider id as correlation.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestContext(), AccessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/twilio/status-callback/:provider_id", h.twilioStatusCallback)
	r.POST("/exotel/status-callback/:provider_id", h.exotelStatusCallback)
	r.POST("/ubona/status-callback/:provider_id", h.ubonaStatusCallback)

	api := r.Group("/api/v1")
	{
		providers := api.Group("/providers")
		{
			providers.POST("", h.createCallProvider)
			providers.GET("", h.listCallProviders)
			providers.GET("/health_status", h.bulkHealthStatus)
			providers.GET("/statistics", h.callProviderStatistics)
			providers.GET("/:id", h.getCallProvider)
			providers.DELETE("/:id", h.deleteCallProvider)
			providers.PATCH("/:id/activate", h.activateCallProvider)
			providers.PATCH("/:id/deactivate", h.deactivateCallProvider)
			providers.PATCH("/:id/set-default", h.setDefaultCallProvider)
			providers.POST("/:id/credentials", h.updateCallProviderCredentials)
			providers.POST("/:id/health_check", h.healthCheckCallProvider)
			providers.POST("/:id/reset_usage", h.resetCallUsage)
			providers.POST("/:id/test", h.testCallProvider)
			providers.GET("/:id/statistics", h.getCallProviderStatistics)
			providers.GET("/:id/settings", h.getProviderSettings)
			providers.PATCH("/:id/settings", h.updateProviderSettings)
			providers.GET("/:id/test-results", h.listCallTestResults)
		}

		botProviders := api.Group("/bot-providers")
		{
			botProviders.POST("", h.createBotProvider)
			botProviders.GET("", h.listBotProviders)
			botProviders.GET("/statistics", h.botProviderStatistics)
			botProviders.GET("/:id", h.getBotProvider)
			botProviders.DELETE("/:id", h.deleteBotProvider)
			botProviders.PATCH("/:id/activate", h.activateBotProvider)
			botProviders.PATCH("/:id/deactivate", h.deactivateBotProvider)
			botProviders.PATCH("/:id/set-default", h.setDefaultBotProvider)
			botProviders.POST("/:id/credentials", h.updateBotProviderCredentials)
			botProviders.POST("/:id/health_check", h.healthCheckBotProvider)
			botProviders.POST("/:id/reset_usage", h.resetBotUsage)
			botProviders.POST("/:id/test", h.testBotProvider)
			botProviders.GET("/:id/statistics", h.getBotProviderStatistics)
			botProviders.GET("/:id/test-results", h.listBotTestResults)
		}

		api.POST("/calls", h.makeCall)
		api.POST("/bot-calls", h.makeBotCall)

		api.GET("/call-rules", h.getCallRules)

		logs := api.Group("/logs")
		{
			logs.GET("/health", h.listHealthLogs)
			logs.GET("/usage", h.listUsageLogs)
		}
	}

	return r
}

// writeError maps application errors onto HTTP statuses. Health check and
// webhook handlers deliberately bypass this: an unhealthy vendor or a failed
// usage write is still a 200 there.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsNotFoundError(err):
		status = http.StatusNotFound
	case apperrors.IsValidationError(err),
		apperrors.IsBadRequestError(err),
		apperrors.IsUnsupportedProviderError(err):
		status = http.StatusBadRequest
	case apperrors.IsDuplicateError(err),
		apperrors.IsConflictError(err),
		apperrors.IsAmbiguousDefaultError(err):
		status = http.StatusConflict
	case apperrors.IsQuotaExceededError(err):
		status = http.StatusTooManyRequests
	case apperrors.IsNotImplementedError(err):
		status = http.StatusNotImplemented
	case apperrors.IsTimeoutError(err):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses the :id path segment. On failure it writes a 400 and returns
// false; the handler must return immediately.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return 0, false
	}
	return id, true
}
