package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/internal/usecase"
	"gitlab.com/renewalhq/api/call-provider-service/internal/validator"
)

// callProviderPayload is the create-request body for a voice provider. Secret
// credential fields are write-only here; the model never serializes them back.
type callProviderPayload struct {
	Name         string `json:"name"`
	ProviderType string `json:"provider_type"`

	TwilioAccountSID        string `json:"twilio_account_sid"`
	TwilioAuthToken         string `json:"twilio_auth_token"`
	TwilioFromNumber        string `json:"twilio_from_number"`
	TwilioStatusCallbackURL string `json:"twilio_status_callback_url"`
	TwilioVoiceURL          string `json:"twilio_voice_url"`

	ExotelAPIKey     string `json:"exotel_api_key"`
	ExotelAPIToken   string `json:"exotel_api_token"`
	ExotelAccountSID string `json:"exotel_account_sid"`
	ExotelSubdomain  string `json:"exotel_subdomain"`
	ExotelCallerID   string `json:"exotel_caller_id"`

	UbonaAPIKey     string `json:"ubona_api_key"`
	UbonaAPIURL     string `json:"ubona_api_url"`
	UbonaAccountSID string `json:"ubona_account_sid"`
	UbonaCallerID   string `json:"ubona_caller_id"`

	DailyLimit         *int `json:"daily_limit"`
	MonthlyLimit       *int `json:"monthly_limit"`
	RateLimitPerMinute *int `json:"rate_limit_per_minute"`
	Priority           *int `json:"priority"`
	IsDefault          bool `json:"is_default"`
	IsActive           bool `json:"is_active"`
}

func (p callProviderPayload) toModel() *model.CallProviderConfig {
	cfg := &model.CallProviderConfig{
		Name:         p.Name,
		ProviderType: p.ProviderType,

		TwilioAccountSID:        p.TwilioAccountSID,
		TwilioAuthToken:         p.TwilioAuthToken,
		TwilioFromNumber:        p.TwilioFromNumber,
		TwilioStatusCallbackURL: p.TwilioStatusCallbackURL,
		TwilioVoiceURL:          p.TwilioVoiceURL,

		ExotelAPIKey:     p.ExotelAPIKey,
		ExotelAPIToken:   p.ExotelAPIToken,
		ExotelAccountSID: p.ExotelAccountSID,
		ExotelSubdomain:  p.ExotelSubdomain,
		ExotelCallerID:   p.ExotelCallerID,

		UbonaAPIKey:     p.UbonaAPIKey,
		UbonaAPIURL:     p.UbonaAPIURL,
		UbonaAccountSID: p.UbonaAccountSID,
		UbonaCallerID:   p.UbonaCallerID,

		DailyLimit:         1000,
		MonthlyLimit:       30000,
		RateLimitPerMinute: 10,
		Priority:           model.PriorityPrimary,
		IsDefault:          p.IsDefault,
		IsActive:           p.IsActive,
	}
	if p.DailyLimit != nil {
		cfg.DailyLimit = *p.DailyLimit
	}
	if p.MonthlyLimit != nil {
		cfg.MonthlyLimit = *p.MonthlyLimit
	}
	if p.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *p.RateLimitPerMinute
	}
	if p.Priority != nil {
		cfg.Priority = *p.Priority
	}
	return cfg
}

func (h *Handlers) createCallProvider(c *gin.Context) {
	var payload callProviderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	cfg := payload.toModel()
	if err := h.providers.CreateCallProvider(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *Handlers) listCallProviders(c *gin.Context) {
	filter, ok := providerFilterFromQuery(c)
	if !ok {
		return
	}

	list, err := h.providers.ListCallProviders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": list, "count": len(list)})
}

func (h *Handlers) getCallProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cfg, err := h.providers.GetCallProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handlers) deleteCallProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.DeleteCallProvider(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "provider deleted"})
}

func (h *Handlers) activateCallProvider(c *gin.Context) {
	h.setCallProviderActive(c, true)
}

func (h *Handlers) deactivateCallProvider(c *gin.Context) {
	h.setCallProviderActive(c, false)
}

func (h *Handlers) setCallProviderActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.SetCallProviderActive(c.Request.Context(), id, active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

func (h *Handlers) setDefaultCallProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.SetDefaultCallProvider(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_default": true})
}

func (h *Handlers) updateCallProviderCredentials(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var credentials map[string]string
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.providers.UpdateCallProviderCredentials(c.Request.Context(), id, credentials); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "credentials updated"})
}

// healthCheckCallProvider runs a live probe. An unhealthy vendor is still a
// 200; the report carries the outcome.
func (h *Handlers) healthCheckCallProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.health.CheckCallProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) bulkHealthStatus(c *gin.Context) {
	bulk, err := h.health.CheckAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulk)
}

type resetUsageRequest struct {
	Type string `json:"type"`
}

func (h *Handlers) resetCallUsage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resetUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.usage.ResetCallUsage(c.Request.Context(), id, req.Type); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": req.Type + " usage reset"})
}

type testProviderRequest struct {
	TestNumber string `json:"test_number" validate:"required"`
}

func (h *Handlers) testCallProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req testProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatch.TestCallProvider(c.Request.Context(), id, req.TestNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) getCallProviderStatistics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stats, err := h.usage.CallStatistics(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// callProviderStatistics aggregates statistics across every non-deleted
// voice provider. Providers whose window aggregation fails report zeroes
// rather than dropping out of the list.
func (h *Handlers) callProviderStatistics(c *gin.Context) {
	list, err := h.providers.ListCallProviders(c.Request.Context(), storage.ProviderFilter{})
	if err != nil {
		writeError(c, err)
		return
	}

	stats := make([]usecase.ProviderStatistics, 0, len(list))
	for _, p := range list {
		s, err := h.usage.CallStatistics(c.Request.Context(), p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		stats = append(stats, *s)
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats, "count": len(stats)})
}

func (h *Handlers) makeCall(c *gin.Context) {
	var req usecase.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatch.MakeCall(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// providerFilterFromQuery builds a list filter from query params. A malformed
// boolean or integer writes a 400 and returns false.
func providerFilterFromQuery(c *gin.Context) (storage.ProviderFilter, bool) {
	filter := storage.ProviderFilter{
		ProviderType: c.Query("provider_type"),
		Status:       c.Query("status"),
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_active value"})
			return filter, false
		}
		filter.IsActive = &active
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority value"})
			return filter, false
		}
		filter.Priority = &priority
	}
	return filter, true
}
