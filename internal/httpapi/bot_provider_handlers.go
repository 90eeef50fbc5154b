package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
	"gitlab.com/renewalhq/api/call-provider-service/internal/usecase"
	"gitlab.com/renewalhq/api/call-provider-service/internal/validator"
)

// botProviderPayload is the create-request body for a bot provider.
type botProviderPayload struct {
	Name         string `json:"name"`
	ProviderType string `json:"provider_type"`

	UbonaAPIKey     string `json:"ubona_api_key"`
	UbonaAPIURL     string `json:"ubona_api_url"`
	UbonaAccountSID string `json:"ubona_account_sid"`
	UbonaCallerID   string `json:"ubona_caller_id"`
	UbonaBotScript  string `json:"ubona_bot_script"`

	HoaAPIKey     string `json:"hoa_api_key"`
	HoaAPIURL     string `json:"hoa_api_url"`
	HoaAgentID    string `json:"hoa_agent_id"`
	HoaCampaignID string `json:"hoa_campaign_id"`
	HoaWebhookURL string `json:"hoa_webhook_url"`
	HoaBotScript  string `json:"hoa_bot_script"`

	GnaniAPIKey      string `json:"gnani_api_key"`
	GnaniAPIURL      string `json:"gnani_api_url"`
	GnaniBotID       string `json:"gnani_bot_id"`
	GnaniProjectID   string `json:"gnani_project_id"`
	GnaniLanguage    string `json:"gnani_language"`
	GnaniVoiceGender string `json:"gnani_voice_gender"`

	TwilioAccountSID string `json:"twilio_account_sid"`
	TwilioAuthToken  string `json:"twilio_auth_token"`
	TwilioFromNumber string `json:"twilio_from_number"`
	TwilioBotScript  string `json:"twilio_bot_script"`

	DailyLimit         *int `json:"daily_limit"`
	MonthlyLimit       *int `json:"monthly_limit"`
	RateLimitPerMinute *int `json:"rate_limit_per_minute"`
	Priority           *int `json:"priority"`
	IsDefault          bool `json:"is_default"`
	IsActive           bool `json:"is_active"`
}

func (p botProviderPayload) toModel() *model.BotCallingProviderConfig {
	cfg := &model.BotCallingProviderConfig{
		Name:         p.Name,
		ProviderType: p.ProviderType,

		UbonaAPIKey:     p.UbonaAPIKey,
		UbonaAPIURL:     p.UbonaAPIURL,
		UbonaAccountSID: p.UbonaAccountSID,
		UbonaCallerID:   p.UbonaCallerID,
		UbonaBotScript:  p.UbonaBotScript,

		HoaAPIKey:     p.HoaAPIKey,
		HoaAPIURL:     p.HoaAPIURL,
		HoaAgentID:    p.HoaAgentID,
		HoaCampaignID: p.HoaCampaignID,
		HoaWebhookURL: p.HoaWebhookURL,
		HoaBotScript:  p.HoaBotScript,

		GnaniAPIKey:      p.GnaniAPIKey,
		GnaniAPIURL:      p.GnaniAPIURL,
		GnaniBotID:       p.GnaniBotID,
		GnaniProjectID:   p.GnaniProjectID,
		GnaniLanguage:    p.GnaniLanguage,
		GnaniVoiceGender: p.GnaniVoiceGender,

		TwilioAccountSID: p.TwilioAccountSID,
		TwilioAuthToken:  p.TwilioAuthToken,
		TwilioFromNumber: p.TwilioFromNumber,
		TwilioBotScript:  p.TwilioBotScript,

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

func (h *Handlers) createBotProvider(c *gin.Context) {
	var payload botProviderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	cfg := payload.toModel()
	if err := h.providers.CreateBotProvider(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *Handlers) listBotProviders(c *gin.Context) {
	filter, ok := providerFilterFromQuery(c)
	if !ok {
		return
	}

	list, err := h.providers.ListBotProviders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": list, "count": len(list)})
}

func (h *Handlers) getBotProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	cfg, err := h.providers.GetBotProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handlers) deleteBotProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.DeleteBotProvider(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "provider deleted"})
}

func (h *Handlers) activateBotProvider(c *gin.Context) {
	h.setBotProviderActive(c, true)
}

func (h *Handlers) deactivateBotProvider(c *gin.Context) {
	h.setBotProviderActive(c, false)
}

func (h *Handlers) setBotProviderActive(c *gin.Context, active bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.SetBotProviderActive(c.Request.Context(), id, active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

func (h *Handlers) setDefaultBotProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.providers.SetDefaultBotProvider(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_default": true})
}

func (h *Handlers) updateBotProviderCredentials(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var credentials map[string]string
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.providers.UpdateBotProviderCredentials(c.Request.Context(), id, credentials); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "credentials updated"})
}

func (h *Handlers) healthCheckBotProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.health.CheckBotProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) resetBotUsage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req resetUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.usage.ResetBotUsage(c.Request.Context(), id, req.Type); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": req.Type + " usage reset"})
}

func (h *Handlers) testBotProvider(c *gin.Context) {
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

	result, err := h.dispatch.TestBotProvider(c.Request.Context(), id, req.TestNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) getBotProviderStatistics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stats, err := h.usage.BotStatistics(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) botProviderStatistics(c *gin.Context) {
	list, err := h.providers.ListBotProviders(c.Request.Context(), storage.ProviderFilter{})
	if err != nil {
		writeError(c, err)
		return
	}

	stats := make([]usecase.ProviderStatistics, 0, len(list))
	for _, p := range list {
		s, err := h.usage.BotStatistics(c.Request.Context(), p.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		stats = append(stats, *s)
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats, "count": len(stats)})
}

func (h *Handlers) makeBotCall(c *gin.Context) {
	var req usecase.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.dispatch.MakeBotCall(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
