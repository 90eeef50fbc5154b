package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/observer"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// twilioTerminalStatuses are the callback statuses that end a call. Anything
// else (ringing, in-progress) is acknowledged without logging usage.
var twilioTerminalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

// twilioStatusCallback receives Twilio call status updates. Only terminal
// statuses produce a usage log row; every request is answered with a plain
// 200 "OK" so the vendor never retries on our internal failures.
func (h *Handlers) twilioStatusCallback(c *gin.Context) {
	providerID, fields, ok := webhookRequest(c, "twilio")
	if !ok {
		return
	}

	status := fields["CallStatus"]
	if !twilioTerminalStatuses[status] {
		observer.IncWebhookCallback("twilio", "ignored")
		logger.FromContext(c.Request.Context()).Debug("Ignoring non-terminal Twilio callback",
			zap.Int64("provider_id", providerID),
			zap.String("call_sid", fields["CallSid"]),
			zap.String("status", status))
		respondOK(c)
		return
	}

	success := status == "completed"
	duration := parseDuration(fields["CallDuration"])
	h.recordWebhookUsage(c, "twilio", providerID, success, duration, fields)
	respondOK(c)
}

// exotelStatusCallback receives Exotel status updates. Exotel payloads vary
// in field naming, so the status and duration are probed across the known
// variants. Every POST logs usage; there is no terminal-status filter.
func (h *Handlers) exotelStatusCallback(c *gin.Context) {
	providerID, fields, ok := webhookRequest(c, "exotel")
	if !ok {
		return
	}

	status := firstField(fields, "Status", "status", "CallStatus")
	duration := parseDuration(firstField(fields, "CallDuration", "duration", "call_duration"))
	h.recordWebhookUsage(c, "exotel", providerID, isCompletedStatus(status), duration, fields)
	respondOK(c)
}

// ubonaStatusCallback receives Ubona status updates with the same
// unconditional-logging behavior as Exotel.
func (h *Handlers) ubonaStatusCallback(c *gin.Context) {
	providerID, fields, ok := webhookRequest(c, "ubona")
	if !ok {
		return
	}

	status := firstField(fields, "status", "Status")
	duration := parseDuration(firstField(fields, "duration", "CallDuration", "call_duration"))
	h.recordWebhookUsage(c, "ubona", providerID, isCompletedStatus(status), duration, fields)
	respondOK(c)
}

// webhookRequest parses the provider id and form payload. A malformed
// provider id is still acknowledged with 200 "OK"; the vendor cannot fix it
// by retrying.
func webhookRequest(c *gin.Context, vendor string) (int64, map[string]string, bool) {
	providerID, err := strconv.ParseInt(c.Param("provider_id"), 10, 64)
	if err != nil || providerID <= 0 {
		observer.IncWebhookCallback(vendor, "error")
		logger.FromContext(c.Request.Context()).Warn("Webhook with unusable provider id",
			zap.String("vendor", vendor),
			zap.String("provider_id", c.Param("provider_id")))
		respondOK(c)
		return 0, nil, false
	}

	if err := c.Request.ParseForm(); err != nil {
		observer.IncWebhookCallback(vendor, "error")
		logger.FromContext(c.Request.Context()).Warn("Webhook with unparsable form body",
			zap.String("vendor", vendor),
			zap.Int64("provider_id", providerID),
			zap.Error(err))
		respondOK(c)
		return 0, nil, false
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for key := range c.Request.PostForm {
		fields[key] = c.Request.PostForm.Get(key)
	}
	return providerID, fields, true
}

func (h *Handlers) recordWebhookUsage(c *gin.Context, vendor string, providerID int64, success bool, duration float64, fields map[string]string) {
	ctx := c.Request.Context()
	payload := utils.MustMarshalJSON(fields)

	if err := h.usage.RecordCallUsage(ctx, providerID, success, duration, payload); err != nil {
		observer.IncWebhookCallback(vendor, "error")
		logger.FromContext(ctx).Error("Failed to record webhook usage",
			zap.String("vendor", vendor),
			zap.Int64("provider_id", providerID),
			zap.Error(err))
		return
	}
	observer.IncWebhookCallback(vendor, "logged")
}

// firstField returns the first present key's value, or "unknown".
func firstField(fields map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != "" {
			return value
		}
	}
	return "unknown"
}

// isCompletedStatus classifies the Exotel/Ubona status vocabulary.
func isCompletedStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "answered", "success":
		return true
	}
	return false
}

func parseDuration(raw string) float64 {
	if raw == "" || raw == "unknown" {
		return 0
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return duration
}

func respondOK(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
