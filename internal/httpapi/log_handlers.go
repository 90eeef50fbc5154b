package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/renewalhq/api/call-provider-service/internal/model"
	"gitlab.com/renewalhq/api/call-provider-service/internal/storage"
)

func (h *Handlers) listHealthLogs(c *gin.Context) {
	filter := storage.HealthLogFilter{
		ProviderFamily: c.Query("provider_family"),
	}

	if id, ok := optionalInt64Query(c, "provider_id"); !ok {
		return
	} else if id != nil {
		filter.ProviderID = *id
	}
	if raw := c.Query("is_healthy"); raw != "" {
		healthy, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_healthy value"})
			return
		}
		filter.IsHealthy = &healthy
	}
	var ok bool
	if filter.Since, ok = optionalTimeQuery(c, "since"); !ok {
		return
	}
	if filter.Until, ok = optionalTimeQuery(c, "until"); !ok {
		return
	}
	if limit, ok := optionalIntQuery(c, "limit"); !ok {
		return
	} else if limit != nil {
		filter.Limit = *limit
	}

	logs, err := h.logs.ListHealthLogs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func (h *Handlers) listUsageLogs(c *gin.Context) {
	filter := storage.UsageLogFilter{
		ProviderFamily: c.Query("provider_family"),
	}

	if id, ok := optionalInt64Query(c, "provider_id"); !ok {
		return
	} else if id != nil {
		filter.ProviderID = *id
	}
	var ok bool
	if filter.Since, ok = optionalTimeQuery(c, "since"); !ok {
		return
	}
	if filter.Until, ok = optionalTimeQuery(c, "until"); !ok {
		return
	}
	if limit, ok := optionalIntQuery(c, "limit"); !ok {
		return
	} else if limit != nil {
		filter.Limit = *limit
	}

	logs, err := h.logs.ListUsageLogs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

func (h *Handlers) listCallTestResults(c *gin.Context) {
	h.listTestResults(c, model.FamilyCall)
}

func (h *Handlers) listBotTestResults(c *gin.Context) {
	h.listTestResults(c, model.FamilyBot)
}

func (h *Handlers) listTestResults(c *gin.Context, family string) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit := 0
	if raw, ok := optionalIntQuery(c, "limit"); !ok {
		return
	} else if raw != nil {
		limit = *raw
	}

	results, err := h.logs.ListTestResults(c.Request.Context(), family, id, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func optionalInt64Query(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " value"})
		return nil, false
	}
	return &value, true
}

func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " value"})
		return nil, false
	}
	return &value, true
}

func optionalTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " value, expected RFC3339"})
		return nil, false
	}
	return &value, true
}
