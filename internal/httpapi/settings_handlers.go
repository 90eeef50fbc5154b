package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/renewalhq/api/call-provider-service/internal/usecase"
	"gitlab.com/renewalhq/api/call-provider-service/internal/validator"
)

func (h *Handlers) getProviderSettings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	settings, err := h.settings.GetSettingsForProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handlers) updateProviderSettings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var update usecase.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := validator.Validate(update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settings.UpdateSettings(c.Request.Context(), id, update)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// getCallRules exposes the resolved shaping rules. Resolution never fails;
// with no settings rows the hardcoded defaults come back.
func (h *Handlers) getCallRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.GetCallRules(c.Request.Context()))
}
