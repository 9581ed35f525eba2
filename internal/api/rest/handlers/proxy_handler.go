package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colabah/style-dna-service/internal/api/rest/middleware"
	"github.com/colabah/style-dna-service/internal/service"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// ProxyHandler serves the storefront app proxy routes. Sub-route dispatch
// happens here because the proxy forwards everything under one prefix.
type ProxyHandler struct {
	service *service.StyleProfileService
	log     *logger.Logger
}

// NewProxyHandler creates a new app proxy handler
func NewProxyHandler(svc *service.StyleProfileService, log *logger.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		log:     log,
	}
}

// HandleAction dispatches a proxied POST by its sub-path
func (h *ProxyHandler) HandleAction(c *gin.Context) {
	action := strings.Trim(c.Param("action"), "/")

	switch {
	case strings.Contains(action, "style-dna"):
		h.handleStyleDNA(c)
	case strings.Contains(action, "create-account"):
		h.handleCreateAccount(c)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown route"})
	}
}

// sessionSaveForm is the storefront style-save form
type sessionSaveForm struct {
	Style string `form:"style" binding:"required"`
}

// createAccountForm is the storefront account-creation form
type createAccountForm struct {
	Email string `form:"email" binding:"required,email"`
	Style string `form:"style" binding:"required"`
}

// handleStyleDNA saves the style for the logged-in storefront customer, or
// acknowledges a guest submission without touching the Admin API.
func (h *ProxyHandler) handleStyleDNA(c *gin.Context) {
	var form sessionSaveForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Warn("Invalid style-dna request: %v", err)
		respondBindingError(c, err)
		return
	}

	loggedInCustomerID := c.GetString(middleware.LoggedInCustomerKey)

	outcome, err := h.service.SaveForSession(c.Request.Context(), loggedInCustomerID, form.Style)
	if err != nil {
		h.log.Error("Session save failed: %v", err)
		respondError(c, err)
		return
	}

	respondOutcome(c, outcome)
}

// handleCreateAccount resolves the email and updates or provisions the account
func (h *ProxyHandler) handleCreateAccount(c *gin.Context) {
	var form createAccountForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Warn("Invalid create-account request: %v", err)
		respondBindingError(c, err)
		return
	}

	h.log.Info("Create-account submission for %s", form.Email)

	outcome, err := h.service.CreateOrUpdate(c.Request.Context(), form.Email, form.Style)
	if err != nil {
		h.log.Error("Create-account failed for %s: %v", form.Email, err)
		respondError(c, err)
		return
	}

	respondOutcome(c, outcome)
}
