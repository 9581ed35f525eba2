package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colabah/style-dna-service/internal/domain"
	"github.com/colabah/style-dna-service/internal/service"
	"github.com/colabah/style-dna-service/pkg/logger"
)

// StyleHandler serves the embedded-admin save form
type StyleHandler struct {
	service *service.StyleProfileService
	log     *logger.Logger
}

// NewStyleHandler creates a new admin style handler
func NewStyleHandler(svc *service.StyleProfileService, log *logger.Logger) *StyleHandler {
	return &StyleHandler{
		service: svc,
		log:     log,
	}
}

// adminSaveForm is the form the embedded admin page posts
type adminSaveForm struct {
	CustomerID string `form:"customerId" binding:"required"`
	StyleDNA   string `form:"styleDNA" binding:"required"`
}

// SaveStyleDNA writes the style metafield for an explicit customer GID
func (h *StyleHandler) SaveStyleDNA(c *gin.Context) {
	var form adminSaveForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Warn("Invalid admin save request: %v", err)
		respondBindingError(c, err)
		return
	}

	h.log.Info("Received admin save: customer=%s style=%s", form.CustomerID, form.StyleDNA)

	outcome, err := h.service.SaveForCustomer(c.Request.Context(), domain.StyleProfileRequest{
		CustomerID: form.CustomerID,
		StyleValue: form.StyleDNA,
		Mode:       domain.ModeAdmin,
	})
	if err != nil {
		h.log.Error("Admin save failed: %v", err)
		respondError(c, err)
		return
	}

	respondOutcome(c, outcome)
}

// MethodNotAllowed rejects GET on the form-post routes
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Use POST method"})
}
