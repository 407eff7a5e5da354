package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bizsuite/bizsuite/internal/dashboard"
	"github.com/bizsuite/bizsuite/internal/models"
	"github.com/bizsuite/bizsuite/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthChecker is implemented by *db.Database
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler holds the dependencies of every route
type Handler struct {
	contacts  *services.ContactService
	dashboard *dashboard.Aggregator
	health    HealthChecker
}

// NewHandler creates a new handler. health may be nil when the database was
// unreachable at startup; /ready then reports unavailable.
func NewHandler(contacts *services.ContactService, agg *dashboard.Aggregator, health HealthChecker) *Handler {
	return &Handler{contacts: contacts, dashboard: agg, health: health}
}

// ListContacts handles GET /contacts
func (h *Handler) ListContacts(c *gin.Context) {
	var filter models.ContactFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondValidation(c, err)
		return
	}
	orgID := c.GetString(ContextOrganizationID)

	if includeCompany(c) {
		contacts, err := h.contacts.ListWithCompany(c.Request.Context(), orgID, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.OK(contacts))
		return
	}

	contacts, err := h.contacts.List(c.Request.Context(), orgID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(contacts))
}

// GetContact handles GET /contacts/:id
func (h *Handler) GetContact(c *gin.Context) {
	orgID := c.GetString(ContextOrganizationID)
	id := c.Param("id")

	if includeCompany(c) {
		contact, err := h.contacts.GetByIDWithCompany(c.Request.Context(), orgID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if contact == nil {
			respondError(c, services.ErrContactNotFound)
			return
		}
		c.JSON(http.StatusOK, models.OK(contact))
		return
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), orgID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if contact == nil {
		respondError(c, services.ErrContactNotFound)
		return
	}
	c.JSON(http.StatusOK, models.OK(contact))
}

// CreateContact handles POST /contacts
func (h *Handler) CreateContact(c *gin.Context) {
	var in models.CreateContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondValidation(c, err)
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), c.GetString(ContextOrganizationID), c.GetString(ContextUserID), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(contact))
}

// UpdateContact handles PUT /contacts/:id
func (h *Handler) UpdateContact(c *gin.Context) {
	var in models.UpdateContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondValidation(c, err)
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), c.GetString(ContextOrganizationID), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(contact))
}

// DeleteContact handles DELETE /contacts/:id
func (h *Handler) DeleteContact(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.GetString(ContextOrganizationID), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(models.MessageData{Message: "Contact deleted"}))
}

// DashboardSummary handles GET /dashboard/summary. The module API is called
// with the caller's own token.
func (h *Handler) DashboardSummary(c *gin.Context) {
	summary := h.dashboard.SummaryAs(c.Request.Context(), c.GetString(ContextAccessToken))
	c.JSON(http.StatusOK, models.OK(summary))
}

// Health handles /ready
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.health == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database not initialized",
		})
		return
	}
	if err := h.health.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   ServiceName,
	})
}

func includeCompany(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.Query("includeCompany"))
	return err == nil && v
}
