package handlers

import (
	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultCountry = "US"

func (h *Handlers) handleListContacts(c *gin.Context) {
	list, err := h.store.GetEmergencyContacts(c.Request.Context(), c.DefaultQuery("country", defaultCountry))
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_contacts"))
		return
	}
	response.JSON(c, list)
}

func (h *Handlers) handleListContactsByType(c *gin.Context) {
	list, err := h.store.GetEmergencyContactsByType(c.Request.Context(), c.Param("type"), c.DefaultQuery("country", defaultCountry))
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_contacts"))
		return
	}
	response.JSON(c, list)
}

func (h *Handlers) handleCreateContact(c *gin.Context) {
	var in models.ContactInsert
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, h.msg(c, "invalid_contact_data"), err)
		return
	}
	contact, err := h.store.CreateEmergencyContact(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_create_contact"))
		return
	}
	response.Created(c, contact)
}
