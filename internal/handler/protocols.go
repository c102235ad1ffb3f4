package handlers

import (
	"net/http"
	"strings"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/middleware"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func localize(c *gin.Context, list []models.EmergencyProtocol) []models.EmergencyProtocol {
	lang := middleware.Lang(c)
	for i := range list {
		list[i].Localize(lang)
	}
	return list
}

func (h *Handlers) handleListProtocols(c *gin.Context) {
	list, err := h.store.GetEmergencyProtocols(c.Request.Context())
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_protocols"))
		return
	}
	response.JSON(c, localize(c, list))
}

func (h *Handlers) handleGetProtocol(c *gin.Context) {
	p, err := h.store.GetEmergencyProtocol(c.Request.Context(), c.Param("type"))
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_protocol"))
		return
	}
	if p == nil {
		h.notFound(c, "protocol_not_found")
		return
	}
	p.Localize(middleware.Lang(c))
	response.JSON(c, p)
}

func (h *Handlers) handleSearchProtocols(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Fail(c, http.StatusBadRequest, h.msg(c, "search_query_required"))
		return
	}
	if h.search == nil {
		response.Fail(c, http.StatusServiceUnavailable, h.msg(c, "search_unavailable"))
		return
	}
	list, err := h.search.Search(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_search_protocols"))
		return
	}
	response.JSON(c, localize(c, list))
}

func (h *Handlers) handleCreateProtocol(c *gin.Context) {
	var in models.ProtocolInsert
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, h.msg(c, "invalid_protocol_data"), err)
		return
	}
	p, err := h.store.CreateEmergencyProtocol(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_create_protocol"))
		return
	}
	if h.search != nil {
		if err := h.search.Index(c.Request.Context(), *p); err != nil {
			logger.Warn("index protocol failed", zap.Uint("id", p.ID), zap.Error(err))
		}
	}
	p.Localize(middleware.Lang(c))
	response.Created(c, p)
}
