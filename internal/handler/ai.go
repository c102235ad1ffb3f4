package handlers

import (
	"EmergencyAssist/internal/services"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

type analyzeEmergencyRequest struct {
	Text string `json:"text" binding:"required"`
}

type placeholderTranslateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

func (h *Handlers) handleAnalyzeScene(c *gin.Context) {
	var req services.SceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, h.msg(c, "image_required"), err)
		return
	}
	res, err := h.assistant.AnalyzeScene(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_analyze_scene"))
		return
	}
	response.JSON(c, res)
}

func (h *Handlers) handleChat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, h.msg(c, "message_required"), err)
		return
	}
	res, err := h.assistant.Chat(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_chat"))
		return
	}
	response.JSON(c, res)
}

func (h *Handlers) handleAnalyzeEmergency(c *gin.Context) {
	var req analyzeEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, h.msg(c, "text_required"), err)
		return
	}
	res, err := h.assistant.AnalyzeEmergency(c.Request.Context(), req.Text)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_analyze_emergency"))
		return
	}
	response.JSON(c, res)
}

func (h *Handlers) handleTranslate(c *gin.Context) {
	var req services.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, h.msg(c, "invalid_request"), err)
		return
	}
	res, err := h.translator.Translate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_translate"))
		return
	}
	response.JSON(c, res)
}

// handlePlaceholderTranslate 占位接口，返回固定结构
func (h *Handlers) handlePlaceholderTranslate(c *gin.Context) {
	var req placeholderTranslateRequest
	_ = c.ShouldBindJSON(&req)
	response.JSON(c, services.CannedTranslation(req.Text, req.TargetLanguage))
}

// handleDetectEmotion 占位接口
func (h *Handlers) handleDetectEmotion(c *gin.Context) {
	response.JSON(c, services.CannedEmotion())
}
