// Package services 组合模型调用与本地降级逻辑，供 HTTP 层使用
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"EmergencyAssist/internal/models"
	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/llm"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/metrics"

	"go.uber.org/zap"
)

const (
	outcomeOK       = "ok"
	outcomeFallback = "fallback"

	defaultEmergencyNumber = "911"
)

// ProtocolLookup 降级回答时按类型查找规程
type ProtocolLookup interface {
	GetEmergencyProtocol(ctx context.Context, protocolType string) (*models.EmergencyProtocol, error)
}

type SceneRequest struct {
	// Image base64 或 data URL
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mimeType"`
	Context  string `json:"context"`
}

type SceneAnalysis struct {
	EmergencyType   string   `json:"emergencyType"`
	Severity        string   `json:"severity"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Source          string   `json:"source"`
}

type ChatRequest struct {
	Message string     `json:"message" binding:"required"`
	History []llm.Turn `json:"history"`
	Context string     `json:"context"`
}

type ChatReply struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback"`
}

// Assistant AI 助手，provider 为 nil 时所有操作走本地降级
type Assistant struct {
	provider        llm.Provider
	classifier      *Classifier
	protocols       ProtocolLookup
	metrics         *metrics.Metrics
	emergencyNumber string
}

type AssistantOption func(*Assistant)

// WithEmergencyNumber 降级回答中提示拨打的号码
func WithEmergencyNumber(number string) AssistantOption {
	return func(a *Assistant) {
		if number != "" {
			a.emergencyNumber = number
		}
	}
}

func NewAssistant(provider llm.Provider, protocols ProtocolLookup, m *metrics.Metrics, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		provider:        provider,
		classifier:      NewClassifier(),
		protocols:       protocols,
		metrics:         m,
		emergencyNumber: defaultEmergencyNumber,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available 是否配置了模型
func (a *Assistant) Available() bool { return a.provider != nil }

func (a *Assistant) generate(ctx context.Context, op string, p llm.Prompt) (string, bool) {
	if a.provider == nil {
		return "", false
	}
	out, err := a.provider.Generate(ctx, p)
	if err != nil {
		logger.Warn("ai call failed, using fallback",
			zap.String("operation", op),
			zap.String("provider", a.provider.Name()),
			zap.Error(err))
		return "", false
	}
	return out, true
}

func (a *Assistant) record(op string, ok bool) {
	if ok {
		a.metrics.RecordAI(op, outcomeOK)
		return
	}
	a.metrics.RecordAI(op, outcomeFallback)
}

// decodeImage 接受裸 base64 或 data URL，返回字节与 MIME
func decodeImage(image, mimeType string) ([]byte, string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, "", apperrors.Validation("image is required")
	}
	if strings.HasPrefix(image, "data:") {
		header, payload, ok := strings.Cut(image, ",")
		if !ok {
			return nil, "", apperrors.Validation("invalid image data URL")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		image = payload
	}
	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil || len(raw) == 0 {
		return nil, "", apperrors.Validation("image is not valid base64")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(raw)
	}
	return raw, mimeType, nil
}

const sceneSystem = `You are an emergency response assistant. Analyze the image of an emergency scene.
Reply with a JSON object: {"emergencyType": string, "severity": "low"|"medium"|"high"|"critical",
"description": string, "recommendations": string[], "confidence": number between 0 and 1}.
Use one of: cardiac_arrest, choking, severe_bleeding, fire, stroke, general for emergencyType.`

// AnalyzeScene 分析现场图片，模型不可用或回答无法解析时按 Context 文字分类
func (a *Assistant) AnalyzeScene(ctx context.Context, req SceneRequest) (*SceneAnalysis, error) {
	raw, mimeType, err := decodeImage(req.Image, req.MimeType)
	if err != nil {
		return nil, err
	}

	text := "Analyze this emergency scene."
	if req.Context != "" {
		text += " Additional context: " + req.Context
	}
	out, ok := a.generate(ctx, "analyze_scene", llm.Prompt{
		System:    sceneSystem,
		Text:      text,
		Image:     raw,
		ImageMIME: mimeType,
		JSON:      true,
	})
	if ok {
		var res SceneAnalysis
		if err := json.Unmarshal([]byte(llm.StripCodeFence(out)), &res); err == nil && res.EmergencyType != "" {
			res.Severity = validSeverity(res.Severity)
			res.Confidence = clamp01(res.Confidence)
			if res.Recommendations == nil {
				res.Recommendations = []string{}
			}
			res.Source = SourceAI
			a.record("analyze_scene", true)
			return &res, nil
		}
		logger.Warn("unparseable scene analysis", zap.Int("chars", len(out)))
	}

	a.record("analyze_scene", false)
	cls := a.classifier.Classify(req.Context)
	return &SceneAnalysis{
		EmergencyType:   cls.EmergencyType,
		Severity:        cls.Severity,
		Description:     "Automatic image analysis is unavailable. The assessment is based on the description provided.",
		Recommendations: a.recommendations(ctx, cls.EmergencyType),
		Confidence:      cls.Confidence,
		Source:          SourceKeyword,
	}, nil
}

// recommendations 取规程前三步，并在最前面提示拨打急救电话
func (a *Assistant) recommendations(ctx context.Context, emergencyType string) []string {
	recs := []string{fmt.Sprintf("Call %s if anyone is in danger", a.emergencyNumber)}
	if p := a.protocol(ctx, emergencyType); p != nil {
		steps := p.Instructions.Steps
		recs = append(recs, steps[:min(3, len(steps))]...)
		return recs
	}
	return append(recs, "Make sure the scene is safe before approaching", "Stay with the person until help arrives")
}

func (a *Assistant) protocol(ctx context.Context, emergencyType string) *models.EmergencyProtocol {
	if a.protocols == nil || emergencyType == TypeGeneral {
		return nil
	}
	p, err := a.protocols.GetEmergencyProtocol(ctx, emergencyType)
	if err != nil {
		logger.Warn("protocol lookup failed", zap.String("type", emergencyType), zap.Error(err))
		return nil
	}
	if p == nil || len(p.Instructions.Steps) == 0 {
		return nil
	}
	return p
}

const chatSystem = `You are a calm emergency assistance chatbot. Give short, clear, step by step guidance.
Always tell the user to contact local emergency services when a life may be at risk.`

// Chat 多轮对话，失败时返回引用匹配规程的固定回答
func (a *Assistant) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.Validation("message is required")
	}
	system := chatSystem
	if req.Context != "" {
		system += "\nContext: " + req.Context
	}
	out, ok := a.generate(ctx, "chat", llm.Prompt{System: system, History: req.History, Text: req.Message})
	a.record("chat", ok)
	if ok {
		return &ChatReply{Response: out}, nil
	}
	return &ChatReply{Response: a.fallbackReply(ctx, req.Message), Fallback: true}, nil
}

func (a *Assistant) fallbackReply(ctx context.Context, message string) string {
	cls := a.classifier.Classify(message)
	if p := a.protocol(ctx, cls.EmergencyType); p != nil {
		return fmt.Sprintf("This sounds like it may be %s. Call %s now if a life is at risk. First step: %s",
			p.Name, a.emergencyNumber, p.Instructions.Steps[0])
	}
	return fmt.Sprintf("The AI assistant is unavailable right now. If this is an emergency, call %s immediately.", a.emergencyNumber)
}

const classifySystem = `Classify the emergency described by the user. Reply with a JSON object:
{"emergencyType": "cardiac_arrest"|"choking"|"severe_bleeding"|"fire"|"stroke"|"general",
"severity": "low"|"medium"|"high"|"critical", "keywords": string[], "confidence": number between 0 and 1}.`

// AnalyzeEmergency 文字分类，模型优先，关键词规则兜底
func (a *Assistant) AnalyzeEmergency(ctx context.Context, text string) (*Classification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Validation("text is required")
	}
	out, ok := a.generate(ctx, "analyze_emergency", llm.Prompt{System: classifySystem, Text: text, JSON: true})
	if ok {
		var res Classification
		if err := json.Unmarshal([]byte(llm.StripCodeFence(out)), &res); err == nil && a.classifier.Known(res.EmergencyType) {
			res.Severity = validSeverity(res.Severity)
			res.Confidence = clamp01(res.Confidence)
			if res.Keywords == nil {
				res.Keywords = []string{}
			}
			res.Source = SourceAI
			a.record("analyze_emergency", true)
			return &res, nil
		}
	}
	a.record("analyze_emergency", false)
	cls := a.classifier.Classify(text)
	return &cls, nil
}

func validSeverity(s string) string {
	switch s {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return s
	}
	return models.SeverityMedium
}

func clamp01(f float64) float64 {
	return max(0, min(f, 1))
}
