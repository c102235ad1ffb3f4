package llm

import (
	"context"
	"fmt"
	"strings"

	apperrors "EmergencyAssist/pkg/errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider 基于 google.golang.org/genai 的 Gemini API 调用
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *logrus.Entry
}

func NewGeminiProvider(ctx context.Context, cfg Config, log *logrus.Entry) (*GeminiProvider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		client: client,
		model:  model,
		logger: log.WithField("provider", "gemini"),
	}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

// Generate 单次非流式生成
func (g *GeminiProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	contents := make([]*genai.Content, 0, len(p.History)+1)
	for _, t := range p.History {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleAssistant || t.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	parts := []*genai.Part{}
	if len(p.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(p.Image, p.ImageMIME))
	}
	if p.Text != "" {
		parts = append(parts, genai.NewPartFromText(p.Text))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}
	if p.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		g.logger.WithError(err).Warn("gemini generate failed")
		return "", apperrors.Upstream(err, "gemini generate")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	g.logger.WithField("chars", len(text)).Debug("gemini generate ok")
	return text, nil
}
