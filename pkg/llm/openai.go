package llm

import (
	"context"
	"encoding/base64"
	"strings"

	apperrors "EmergencyAssist/pkg/errors"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider 兼容任意 OpenAI 协议的服务（通过 BaseURL 切换）
type OpenAIProvider struct {
	client *openai.Client
	model  string
	logger *logrus.Entry
}

func NewOpenAIProvider(cfg Config, log *logrus.Entry) *OpenAIProvider {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: log.WithField("provider", "openai"),
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(p.History)+2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.System,
		})
	}
	for _, t := range p.History {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant || t.Role == "model" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(p.Image) > 0 {
		// Content 与 MultiContent 不能同时设置
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: p.Text},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + p.ImageMIME + ";base64," + base64.StdEncoding.EncodeToString(p.Image),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		}
	} else {
		user.Content = p.Text
	}
	messages = append(messages, user)

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	}
	if p.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.WithError(err).Warn("openai chat completion failed")
		return "", apperrors.Upstream(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	o.logger.WithFields(logrus.Fields{
		"model":  resp.Model,
		"tokens": resp.Usage.TotalTokens,
	}).Debug("openai chat completion ok")
	return text, nil
}
