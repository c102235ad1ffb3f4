package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"EmergencyAssist/internal/storage"
	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/llm"
	"EmergencyAssist/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func failing() llm.Provider {
	return llm.ProviderFunc(func(context.Context, llm.Prompt) (string, error) {
		return "", errors.New("upstream down")
	})
}

func replying(reply string, seen *llm.Prompt) llm.Provider {
	return llm.ProviderFunc(func(_ context.Context, p llm.Prompt) (string, error) {
		if seen != nil {
			*seen = p
		}
		return reply, nil
	})
}

func newAssistant(p llm.Provider) *Assistant {
	return NewAssistant(p, storage.NewMemStorageWithSignals(util.NewSignals()), nil)
}

func TestDecodeImage(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngHeader)

	raw, mime, err := decodeImage(b64, "")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
	assert.Equal(t, "image/png", mime)

	_, mime, err = decodeImage("data:image/jpeg;base64,"+b64, "")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	_, mime, err = decodeImage(b64, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)

	_, _, err = decodeImage("not base64 !!", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, _, err = decodeImage("", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestAnalyzeSceneProvider(t *testing.T) {
	var seen llm.Prompt
	a := newAssistant(replying("```json\n{\"emergencyType\":\"fire\",\"severity\":\"extreme\",\"description\":\"Kitchen fire\",\"confidence\":1.4}\n```", &seen))

	res, err := a.AnalyzeScene(context.Background(), SceneRequest{
		Image:   base64.StdEncoding.EncodeToString(pngHeader),
		Context: "smoke in kitchen",
	})
	require.NoError(t, err)
	assert.Equal(t, "fire", res.EmergencyType)
	assert.Equal(t, "medium", res.Severity)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, SourceAI, res.Source)
	assert.NotNil(t, res.Recommendations)

	assert.True(t, seen.JSON)
	assert.Equal(t, "image/png", seen.ImageMIME)
	assert.Equal(t, pngHeader, seen.Image)
	assert.Contains(t, seen.Text, "smoke in kitchen")
}

func TestAnalyzeSceneFallback(t *testing.T) {
	for name, p := range map[string]llm.Provider{"absent": nil, "failing": failing(), "garbage": replying("not json", nil)} {
		t.Run(name, func(t *testing.T) {
			res, err := newAssistant(p).AnalyzeScene(context.Background(), SceneRequest{
				Image:   base64.StdEncoding.EncodeToString(pngHeader),
				Context: "person is choking",
			})
			require.NoError(t, err)
			assert.Equal(t, "choking", res.EmergencyType)
			assert.Equal(t, SourceKeyword, res.Source)
			require.NotEmpty(t, res.Recommendations)
			assert.Contains(t, res.Recommendations[0], "911")
			assert.Greater(t, len(res.Recommendations), 1)
		})
	}

	res, err := newAssistant(nil).AnalyzeScene(context.Background(), SceneRequest{Image: base64.StdEncoding.EncodeToString(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, TypeGeneral, res.EmergencyType)
	assert.Zero(t, res.Confidence)
}

func TestAnalyzeSceneInvalidImage(t *testing.T) {
	_, err := newAssistant(nil).AnalyzeScene(context.Background(), SceneRequest{Image: "@@@"})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestChat(t *testing.T) {
	var seen llm.Prompt
	a := newAssistant(replying("Stay calm and call 911.", &seen))
	history := []llm.Turn{{Role: llm.RoleUser, Text: "hi"}, {Role: llm.RoleAssistant, Text: "hello"}}

	reply, err := a.Chat(context.Background(), ChatRequest{Message: "help", History: history})
	require.NoError(t, err)
	assert.False(t, reply.Fallback)
	assert.Equal(t, "Stay calm and call 911.", reply.Response)
	assert.Equal(t, history, seen.History)

	_, err = a.Chat(context.Background(), ChatRequest{Message: "  "})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestChatFallback(t *testing.T) {
	a := NewAssistant(failing(), storage.NewMemStorageWithSignals(util.NewSignals()), nil, WithEmergencyNumber("112"))

	reply, err := a.Chat(context.Background(), ChatRequest{Message: "my friend collapsed, not breathing"})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Contains(t, reply.Response, "112")
	assert.Contains(t, reply.Response, "Cardiac")

	reply, err = a.Chat(context.Background(), ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Contains(t, reply.Response, "112")
}

func TestAnalyzeEmergency(t *testing.T) {
	a := newAssistant(replying(`{"emergencyType":"stroke","severity":"critical","keywords":["slurred"],"confidence":0.8}`, nil))
	res, err := a.AnalyzeEmergency(context.Background(), "speech is slurred")
	require.NoError(t, err)
	assert.Equal(t, "stroke", res.EmergencyType)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 0.8, res.Confidence)

	// 模型给出未知类型时使用关键词规则
	a = newAssistant(replying(`{"emergencyType":"zombies","severity":"critical"}`, nil))
	res, err = a.AnalyzeEmergency(context.Background(), "the house is on fire")
	require.NoError(t, err)
	assert.Equal(t, "fire", res.EmergencyType)
	assert.Equal(t, SourceKeyword, res.Source)

	res, err = newAssistant(failing()).AnalyzeEmergency(context.Background(), "bleeding badly")
	require.NoError(t, err)
	assert.Equal(t, "severe_bleeding", res.EmergencyType)

	_, err = newAssistant(nil).AnalyzeEmergency(context.Background(), "")
	assert.Error(t, err)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) Generate(ctx context.Context, p llm.Prompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Name() string { return "mock" }

func TestChatPassesSystemContext(t *testing.T) {
	p := &mockProvider{}
	p.On("Generate", mock.Anything, mock.MatchedBy(func(pr llm.Prompt) bool {
		return pr.Text == "what now?" && strings.Contains(pr.System, "Context: kitchen fire") && !pr.JSON
	})).Return("Leave the building.", nil).Once()

	reply, err := newAssistant(p).Chat(context.Background(), ChatRequest{Message: "what now?", Context: "kitchen fire"})
	require.NoError(t, err)
	assert.Equal(t, "Leave the building.", reply.Response)
	p.AssertExpectations(t)
}
