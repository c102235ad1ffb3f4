package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"EmergencyAssist/pkg/cache"
	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/llm"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// LangAuto 未指定源语言
	LangAuto = "auto"

	aiConfidence = 0.9
)

type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	TargetLanguage string `json:"targetLanguage" binding:"required"`
	SourceLanguage string `json:"sourceLanguage"`
}

type Translation struct {
	TranslatedText string  `json:"translatedText"`
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
	Confidence     float64 `json:"confidence"`
}

// Translator 翻译服务：模型 -> 短语手册 -> 原文
type Translator struct {
	provider llm.Provider
	cache    cache.Cache
	ttl      time.Duration
	metrics  *metrics.Metrics
	phrases  phraseIndex
}

// NewTranslator provider 与 c 都可以为 nil
func NewTranslator(provider llm.Provider, c cache.Cache, ttl time.Duration, m *metrics.Metrics) *Translator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Translator{provider: provider, cache: c, ttl: ttl, metrics: m, phrases: buildPhraseIndex()}
}

// baseLanguage 解析 BCP 47 标签，返回基础语言代码
// namedLanguages 允许按英文名或本族语名称指定的语言，如 "Spanish"、"Español"
var namedLanguages = []language.Tag{
	language.English, language.Spanish, language.French, language.German, language.Chinese,
	language.Italian, language.Portuguese, language.Japanese, language.Korean,
	language.Arabic, language.Russian, language.Hindi,
}

// baseLanguage 将 BCP 47 代码或语言名称解析为基础语言代码
func baseLanguage(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		return base.String(), true
	}
	names := display.English.Languages()
	for _, tag := range namedLanguages {
		if strings.EqualFold(code, names.Name(tag)) || strings.EqualFold(code, display.Self.Name(tag)) {
			base, _ := tag.Base()
			return base.String(), true
		}
	}
	return "", false
}

func cacheKey(text, source, target string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + target + "\x00" + text))
	return "translate:" + hex.EncodeToString(sum[:])
}

// Translate 上游失败或语言无法识别时不返回错误，而是返回原文与 0 置信度
func (t *Translator) Translate(ctx context.Context, req TranslateRequest) (*Translation, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.Validation("text is required")
	}
	// 无法识别的源语言按自动检测处理
	source := ""
	if s := strings.TrimSpace(req.SourceLanguage); s != "" && !strings.EqualFold(s, LangAuto) {
		source, _ = baseLanguage(s)
	}
	target, ok := baseLanguage(req.TargetLanguage)
	if !ok {
		logger.Debug("unknown target language", zap.String("target", req.TargetLanguage))
		t.record(false)
		return untranslated(req.Text, source, strings.TrimSpace(req.TargetLanguage)), nil
	}

	if source == target {
		return &Translation{TranslatedText: req.Text, SourceLanguage: source, TargetLanguage: target, Confidence: 1}, nil
	}

	key := cacheKey(req.Text, source, target)
	if t.cache != nil {
		if hit, ok := cache.GetJSON[Translation](ctx, t.cache, key); ok {
			t.metrics.RecordCacheHit("translations")
			return &hit, nil
		}
		t.metrics.RecordCacheMiss("translations")
	}

	res, ok := t.viaProvider(ctx, req.Text, source, target)
	if !ok {
		res, ok = t.viaPhrasebook(req.Text, source, target)
	}
	t.record(ok)
	if !ok {
		return untranslated(req.Text, source, target), nil
	}

	if t.cache != nil {
		if err := cache.SetJSON(ctx, t.cache, key, res, t.ttl); err != nil {
			logger.Warn("cache translation failed", zap.Error(err))
		}
	}
	return &res, nil
}

// untranslated 原文与 0 置信度，不写缓存
func untranslated(text, source, target string) *Translation {
	if source == "" {
		source = LangAuto
	}
	return &Translation{TranslatedText: text, SourceLanguage: source, TargetLanguage: target}
}

func (t *Translator) record(ok bool) {
	if ok {
		t.metrics.RecordAI("translate", outcomeOK)
		return
	}
	t.metrics.RecordAI("translate", outcomeFallback)
}

func languageName(code string) string {
	if name := display.English.Languages().Name(language.Make(code)); name != "" {
		return name
	}
	return code
}

func (t *Translator) viaProvider(ctx context.Context, text, source, target string) (Translation, bool) {
	if t.provider == nil {
		return Translation{}, false
	}
	from := "the detected language"
	if source != "" {
		from = languageName(source)
	}
	out, err := t.provider.Generate(ctx, llm.Prompt{
		System: "You are a translator for emergency communication. Reply with the translation only.",
		Text:   fmt.Sprintf("Translate from %s to %s:\n%s", from, languageName(target), text),
	})
	if err != nil {
		logger.Warn("ai translation failed", zap.String("provider", t.provider.Name()), zap.Error(err))
		return Translation{}, false
	}
	src := source
	if src == "" {
		src = LangAuto
	}
	return Translation{
		TranslatedText: strings.TrimSpace(out),
		SourceLanguage: src,
		TargetLanguage: target,
		Confidence:     aiConfidence,
	}, true
}

func (t *Translator) viaPhrasebook(text, source, target string) (Translation, bool) {
	out, detected, ok := t.phrases.lookup(text, source, target)
	if !ok {
		return Translation{}, false
	}
	return Translation{TranslatedText: out, SourceLanguage: detected, TargetLanguage: target, Confidence: 1}, true
}
