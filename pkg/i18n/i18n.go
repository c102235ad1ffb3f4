package i18n

import (
	"embed"
	"encoding/json"
	"path"

	"EmergencyAssist/pkg/logger"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// I18nSupport 国际化支持结构体
type I18nSupport struct {
	bundle *i18n.Bundle
	tags   []language.Tag
}

// NewI18nSupport 加载内嵌的语言文件
func NewI18nSupport(defaultLang string) (*I18nSupport, error) {
	def, err := language.Parse(defaultLang)
	if err != nil {
		return nil, err
	}
	bundle := i18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	s := &I18nSupport{bundle: bundle, tags: []language.Tag{def}}
	for _, e := range entries {
		name := path.Join("locales", e.Name())
		buf, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		mf, err := bundle.ParseMessageFileBytes(buf, name)
		if err != nil {
			return nil, err
		}
		if mf.Tag.String() != def.String() {
			s.tags = append(s.tags, mf.Tag)
		}
	}
	return s, nil
}

// Languages 已加载的语言，默认语言排在首位，用于语言协商
func (i *I18nSupport) Languages() []language.Tag {
	return i.tags
}

// T 获取翻译文本，找不到时返回键名
func (i *I18nSupport) T(languageTag, key string, templateData map[string]any) string {
	if i == nil {
		return key
	}
	localizer := i18n.NewLocalizer(i.bundle, languageTag)
	translation, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: templateData,
	})
	if err != nil {
		logger.Debug("missing translation", zap.String("key", key), zap.String("lang", languageTag), zap.Error(err))
		return key
	}
	return translation
}
