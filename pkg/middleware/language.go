package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// LangKey gin 上下文中的语言键
const LangKey = "lang"

// LanguageMiddleware 依次读取 ?lang= 与 Accept-Language，匹配不到时使用 supported[0]
func LanguageMiddleware(supported ...language.Tag) gin.HandlerFunc {
	if len(supported) == 0 {
		supported = []language.Tag{language.English}
	}
	matcher := language.NewMatcher(supported)
	return func(c *gin.Context) {
		c.Set(LangKey, MatchLanguage(matcher, supported, c.Query("lang"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// MatchLanguage 返回匹配到的基础语言代码，如 "es"
func MatchLanguage(matcher language.Matcher, supported []language.Tag, candidates ...string) string {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(cand)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf != language.No {
			base, _ := supported[idx].Base()
			return base.String()
		}
	}
	base, _ := supported[0].Base()
	return base.String()
}

// Lang 读取中间件设置的语言，未设置时为 "en"
func Lang(c *gin.Context) string {
	if v := c.GetString(LangKey); v != "" {
		return v
	}
	return "en"
}
