package services

import (
	"strings"

	"EmergencyAssist/internal/models"
)

const (
	TypeGeneral = "general"

	SourceAI      = "ai"
	SourceKeyword = "keyword"
)

// Classification 一段文字对应的紧急情况类型
type Classification struct {
	EmergencyType string   `json:"emergencyType"`
	Severity      string   `json:"severity"`
	Keywords      []string `json:"keywords"`
	Confidence    float64  `json:"confidence"`
	Source        string   `json:"source"`
}

type rule struct {
	emergencyType string
	severity      string
	keywords      []string
}

var defaultRules = []rule{
	{"cardiac_arrest", models.SeverityCritical, []string{
		"heart attack", "cardiac", "not breathing", "no pulse", "chest pain", "collapsed", "unconscious", "unresponsive", "cpr",
	}},
	{"choking", models.SeverityCritical, []string{
		"choking", "choke", "cant breathe", "cannot breathe", "airway", "stuck in throat",
	}},
	{"severe_bleeding", models.SeverityHigh, []string{
		"bleeding", "blood", "wound", "hemorrhage", "deep cut", "laceration",
	}},
	{"fire", models.SeverityCritical, []string{
		"fire", "smoke", "burning", "flames", "explosion",
	}},
	{"stroke", models.SeverityCritical, []string{
		"stroke", "face drooping", "slurred", "numbness", "weakness on one side", "cant speak",
	}},
}

// Classifier 确定性的关键词分类器
type Classifier struct {
	rules []rule
}

func NewClassifier() *Classifier {
	rules := make([]rule, len(defaultRules))
	for i, r := range defaultRules {
		kws := make([]string, len(r.keywords))
		for j, k := range r.keywords {
			kws[j] = normalize(k)
		}
		rules[i] = rule{emergencyType: r.emergencyType, severity: r.severity, keywords: kws}
	}
	return &Classifier{rules: rules}
}

// Classify 命中关键词最多的规则胜出，平局取靠前的规则
// 置信度为 min(0.3 + 0.2*命中数, 0.9)，无命中时返回 general / medium / 0
func (c *Classifier) Classify(text string) Classification {
	t := normalize(text)
	best := -1
	var matched []string
	for i, r := range c.rules {
		var hits []string
		for _, k := range r.keywords {
			if strings.Contains(t, k) {
				hits = append(hits, k)
			}
		}
		if len(hits) > len(matched) {
			best, matched = i, hits
		}
	}
	if best < 0 {
		return Classification{
			EmergencyType: TypeGeneral,
			Severity:      models.SeverityMedium,
			Keywords:      []string{},
			Source:        SourceKeyword,
		}
	}
	return Classification{
		EmergencyType: c.rules[best].emergencyType,
		Severity:      c.rules[best].severity,
		Keywords:      matched,
		Confidence:    min(0.3+0.2*float64(len(matched)), 0.9),
		Source:        SourceKeyword,
	}
}

// Known 是否为分类器认识的类型
func (c *Classifier) Known(emergencyType string) bool {
	if emergencyType == TypeGeneral {
		return true
	}
	for _, r := range c.rules {
		if r.emergencyType == emergencyType {
			return true
		}
	}
	return false
}
