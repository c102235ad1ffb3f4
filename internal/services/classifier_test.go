package services

import (
	"testing"

	"EmergencyAssist/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cant breathe", normalize("  Can't   BREATHE!! "))
	assert.Equal(t, "救命", normalize("救命！"))
	assert.Equal(t, "dónde está el hospital", normalize("¿Dónde está el hospital?"))
}

func TestClassify(t *testing.T) {
	c := NewClassifier()
	cases := []struct {
		text     string
		wantType string
		severity string
		minConf  float64
	}{
		{"My dad collapsed and has no pulse", "cardiac_arrest", models.SeverityCritical, 0.69},
		{"The kitchen is on FIRE, lots of smoke", "fire", models.SeverityCritical, 0.69},
		{"She is choking and can't breathe", "choking", models.SeverityCritical, 0.69},
		{"deep cut with heavy bleeding", "severe_bleeding", models.SeverityHigh, 0.69},
		{"his face drooping and speech slurred", "stroke", models.SeverityCritical, 0.69},
	}
	for _, tc := range cases {
		t.Run(tc.wantType, func(t *testing.T) {
			got := c.Classify(tc.text)
			assert.Equal(t, tc.wantType, got.EmergencyType)
			assert.Equal(t, tc.severity, got.Severity)
			assert.GreaterOrEqual(t, got.Confidence, tc.minConf)
			assert.LessOrEqual(t, got.Confidence, 0.9)
			assert.Equal(t, SourceKeyword, got.Source)
			assert.NotEmpty(t, got.Keywords)
		})
	}
}

func TestClassifyNoMatch(t *testing.T) {
	got := NewClassifier().Classify("what a lovely day")
	assert.Equal(t, TypeGeneral, got.EmergencyType)
	assert.Equal(t, models.SeverityMedium, got.Severity)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.Keywords)
}

func TestClassifyConfidenceCap(t *testing.T) {
	got := NewClassifier().Classify("heart attack, cardiac arrest, not breathing, no pulse, collapsed, unconscious")
	assert.Equal(t, "cardiac_arrest", got.EmergencyType)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)

	one := NewClassifier().Classify("there is smoke")
	assert.InDelta(t, 0.5, one.Confidence, 1e-9)
}

func TestKnown(t *testing.T) {
	c := NewClassifier()
	assert.True(t, c.Known("stroke"))
	assert.True(t, c.Known(TypeGeneral))
	assert.False(t, c.Known("alien"))
}
