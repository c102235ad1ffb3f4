package services

// 以下两个接口目前只返回固定数据

type PlaceholderTranslation struct {
	TranslatedText string  `json:"translatedText"`
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
	Confidence     float64 `json:"confidence"`
	Placeholder    bool    `json:"placeholder"`
}

func CannedTranslation(text, target string) PlaceholderTranslation {
	if target == "" {
		target = "en"
	}
	return PlaceholderTranslation{
		TranslatedText: text,
		SourceLanguage: LangAuto,
		TargetLanguage: target,
		Confidence:     0,
		Placeholder:    true,
	}
}

type EmotionResult struct {
	Emotion     string  `json:"emotion"`
	StressLevel string  `json:"stressLevel"`
	Confidence  float64 `json:"confidence"`
	Placeholder bool    `json:"placeholder"`
}

func CannedEmotion() EmotionResult {
	return EmotionResult{Emotion: "neutral", StressLevel: "unknown", Confidence: 0, Placeholder: true}
}
