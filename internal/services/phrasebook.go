package services

// phrasebook 常用急救短语，键为语言基础代码
var phrasebook = []map[string]string{
	{"en": "Help!", "es": "¡Ayuda!", "fr": "Au secours !", "de": "Hilfe!", "zh": "救命！"},
	{"en": "Call an ambulance", "es": "Llame a una ambulancia", "fr": "Appelez une ambulance", "de": "Rufen Sie einen Krankenwagen", "zh": "叫救护车"},
	{"en": "Call the police", "es": "Llame a la policía", "fr": "Appelez la police", "de": "Rufen Sie die Polizei", "zh": "报警"},
	{"en": "There is a fire", "es": "Hay un incendio", "fr": "Il y a un incendie", "de": "Es brennt", "zh": "着火了"},
	{"en": "I need a doctor", "es": "Necesito un médico", "fr": "J'ai besoin d'un médecin", "de": "Ich brauche einen Arzt", "zh": "我需要医生"},
	{"en": "I can't breathe", "es": "No puedo respirar", "fr": "Je ne peux pas respirer", "de": "Ich kann nicht atmen", "zh": "我无法呼吸"},
	{"en": "Someone is bleeding", "es": "Alguien está sangrando", "fr": "Quelqu'un saigne", "de": "Jemand blutet", "zh": "有人在流血"},
	{"en": "Where is the hospital?", "es": "¿Dónde está el hospital?", "fr": "Où est l'hôpital ?", "de": "Wo ist das Krankenhaus?", "zh": "医院在哪里？"},
	{"en": "Is anyone hurt?", "es": "¿Hay alguien herido?", "fr": "Y a-t-il des blessés ?", "de": "Ist jemand verletzt?", "zh": "有人受伤吗？"},
	{"en": "Stay calm", "es": "Mantenga la calma", "fr": "Restez calme", "de": "Bleiben Sie ruhig", "zh": "保持冷静"},
}

type phraseIndex map[string][]phraseRef

type phraseRef struct {
	entry int
	lang  string
}

func buildPhraseIndex() phraseIndex {
	idx := phraseIndex{}
	for i, entry := range phrasebook {
		for lang, text := range entry {
			k := normalize(text)
			idx[k] = append(idx[k], phraseRef{entry: i, lang: lang})
		}
	}
	return idx
}

// lookup 精确匹配短语，source 为空时接受任意源语言
func (idx phraseIndex) lookup(text, source, target string) (translated, detected string, ok bool) {
	for _, ref := range idx[normalize(text)] {
		if source != "" && ref.lang != source {
			continue
		}
		out, found := phrasebook[ref.entry][target]
		if !found {
			continue
		}
		return out, ref.lang, true
	}
	return "", "", false
}
