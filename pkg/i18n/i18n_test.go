package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	s, err := NewI18nSupport("en")
	require.NoError(t, err)

	assert.Equal(t, "User not found", s.T("en", "user_not_found", nil))
	assert.Equal(t, "Usuario no encontrado", s.T("es", "user_not_found", nil))
	assert.Equal(t, "Usuario no encontrado", s.T("es-MX", "user_not_found", nil))
	assert.Equal(t, "no_such_key", s.T("en", "no_such_key", nil))
	assert.Equal(t, "Utilisateur introuvable", s.T("fr", "user_not_found", nil))
	assert.Equal(t, "用户不存在", s.T("zh", "user_not_found", nil))
}

func TestLanguagesDefaultFirst(t *testing.T) {
	s, err := NewI18nSupport("es")
	require.NoError(t, err)
	var codes []string
	for _, tag := range s.Languages() {
		codes = append(codes, tag.String())
	}
	require.Len(t, codes, 5)
	assert.Equal(t, "es", codes[0])
	assert.ElementsMatch(t, []string{"en", "es", "fr", "de", "zh"}, codes)
}

func TestNilSupportReturnsKey(t *testing.T) {
	var s *I18nSupport
	assert.Equal(t, "user_not_found", s.T("en", "user_not_found", nil))
}

func TestInvalidDefaultLanguage(t *testing.T) {
	_, err := NewI18nSupport("not a tag!")
	assert.Error(t, err)
}
