package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGermanCatalog(t *testing.T) {
	tr := New("de")
	assert.Equal(t, "Willkommen!", tr.T(KeyWelcome))
	assert.Equal(t, "Unbekannter Chip: %s", tr.T(KeyUnknownTag))
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	tr := New("fr")
	assert.Equal(t, "Welcome!", tr.T(KeyWelcome))
}

func TestMissingKeyFallsBackToKey(t *testing.T) {
	tr := New("de")
	assert.Equal(t, "no_such_key", tr.T("no_such_key"))
}
