// Package i18n holds the static message catalog for the kiosk screens.
// Supported languages: de, en. Unknown languages and missing keys fall back to English.
package i18n

// Message keys used by the terminal and the web UI.
const (
	KeyWelcome        = "welcome"
	KeyWelcomeName    = "welcome_name"
	KeyGoodbye        = "goodbye"
	KeyGoodbyeName    = "goodbye_name"
	KeyHello          = "hello"
	KeyUnknownTag     = "unknown_tag"
	KeyServerError    = "server_error"
	KeyUnknownUser    = "unknown_user"
	KeyToday          = "today"
	KeyThisWeek       = "this_week"
	KeyLastWeek       = "last_week"
	KeyVacation       = "vacation"
	KeyDays           = "days"
	KeyBackendOnline  = "backend_online"
	KeyBackendOffline = "backend_offline"
)

var english = map[string]string{
	KeyWelcome:        "Welcome!",
	KeyWelcomeName:    "Welcome, %s!",
	KeyGoodbye:        "Goodbye!",
	KeyGoodbyeName:    "Goodbye, %s!",
	KeyHello:          "Hello %s!",
	KeyUnknownTag:     "Unknown tag: %s",
	KeyServerError:    "Server error. Please try again.",
	KeyUnknownUser:    "User does not exist: %s",
	KeyToday:          "Today",
	KeyThisWeek:       "This week",
	KeyLastWeek:       "Last week",
	KeyVacation:       "Vacation",
	KeyDays:           "%d days",
	KeyBackendOnline:  "Backend: online",
	KeyBackendOffline: "Backend: offline",
}

var german = map[string]string{
	KeyWelcome:        "Willkommen!",
	KeyWelcomeName:    "Willkommen, %s!",
	KeyGoodbye:        "Auf Wiedersehen!",
	KeyGoodbyeName:    "Auf Wiedersehen, %s!",
	KeyHello:          "Hallo %s!",
	KeyUnknownTag:     "Unbekannter Chip: %s",
	KeyServerError:    "Serverfehler. Bitte erneut versuchen.",
	KeyUnknownUser:    "Benutzer existiert nicht: %s",
	KeyToday:          "Heute",
	KeyThisWeek:       "Diese Woche",
	KeyLastWeek:       "Letzte Woche",
	KeyVacation:       "Urlaub",
	KeyDays:           "%d Tage",
	KeyBackendOnline:  "Backend: erreichbar",
	KeyBackendOffline: "Backend: nicht erreichbar",
}

var catalogs = map[string]map[string]string{
	"en": english,
	"de": german,
}

// Translator resolves message keys for one configured language.
type Translator struct {
	messages map[string]string
}

// New returns a Translator for lang, falling back to English for unknown languages.
func New(lang string) *Translator {
	msgs, ok := catalogs[lang]
	if !ok {
		msgs = english
	}
	return &Translator{messages: msgs}
}

// T returns the message for key, falling back to the English catalog and
// finally to the key itself so a missing translation never blanks a screen.
func (t *Translator) T(key string) string {
	if msg, ok := t.messages[key]; ok {
		return msg
	}
	if msg, ok := english[key]; ok {
		return msg
	}
	return key
}
