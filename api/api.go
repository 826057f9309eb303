package api

//go:generate mockgen -package mock -destination ../mock/mock_api.go github.com/fieldcalc/fieldcalc/api AuditLogger,AuditReader

// AuditLogger receives audit entries for applied adjustments
type AuditLogger interface {
	Log(AuditEntry) error
}

// AuditReader gives access to previously recorded audit entries
type AuditReader interface {
	Entries() ([]AuditEntry, error)
}

// Theme is the UI colour scheme
type Theme string

// Themes
const (
	ThemeDefault Theme = "default"
	ThemeLight   Theme = "light"
	ThemeDark    Theme = "dark"
)

// ThemeString converts a string into a Theme
func ThemeString(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case ThemeDefault, ThemeLight, ThemeDark:
		return t, true
	default:
		return ThemeDefault, false
	}
}
