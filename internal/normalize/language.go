package normalize

import "strings"

// catalogLanguages maps catalog language codes to display labels.
//
//nolint:gochecknoglobals // Static lookup table
var catalogLanguages = map[string]string{
	"503": "Русский",
	"501": "Казахский",
	"504": "Английский",
	"521": "Арабский (религиозные тексты)",
}

// LanguageLabel converts a catalog language code into its display label.
// Unknown codes are returned unchanged; an empty code yields "".
func LanguageLabel(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if label, ok := catalogLanguages[code]; ok {
		return label
	}
	return code
}
