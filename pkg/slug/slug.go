package slug

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from a product or collection name.
// Afrikaans diacritics common in local product names are transliterated to
// ASCII equivalents.
//
// Examples: "Cuticle Oil Crème" becomes "cuticle-oil-creme" and
// "Gel Polish #42" becomes "gel-polish-42".
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	replacer := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"á", "a", "â", "a", "ä", "a",
		"í", "i", "î", "i", "ï", "i",
		"ó", "o", "ô", "o", "ö", "o",
		"ú", "u", "û", "u", "ü", "u",
		"ý", "y", "ñ", "n", "ç", "c",
	)
	s = replacer.Replace(s)

	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	return s
}
