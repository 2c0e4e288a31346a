package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. Names made only of dots collapse to "".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	if strings.Trim(name, ".") == "" {
		return ""
	}
	return name
}

// OutputName returns the sanitized stem used for per-input outputs, falling
// back to fallback when nothing usable remains.
func OutputName(stem, fallback string) string {
	if name := SanitizeFileName(stem); name != "" {
		return name
	}
	return fallback
}
