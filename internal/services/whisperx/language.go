package whisperx

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage converts a language tag ("en-US", "zh-Hans", "eng") into
// the short code WhisperX expects. Empty, "auto", and unparseable values
// return "" so WhisperX detects the language itself.
func NormalizeLanguage(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "auto") {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}
