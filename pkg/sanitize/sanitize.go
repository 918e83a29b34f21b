package sanitize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#34;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)

	blockedSchemes = []string{"javascript:", "data:", "vbscript:"}
)

// MaxSlugLength bounds county slugs.
const MaxSlugLength = 100

// StripHTML removes every HTML tag, decodes the common entities and trims the result.
// Entities are decoded in a single pass so "&amp;lt;" becomes "&lt;", not "<".
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	stripped := tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(entityReplacer.Replace(stripped))
}

// SanitizeText reduces rich text to plain text suitable for feeds and exports.
func SanitizeText(text string) string {
	return StripHTML(text)
}

// SanitizeURL returns a cleaned absolute http(s) URL, or false when the input must be dropped.
func SanitizeURL(raw string) (string, bool) {
	cleaned := strings.TrimSpace(stripControl(raw))
	if cleaned == "" {
		return "", false
	}
	lower := strings.ToLower(cleaned)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}
	if strings.ContainsAny(cleaned, " \t") {
		return "", false
	}
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", false
	}
	if parsed.Host == "" {
		return "", false
	}
	return cleaned, true
}

// IsValidURL reports whether raw survives SanitizeURL.
func IsValidURL(raw string) bool {
	_, ok := SanitizeURL(raw)
	return ok
}

// IsValidSlug validates county slugs: lowercase letters, digits and hyphens.
func IsValidSlug(slug string) bool {
	return slug != "" && len(slug) <= MaxSlugLength && slugPattern.MatchString(slug)
}

// IsValidHexColor validates #RRGGBB colors.
func IsValidHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
