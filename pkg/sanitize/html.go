package sanitize

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "u": true,
	"a": true, "ul": true, "ol": true, "li": true,
}

var allowedAttrs = map[string]bool{
	"href": true, "target": true, "rel": true,
}

// textEscaper matches the entities StripHTML decodes, so stored text survives the trip to a feed.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// tags whose content is dropped together with the tag
var droppedContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
}

// SanitizeHTML keeps a small allow-list of formatting tags and drops everything else.
// Text content of removed tags survives, except for script-like elements.
func SanitizeHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	var out strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(input))
	skipping := ""
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF or a malformed tail; either way the output so far is complete
			break
		}
		token := tokenizer.Token()
		name := strings.ToLower(token.Data)

		if skipping != "" {
			if tt == html.EndTagToken && name == skipping {
				skipping = ""
			}
			continue
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if droppedContent[name] {
				if tt == html.StartTagToken {
					skipping = name
				}
				continue
			}
			if !allowedTags[name] {
				continue
			}
			out.WriteString("<" + name)
			for _, attr := range token.Attr {
				key := strings.ToLower(attr.Key)
				if !allowedAttrs[key] {
					continue
				}
				if key == "href" && !isSafeHref(attr.Val) {
					continue
				}
				out.WriteString(" " + key + `="` + textEscaper.Replace(attr.Val) + `"`)
			}
			out.WriteString(">")
		case html.EndTagToken:
			if allowedTags[name] && name != "br" {
				out.WriteString("</" + name + ">")
			}
		case html.TextToken:
			out.WriteString(textEscaper.Replace(token.Data))
		}
	}
	return out.String()
}

func isSafeHref(raw string) bool {
	cleaned := strings.TrimSpace(stripControl(raw))
	if cleaned == "" {
		return false
	}
	lower := strings.ToLower(cleaned)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	parsed, err := url.Parse(cleaned)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}
