package export

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	blankLinePattern = regexp.MustCompile(`\n{3,}`)
)

// blockSelector lists the elements that end a line when flattened.
const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, tr, blockquote"

// StripMarkup flattens marked-up slide text into plain text. Line breaks
// and block boundaries become newlines and entities are decoded.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	}
	body := doc.Find("body")
	body.Find("script, style").Remove()
	body.Find("br").ReplaceWithHtml("\n")
	body.Find(blockSelector).AppendHtml("\n")

	text := strings.ReplaceAll(body.Text(), "\u00a0", " ")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	text = blankLinePattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(text)
}

// activeSelector lists elements that run code or pull in other documents.
const activeSelector = "script, style, iframe, frame, frameset, object, embed, applet, link, meta, base, form, noscript, template"

// urlAttrs are the attributes holding addresses that a page follows or loads.
var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"xlink:href": true, "background": true, "poster": true, "srcset": true,
}

// SanitizeMarkup prepares slide markup for a web page. Formatting tags are
// kept; active elements, event handlers and script addresses are removed.
func SanitizeMarkup(s string) template.HTML {
	if !strings.ContainsAny(s, "<&") {
		return template.HTML(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	body := doc.Find("body")
	body.Find(activeSelector).Remove()
	body.Find("*").Each(func(_ int, el *goquery.Selection) {
		var drop []string
		for _, a := range el.Get(0).Attr {
			key := strings.ToLower(a.Key)
			switch {
			case strings.HasPrefix(key, "on"), key == "srcdoc":
				drop = append(drop, a.Key)
			case urlAttrs[key] && unsafeURL(a.Val):
				drop = append(drop, a.Key)
			case key == "style" && unsafeStyle(a.Val):
				drop = append(drop, a.Key)
			}
		}
		for _, k := range drop {
			el.RemoveAttr(k)
		}
	})
	out, err := body.Html()
	if err != nil {
		return template.HTML(template.HTMLEscapeString(StripMarkup(s)))
	}
	return template.HTML(out)
}

// compact lowercases v and drops whitespace and control characters, which
// browsers ignore inside a scheme.
func compact(v string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToLower(v))
}

func unsafeURL(v string) bool {
	v = compact(v)
	switch {
	case strings.HasPrefix(v, "javascript:"), strings.HasPrefix(v, "vbscript:"):
		return true
	case strings.HasPrefix(v, "data:"):
		return !strings.HasPrefix(v, "data:image/") || strings.HasPrefix(v, "data:image/svg")
	}
	return false
}

func unsafeStyle(v string) bool {
	v = compact(v)
	return strings.Contains(v, "javascript:") || strings.Contains(v, "expression(") || strings.Contains(v, "-moz-binding")
}
