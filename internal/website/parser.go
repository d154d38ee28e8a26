package website

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mikey/pr-contact-miner/internal/core"
	"golang.org/x/net/html"
)

var (
	titleDelimiters = []string{" | ", " - ", " – ", " — ", " :: ", " : "}

	genericNames = map[string]bool{
		"home":             true,
		"homepage":         true,
		"welcome":          true,
		"official site":    true,
		"official website": true,
		"website":          true,
		"page":             true,
		"index":            true,
	}

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
		"\u00a0", " ",
	)
)

const maxTitleWords = 5

type pageNames struct {
	siteName string
	appName  string
	title    string
	hasTitle bool
}

// ExtractOrganizationName picks an organization name out of an HTML page.
// og:site_name wins over application-name, which wins over <title>.
func ExtractOrganizationName(page string) (string, bool) {
	names := scanPage(strings.NewReader(page))

	return core.FirstResolved(
		func() (string, bool) { return cleanName(names.siteName) },
		func() (string, bool) { return cleanName(names.appName) },
		func() (string, bool) {
			if !names.hasTitle {
				return "", false
			}
			return nameFromTitle(names.title)
		},
	)
}

// scanPage collects the first og:site_name, application-name and title
// values. Entities are decoded by the tokenizer.
func scanPage(r io.Reader) pageNames {
	var names pageNames
	z := html.NewTokenizer(r)
	inTitle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return names
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				readMeta(tok, &names)
			case "title":
				inTitle = !names.hasTitle
			}
		case html.EndTagToken:
			if z.Token().Data == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle {
				names.title += string(z.Text())
				names.hasTitle = true
			}
		}
	}
}

func readMeta(tok html.Token, names *pageNames) {
	var key, content string
	hasContent := false
	for _, a := range tok.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = a.Val
			hasContent = true
		}
	}
	if !hasContent || strings.TrimSpace(content) == "" {
		return
	}

	switch key {
	case "og:site_name":
		if names.siteName == "" {
			names.siteName = content
		}
	case "application-name":
		if names.appName == "" {
			names.appName = content
		}
	}
}

func cleanName(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	name = strings.TrimSpace(entityReplacer.Replace(name))

	n := utf8.RuneCountInString(name)
	if n < 2 || n > 100 {
		return "", false
	}
	if genericNames[strings.ToLower(name)] {
		return "", false
	}
	return name, true
}

// nameFromTitle takes the leading segment of a delimited title such as
// "Acme | Home". An undelimited title is used only when it is short.
func nameFromTitle(title string) (string, bool) {
	title = entityReplacer.Replace(title)

	for _, delim := range titleDelimiters {
		if !strings.Contains(title, delim) {
			continue
		}
		candidate := strings.TrimSpace(strings.SplitN(title, delim, 2)[0])
		if utf8.RuneCountInString(candidate) >= 2 {
			return cleanName(candidate)
		}
	}

	name, ok := cleanName(title)
	if !ok || len(strings.Fields(name)) > maxTitleWords {
		return "", false
	}
	return name, true
}
