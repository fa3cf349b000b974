// Package textclean reduces user submitted markdown to plain prose before analysis.
package textclean

import (
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`^(?:</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>|<!--[\s\S]*-->)$`)
)

// RemoveLinks keeps the text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ToPlainText parses input as markdown and keeps only its readable text:
// emphasis markers, headings, list bullets and HTML tags are dropped, link
// and image text is kept and targets are not. Entities and anything that only
// looks like a tag, such as the emoticon <3, pass through as written.
// Whitespace is collapsed.
func ToPlainText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	root := blackfriday.New(blackfriday.WithNoExtensions()).Parse([]byte(input))

	var b strings.Builder
	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.Text, blackfriday.Code, blackfriday.CodeBlock:
			if entering {
				b.Write(node.Literal)
			}
		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item, blackfriday.BlockQuote:
			if !entering {
				b.WriteByte('\n')
			}
		case blackfriday.HTMLSpan:
			if !htmlTagPattern.Match(node.Literal) {
				b.Write(node.Literal)
			}
		case blackfriday.Hardbreak, blackfriday.Softbreak:
			b.WriteByte('\n')
		}
		return blackfriday.GoToNext
	})

	return strings.Join(strings.Fields(RemoveLinks(b.String())), " ")
}
