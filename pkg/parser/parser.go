package parser

import (
	"bufio"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/school-assistant/models"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Elements that never carry page content.
const noiseSelector = "script,style,nav,footer,header,aside,noscript,iframe"

// Minimum raw text length for each block type to be kept.
const (
	minHeadingLen   = 3
	minParagraphLen = 20
	minListItemLen  = 10
	minDivLen       = 30
	maxDivLen       = 500
)

var disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s.,!?()\-]`)

type Parser struct {
	// DefaultTitle is used when neither the <title> element nor readability
	// yields a title.
	DefaultTitle string
}

// Extract parses a page into ordered text blocks, its cleaned body text and
// the absolute http(s) links it contains.
func (p *Parser) Extract(rawURL, rawHTML string) (*models.Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	page := &models.Page{
		URL:   rawURL,
		Title: CleanText(doc.Find("title").First().Text()),
	}
	if page.Title == "" {
		page.Title = readabilityTitle(rawHTML, pageURL)
	}
	if page.Title == "" {
		page.Title = p.DefaultTitle
	}

	doc.Find(noiseSelector).Remove()
	page.Links = extractLinks(doc, pageURL)

	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(i int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); runeLen(text) > minHeadingLen {
			page.Blocks = append(page.Blocks, models.ContentBlock{Type: "heading", Text: CleanText(text)})
		}
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); runeLen(text) > minParagraphLen {
			page.Blocks = append(page.Blocks, models.ContentBlock{Type: "p", Text: CleanText(text)})
		}
	})

	doc.Find("li").Each(func(i int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); runeLen(text) > minListItemLen {
			page.Blocks = append(page.Blocks, models.ContentBlock{Type: "li", Text: CleanText(text)})
		}
	})

	doc.Find("table tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		nonEmpty := false
		tr.Find("td,th").Each(func(j int, cell *goquery.Selection) {
			text := normalizeText(cell.Text())
			if text != "" {
				nonEmpty = true
			}
			cells = append(cells, text)
		})
		if nonEmpty {
			page.Blocks = append(page.Blocks, models.ContentBlock{Type: "tr", Text: strings.Join(cells, " | ")})
		}
	})

	doc.Find("div").Each(func(i int, s *goquery.Selection) {
		text := normalizeText(s.Text())
		if n := runeLen(text); n > minDivLen && n < maxDivLen {
			page.Blocks = append(page.Blocks, models.ContentBlock{Type: "div", Text: CleanText(text)})
		}
	})

	if body := doc.Find("body"); body.Length() > 0 {
		page.BodyText = CleanText(visibleText(body))
	}

	return page, nil
}

// CleanText collapses whitespace and drops characters other than letters,
// digits, whitespace and basic punctuation.
func CleanText(input string) string {
	return strings.Join(strings.Fields(disallowedChars.ReplaceAllString(input, "")), " ")
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// visibleText joins every text node under the selection with single spaces.
func visibleText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// extractLinks resolves every a[href] against the page URL and keeps
// http(s) links without their fragment, in document order and deduplicated.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""
		abs.RawFragment = ""
		link := abs.String()
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

// readabilityTitle asks go-readability for the article title. Errors yield "".
func readabilityTitle(rawHTML string, pageURL *url.URL) string {
	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return ""
	}
	return CleanText(article.Title)
}
