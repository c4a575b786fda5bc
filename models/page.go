package models

import "strings"

// Page represents the text extracted from a single crawled web page.
type Page struct {
	URL    string         `json:"url"`
	Title  string         `json:"title"`
	Blocks []ContentBlock `json:"blocks"`
	Links  []string       `json:"links,omitempty"`

	// BodyText is the cleaned visible body text, used when the blocks
	// carry too little content.
	BodyText string `json:"-"`
}

// ContentBlock represents a semantic block of text on a page.
type ContentBlock struct {
	Type string `json:"type"` // e.g., "heading", "p", "li", "tr", "div"
	Text string `json:"text"`
}

// ToPlainText joins the rendered blocks into a single content string.
func (p *Page) ToPlainText() string {
	parts := make([]string, 0, len(p.Blocks))
	for _, block := range p.Blocks {
		switch block.Type {
		case "heading":
			parts = append(parts, "HEADING: "+block.Text)
		case "li":
			parts = append(parts, "• "+block.Text)
		default:
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, " ")
}
