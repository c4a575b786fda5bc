package composer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
)

const (
	promptContentLimit  = 800
	excerptContentLimit = 400
)

var urlPattern = regexp.MustCompile(`(https?://[^\s]+)`)

// Linkify turns bare URLs into anchors.
func Linkify(text string) string {
	return urlPattern.ReplaceAllString(text, `<a href="$1" target="_blank">$1</a>`)
}

func sourceFooter(url string) string {
	return fmt.Sprintf("\n\n🔗 **More details:** <a href=\"%s\" target=\"_blank\">%s</a>", url, url)
}

func languageSuffix(lang string) string {
	if lang == "hi" {
		return "\n\nRespond in Hindi."
	}
	return ""
}

func (c *Composer) schoolPrompt(q Query, content string) string {
	school := c.opts.SchoolName
	return fmt.Sprintf(`You are %s, an AI assistant for %s school. The user asked: "%s"

If the question is ambiguous (like "address", "timing", "fees", etc.), assume they're asking about %s school specifically.

School Information: %s

Provide a helpful answer focusing on %s school:%s`,
		c.opts.AssistantName, school, q.Text, school,
		common.Truncate(content, promptContentLimit), school, languageSuffix(q.Language))
}

func (c *Composer) genericPrompt(q Query) string {
	school := c.opts.SchoolName
	return fmt.Sprintf(`You are %s, an AI assistant for %s school. Answer the user's question naturally. When appropriate, you can relate the answer to education or school context.

User Question: %s

Provide a helpful answer (mention %s school context if relevant):%s`,
		c.opts.AssistantName, school, q.Text, school, languageSuffix(q.Language))
}

// schoolFallback picks a lead-in by keyword and prefixes it onto an excerpt
// of the best document.
func (c *Composer) schoolFallback(query, content string) string {
	q := strings.ToLower(query)
	school := c.opts.SchoolName

	var heading string
	switch {
	case containsAny(q, []string{"address", "location", "where"}):
		heading = fmt.Sprintf("**%s School Address:**", school)
	case containsAny(q, []string{"phone", "contact", "number"}):
		heading = fmt.Sprintf("**%s Contact Information:**", school)
	case containsAny(q, []string{"timing", "time", "hours"}):
		heading = fmt.Sprintf("**%s School Timings:**", school)
	case containsAny(q, []string{"fee", "cost", "payment"}):
		heading = fmt.Sprintf("**%s Fee Structure:**", school)
	default:
		heading = fmt.Sprintf("**About %s School:**", school)
	}
	return heading + "\n\n" + common.Truncate(content, excerptContentLimit)
}

// CapabilityOverview is the generic answer used when the model has nothing
// to say.
func CapabilityOverview(assistant, school string) string {
	return fmt.Sprintf(`I can help you with that! As %s for %s school, I can discuss various topics.

For school-specific information, I have details about:
🏫 **Address & Location** • 📞 **Contact Numbers** • ⏰ **School Timings** 
🎓 **Admissions** • 💰 **Fees** • 🎉 **Events** • 🏗️ **Facilities**

Feel free to ask me anything - I'll prioritize %s school information when relevant!`, assistant, school, school)
}

// FormatHolidays renders a holiday listing. month is 0 when the question did
// not name one.
func FormatHolidays(holidays []models.HolidayEvent, month int) string {
	var b strings.Builder
	if month >= 1 && month <= 12 {
		fmt.Fprintf(&b, "Holidays in %s:\n\n", time.Month(month))
	} else {
		b.WriteString("Upcoming Holidays:\n\n")
	}
	for _, h := range holidays {
		fmt.Fprintf(&b, "🎉 %s - %s\n", h.Title, h.DisplayDate())
		if h.Description != "" {
			fmt.Fprintf(&b, "   %s\n", h.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// NoHolidays is the reply when the calendar has nothing for the request.
func NoHolidays(month int) string {
	if month >= 1 && month <= 12 {
		return fmt.Sprintf("No holidays found for %s. Please check back later for updates on school events and holidays.", time.Month(month))
	}
	return "No holidays found in our calendar. Please check back later for updates on school events and holidays."
}
