package composer

import "strings"

// Intent is the path the composer took to build an answer.
type Intent string

const (
	IntentHoliday Intent = "holiday"
	IntentSchool  Intent = "school"
	IntentGeneric Intent = "generic"
)

var holidayKeywords = []string{"holiday", "holidays", "festival", "celebration", "off", "leave", "vacation"}

// Full names are tried before abbreviations; the first substring hit wins.
var monthKeywords = []struct {
	name  string
	month int
}{
	{"january", 1}, {"february", 2}, {"march", 3}, {"april", 4}, {"may", 5}, {"june", 6},
	{"july", 7}, {"august", 8}, {"september", 9}, {"october", 10}, {"november", 11}, {"december", 12},
	{"jan", 1}, {"feb", 2}, {"mar", 3}, {"apr", 4}, {"jun", 6}, {"jul", 7}, {"aug", 8},
	{"sep", 9}, {"sept", 9}, {"oct", 10}, {"nov", 11}, {"dec", 12},
}

var baseSchoolKeywords = []string{
	"school", "admission", "fee", "timing", "event", "contact", "facility", "teacher", "student", "class",
}

var ambiguousKeywords = []string{
	"address", "location", "phone", "number", "timing", "fee", "cost", "contact",
	"where", "when", "how much", "principal", "staff", "facilities", "events", "activities",
}

// DetectHoliday reports whether query asks about holidays and, if so, which
// month it names (0 when none). Matching is by substring, so "office" counts
// as a holiday query through "off".
func DetectHoliday(query string) (bool, int) {
	q := strings.ToLower(query)
	if !containsAny(q, holidayKeywords) {
		return false, 0
	}
	for _, m := range monthKeywords {
		if strings.Contains(q, m.name) {
			return true, m.month
		}
	}
	return true, 0
}

// IsAmbiguous reports whether query is short or vague enough that it should
// be read as being about the school.
func IsAmbiguous(query string) bool {
	return containsAny(strings.ToLower(query), ambiguousKeywords)
}

// schoolKeywords combines the generic school vocabulary with the school's
// own name and locality words.
func schoolKeywords(name string, extra []string) []string {
	kw := append([]string{}, baseSchoolKeywords...)
	if n := strings.ToLower(strings.TrimSpace(name)); n != "" {
		kw = append(kw, n)
	}
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kw = append(kw, k)
		}
	}
	return kw
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
