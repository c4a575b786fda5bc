// Package language tells English questions from Hindi ones.
package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

const (
	English = "en"
	Hindi   = "hi"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector limited to English and Hindi.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Hindi).
			Build(),
	}
}

// Detect returns "hi" for Hindi text and "en" for everything else.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return English
	}
	if lang, ok := d.detector.DetectLanguageOf(text); ok && lang == lingua.Hindi {
		return Hindi
	}
	return English
}
