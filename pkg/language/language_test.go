package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		text string
		want string
	}{
		{"What are the school timings?", English},
		{"स्कूल का समय क्या है?", Hindi},
		{"दिसंबर में छुट्टियाँ कब हैं", Hindi},
		{"", English},
		{"   ", English},
		{"12345", English},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}
