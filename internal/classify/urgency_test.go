package classify

import "testing"

func TestIsUrgent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain instruction", "please update the readme", false},
		{"lowercase emergency", "we have an emergency in staging", true},
		{"uppercase critical", "CRITICAL: production outage", true},
		{"immediately", "stop what you are doing immediately", true},
		{"asap uppercase only", "ship this ASAP", true},
		{"asap lowercase not in lexicon", "ship this asap", false},
		{"siren glyph", "🚨 all hands", true},
		{"warning glyph", "⚠️ disk nearly full", true},
		{"one token is sufficient", "routine cleanup, but URGENT", true},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUrgent(tt.text); got != tt.want {
				t.Errorf("IsUrgent(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsUrgent_Pure(t *testing.T) {
	// Two calls on identical input must agree.
	text := "CRITICAL: database is down"
	first := IsUrgent(text)
	second := IsUrgent(text)
	if first != second {
		t.Errorf("IsUrgent not deterministic: %v then %v", first, second)
	}
}
