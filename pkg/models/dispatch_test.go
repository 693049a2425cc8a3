package models

import (
	"strings"
	"testing"
)

func TestDeliveryMode_Valid(t *testing.T) {
	tests := []struct {
		name string
		mode DeliveryMode
		want bool
	}{
		{"normal is valid", ModeNormal, true},
		{"instant is valid", ModeInstant, true},
		{"empty is invalid", DeliveryMode(""), false},
		{"unknown is invalid", DeliveryMode("turbo"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Valid(); got != tt.want {
				t.Errorf("DeliveryMode(%q).Valid() = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestTruncatePreview(t *testing.T) {
	t.Run("short message unchanged", func(t *testing.T) {
		if got := TruncatePreview("deploy now"); got != "deploy now" {
			t.Errorf("TruncatePreview() = %q, want unchanged", got)
		}
	})

	t.Run("long message truncated with ellipsis", func(t *testing.T) {
		long := strings.Repeat("a", 120)
		got := TruncatePreview(long)
		if len([]rune(got)) != PreviewLimit {
			t.Errorf("truncated length = %d runes, want %d", len([]rune(got)), PreviewLimit)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncated preview %q missing ellipsis", got)
		}
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		long := strings.Repeat("緊", 80)
		got := TruncatePreview(long)
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncated preview missing ellipsis")
		}
		for _, r := range got {
			if r != '緊' && r != '.' {
				t.Errorf("unexpected rune %q in truncated preview", r)
			}
		}
	})
}
