package vizstate

import "testing"

func TestAggregateStyle(t *testing.T) {
	tests := []struct {
		name   string
		styles []EdgeStyle
		want   EdgeStyle
	}{
		{"Empty", nil, StylePlain},
		{"SinglePlain", []EdgeStyle{StylePlain}, StylePlain},
		{"WarningWins", []EdgeStyle{StylePlain, StyleThick, StyleWarning}, StyleWarning},
		{"ThickOverHighlighted", []EdgeStyle{StyleHighlighted, StyleThick}, StyleThick},
		{"OrderIrrelevant", []EdgeStyle{StyleWarning, StylePlain}, StyleWarning},
		{"Ties", []EdgeStyle{StyleThick, StyleThick}, StyleThick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateStyle(tt.styles); got != tt.want {
				t.Errorf("AggregateStyle(%v) = %v, want %v", tt.styles, got, tt.want)
			}
		})
	}
}

func TestEdgeStyle_String(t *testing.T) {
	tests := []struct {
		style EdgeStyle
		want  string
	}{
		{StylePlain, "plain"},
		{StyleHighlighted, "highlighted"},
		{StyleThick, "thick"},
		{StyleWarning, "warning"},
	}
	for _, tt := range tests {
		if got := tt.style.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.style, got, tt.want)
		}
	}
}
