package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "AUTOSAR", want: "AUTOSAR\n"},
		{name: "depth 2", depth: 2, format: "ELEMENTS", want: "    ELEMENTS\n"},
		{name: "with formatting", depth: 1, format: "%s [%d]", args: []any{"AR-PACKAGE", 3}, want: "  AR-PACKAGE [3]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "uri", "file:/a b.arxml")
	tw.TextBlock(0, "empty", "")

	want := "  uri: \"file:/a b.arxml\"\nempty: \n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_List(t *testing.T) {
	tw := NewTreeWriter()
	tw.List(0, "sources", []string{"file:/a.arxml", "file:/b.arxml"})

	want := "sources (2)\n  - \"file:/a.arxml\"\n  - \"file:/b.arxml\"\n"
	if got := tw.String(); got != want {
		t.Errorf("List() = %q, want %q", got, want)
	}
}
