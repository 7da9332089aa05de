package ui

import (
	"strings"
	"testing"

	"github.com/kvnav/kvnav/internal/tree"
)

// TestFormatTTL_S6 exercises the spec's worked TTL examples.
func TestFormatTTL_S6(t *testing.T) {
	cases := []struct {
		ttl  int64
		want string
	}{
		{-1, "no expiry"},
		{30, "30s"},
		{1800, "30m"},
		{7200, "2h"},
	}
	for _, c := range cases {
		got := FormatTTL(c.ttl, Dark)
		if !strings.Contains(got, c.want) {
			t.Errorf("FormatTTL(%d) = %q, want to contain %q", c.ttl, got, c.want)
		}
	}
}

func TestRenderTreeRow_Prefixes(t *testing.T) {
	cases := []struct {
		name string
		row  tree.Row
		want string
	}{
		{"expanded folder", tree.Row{IsFolder: true, Expanded: true, ChildCount: 2, Name: "a"}, "[-] a (2)"},
		{"collapsed folder with children", tree.Row{IsFolder: true, ChildCount: 3, Name: "b"}, "[+] b (3)"},
		{"empty folder", tree.Row{IsFolder: true, Name: "c"}, "[ ] c (0)"},
		{"leaf", tree.Row{IsFolder: false, Name: "d"}, "    d"},
	}
	for _, c := range cases {
		if got := renderTreeRow(c.row); got != c.want {
			t.Errorf("%s: renderTreeRow = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestRenderTreeRow_Indent(t *testing.T) {
	row := tree.Row{Depth: 2, Name: "leaf"}
	got := renderTreeRow(row)
	if !strings.HasPrefix(got, "    "+"    "+"leaf") {
		// 2 * 2-space indent (4 spaces) + 4-space leaf prefix = 8 spaces before the name
		t.Errorf("expected 2*depth indent before leaf prefix, got %q", got)
	}
}
