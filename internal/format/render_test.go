package format

import (
	"strings"
	"testing"

	"github.com/kvnav/kvnav/internal/store"
)

// TestRenderJSON_P7_Idempotence checks pretty(pretty(x)) == pretty(x).
func TestRenderJSON_P7_Idempotence(t *testing.T) {
	raw := []byte(`{"b":2,"a":[1,2,3],"c":{"nested":true,"n":null}}`)

	lines1, label1 := Render(store.Value{Type: store.TypeString, Str: raw}, Theme{})
	if label1 != "JSON" {
		t.Fatalf("expected JSON label, got %s", label1)
	}
	pretty1 := joinPlain(lines1)

	lines2, label2 := Render(store.Value{Type: store.TypeString, Str: []byte(pretty1)}, Theme{})
	if label2 != "JSON" {
		t.Fatalf("re-rendering pretty JSON should stay JSON, got %s", label2)
	}
	pretty2 := joinPlain(lines2)

	if pretty1 != pretty2 {
		t.Fatalf("pretty-print is not idempotent:\n--1--\n%s\n--2--\n%s", pretty1, pretty2)
	}
}

func joinPlain(lines []Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Plain)
	}
	return b.String()
}

func TestRenderList(t *testing.T) {
	lines, label := Render(store.Value{Type: store.TypeList, List: [][]byte{[]byte("a"), []byte("b")}}, Theme{})
	if label != "list" {
		t.Fatalf("label = %s, want list", label)
	}
	want := []string{"[0] a", "[1] b"}
	for i, w := range want {
		if lines[i].Plain != w {
			t.Errorf("line %d = %q, want %q", i, lines[i].Plain, w)
		}
	}
}

func TestRenderOrderedSet_TwoDecimalScore(t *testing.T) {
	lines, label := Render(store.Value{
		Type: store.TypeOrderedSet,
		OrderedSet: []store.ScoredMember{
			{Member: []byte("alice"), Score: 1},
			{Member: []byte("bob"), Score: 2.5},
		},
	}, Theme{})
	if label != "zset" {
		t.Fatalf("label = %s, want zset", label)
	}
	if lines[0].Plain != "1.00: alice" || lines[1].Plain != "2.50: bob" {
		t.Fatalf("unexpected zset rendering: %+v", lines)
	}
}

func TestRenderHash(t *testing.T) {
	lines, label := Render(store.Value{
		Type: store.TypeHash,
		Hash: []store.HashField{{Field: []byte("f1"), Value: []byte("v1")}},
	}, Theme{})
	if label != "hash" || lines[0].Plain != "f1: v1" {
		t.Fatalf("unexpected hash rendering: label=%s lines=%+v", label, lines)
	}
}

func TestRenderHexDump_LayoutAndGutter(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, 0x41}
	lines, label := Render(store.Value{Type: store.TypeString, Str: raw}, Theme{})
	if label != "binary" {
		t.Fatalf("label = %s, want binary", label)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows for 17 bytes at 16/row, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0].Plain, "00000000  ") {
		t.Fatalf("expected decimal-hex offset prefix, got %q", lines[0].Plain)
	}
	if !strings.Contains(lines[0].Plain, "|") {
		t.Fatalf("expected ascii gutter, got %q", lines[0].Plain)
	}
}

func TestRenderString_PlainText(t *testing.T) {
	lines, label := Render(store.Value{Type: store.TypeString, Str: []byte("line1\nline2")}, Theme{})
	if label != "text" {
		t.Fatalf("label = %s, want text", label)
	}
	if len(lines) != 2 || lines[0].Plain != "line1" || lines[1].Plain != "line2" {
		t.Fatalf("unexpected plain text rendering: %+v", lines)
	}
}
