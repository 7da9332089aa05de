package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kvnav/kvnav/internal/store"
)

// Theme carries the styles used to color rendered value lines. Callers
// (internal/ui) construct one from their active color theme; a zero-value
// Theme renders unstyled (lipgloss.Style{} is a no-op renderer).
type Theme struct {
	JSONKey    lipgloss.Style
	JSONString lipgloss.Style
	JSONNumber lipgloss.Style
	JSONBool   lipgloss.Style
	JSONNull   lipgloss.Style
}

// Line is one line of a rendered value: Plain is the unstyled text (used
// for width calculations and the editor round-trip), Styled is the
// terminal-ready ANSI rendering.
type Line struct {
	Plain  string
	Styled string
}

func plainLine(s string) Line { return Line{Plain: s, Styled: s} }

// Render produces the styled display lines and a short format label for
// value, per the rendering contract in spec §4.3.
func Render(value store.Value, theme Theme) ([]Line, string) {
	switch value.Type {
	case store.TypeString:
		return renderString(value.Str, theme)
	case store.TypeList:
		return renderList(value.List), "list"
	case store.TypeSet:
		return renderSet(value.Set), "set"
	case store.TypeOrderedSet:
		return renderOrderedSet(value.OrderedSet), "zset"
	case store.TypeHash:
		return renderHash(value.Hash), "hash"
	case store.TypeStream:
		return []Line{plainLine(value.Stream)}, "stream"
	default:
		return nil, "none"
	}
}

func renderString(raw []byte, theme Theme) ([]Line, string) {
	switch f := Detect(raw); f {
	case Json:
		return renderJSON(raw, theme), "JSON"
	case Binary:
		return renderHexDump(raw), "binary"
	default:
		var lines []Line
		for _, l := range strings.Split(string(raw), "\n") {
			lines = append(lines, plainLine(l))
		}
		return lines, f.String()
	}
}

// renderJSON pretty-reformats raw (two-space indent, matching
// json.Indent's canonical form, so Render(Render(x)) == Render(x) — spec
// P7) and re-tokenizes the result to apply per-token coloring.
func renderJSON(raw []byte, theme Theme) []Line {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return []Line{plainLine(string(raw))}
	}
	var lines []Line
	for _, l := range strings.Split(buf.String(), "\n") {
		lines = append(lines, Line{Plain: l, Styled: colorizeJSONLine(l, theme)})
	}
	return lines
}

// colorizeJSONLine applies per-token coloring to one line of
// already-pretty-printed JSON: the leading `"key":` token gets JSONKey,
// and the trailing value token gets a style picked by its syntactic kind.
func colorizeJSONLine(line string, theme Theme) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return line
	}

	keyPart := ""
	rest := trimmed
	if strings.HasPrefix(trimmed, `"`) {
		if end := findStringEnd(trimmed, 0); end >= 0 && end+1 < len(trimmed) && trimmed[end+1] == ':' {
			keyPart = theme.JSONKey.Render(trimmed[:end+1]) + ":"
			rest = strings.TrimLeft(trimmed[end+2:], " ")
			rest = " " + rest
		}
	}

	trailer := ""
	valuePart := rest
	if strings.HasSuffix(valuePart, ",") {
		trailer = ","
		valuePart = valuePart[:len(valuePart)-1]
	}

	styledValue := colorizeJSONValue(valuePart, theme)
	return indent + keyPart + styledValue + trailer
}

func colorizeJSONValue(v string, theme Theme) string {
	t := strings.TrimSpace(v)
	prefix := v[:len(v)-len(strings.TrimLeft(v, " "))]
	switch {
	case t == "":
		return v
	case t == "{" || t == "}" || t == "[" || t == "]":
		return v
	case strings.HasPrefix(t, `"`):
		return prefix + theme.JSONString.Render(t)
	case t == "true" || t == "false":
		return prefix + theme.JSONBool.Render(t)
	case t == "null":
		return prefix + theme.JSONNull.Render(t)
	default:
		return prefix + theme.JSONNumber.Render(t)
	}
}

func findStringEnd(s string, start int) int {
	if start >= len(s) || s[start] != '"' {
		return -1
	}
	for i := start + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return i
		}
	}
	return -1
}

const hexRowWidth = 16
const hexMidGutter = 8

func renderHexDump(raw []byte) []Line {
	var lines []Line
	for off := 0; off < len(raw); off += hexRowWidth {
		end := off + hexRowWidth
		if end > len(raw) {
			end = len(raw)
		}
		row := raw[off:end]

		var hex strings.Builder
		var ascii strings.Builder
		for i := 0; i < hexRowWidth; i++ {
			if i == hexMidGutter {
				hex.WriteString(" ")
			}
			if i < len(row) {
				fmt.Fprintf(&hex, "%02x ", row[i])
				if printable(row[i]) {
					ascii.WriteByte(row[i])
				} else {
					ascii.WriteByte('.')
				}
			} else {
				hex.WriteString("   ")
			}
		}
		lines = append(lines, plainLine(fmt.Sprintf("%08x  %s |%s|", off, hex.String(), ascii.String())))
	}
	return lines
}

func printable(b byte) bool { return b >= 0x20 && b < 0x7F }

func renderList(items [][]byte) []Line {
	lines := make([]Line, 0, len(items))
	for i, item := range items {
		lines = append(lines, plainLine(fmt.Sprintf("[%d] %s", i, item)))
	}
	return lines
}

func renderSet(members [][]byte) []Line {
	lines := make([]Line, 0, len(members))
	for _, m := range members {
		lines = append(lines, plainLine(string(m)))
	}
	return lines
}

func renderOrderedSet(members []store.ScoredMember) []Line {
	lines := make([]Line, 0, len(members))
	for _, m := range members {
		lines = append(lines, plainLine(fmt.Sprintf("%.2f: %s", m.Score, m.Member)))
	}
	return lines
}

func renderHash(fields []store.HashField) []Line {
	lines := make([]Line, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, plainLine(fmt.Sprintf("%s: %s", f.Field, f.Value)))
	}
	return lines
}
