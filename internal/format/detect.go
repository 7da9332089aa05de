// Package format classifies raw byte buffers into a display format and
// renders typed values into styled lines for the value pane.
package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Format is the detected presentation kind for a buffer of bytes.
type Format int

const (
	PlainText Format = iota
	Json
	Xml
	Html
	Binary
)

func (f Format) String() string {
	switch f {
	case Json:
		return "JSON"
	case Xml:
		return "XML"
	case Html:
		return "HTML"
	case Binary:
		return "binary"
	default:
		return "text"
	}
}

var binaryMagic = [][]byte{
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	{0xFF, 0xD8, 0xFF},       // JPEG
	[]byte("GIF8"),           // GIF
	[]byte("%PDF"),           // PDF
}

// Detect classifies buf into exactly one of the five formats, per spec
// §4.3. Every byte slice, including the empty slice, classifies to
// something (P6 in spec §8).
func Detect(buf []byte) Format {
	if isBinary(buf) {
		return Binary
	}

	trimmed := bytes.TrimSpace(buf)
	if looksLikeJSON(trimmed) && isValidJSON(trimmed) {
		return Json
	}

	if isXMLOrHTML(trimmed) {
		return detectMarkup(trimmed)
	}

	return PlainText
}

func isBinary(buf []byte) bool {
	for _, magic := range binaryMagic {
		if bytes.HasPrefix(buf, magic) {
			return true
		}
	}
	if !utf8.Valid(buf) {
		return true
	}
	if len(buf) == 0 {
		return false
	}
	control := 0
	for _, b := range buf {
		if isControl(b) {
			control++
		}
	}
	return float64(control)/float64(len(buf)) > 0.10
}

func isControl(b byte) bool {
	if b == '\t' || b == '\n' || b == '\r' {
		return false
	}
	return b < 0x20 || b == 0x7F
}

func looksLikeJSON(trimmed []byte) bool {
	if len(trimmed) < 2 {
		return false
	}
	switch trimmed[0] {
	case '{':
		return trimmed[len(trimmed)-1] == '}'
	case '[':
		return trimmed[len(trimmed)-1] == ']'
	default:
		return false
	}
}

func isValidJSON(trimmed []byte) bool {
	var v interface{}
	return json.Unmarshal(trimmed, &v) == nil
}

func isXMLOrHTML(trimmed []byte) bool {
	s := string(trimmed)
	if strings.HasPrefix(s, "<?xml") || strings.HasPrefix(s, "<!DOCTYPE") {
		return true
	}
	if strings.Contains(strings.ToLower(s), "<html") {
		return true
	}
	return strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">")
}

func detectMarkup(trimmed []byte) Format {
	s := string(trimmed)
	if strings.HasPrefix(s, "<?xml") || strings.HasPrefix(s, "<!DOCTYPE") {
		return Xml
	}
	if strings.Contains(strings.ToLower(s), "<html") {
		return Html
	}
	return Xml
}
