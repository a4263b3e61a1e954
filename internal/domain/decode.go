package domain

import (
	"golang.org/x/text/encoding/charmap"
)

// DecodedText is the UTF-8 rendition of a single-byte station file.
type DecodedText struct {
	Text string
	// ControlBytes holds the byte offsets of C1 control bytes (0x80–0x9F) in
	// the source. ISO-8859-1 maps them to invisible code points.
	ControlBytes []int
}

// Lossy reports whether any byte decoded to a C1 control character.
func (d DecodedText) Lossy() bool {
	return len(d.ControlBytes) > 0
}

// DecodeLatin1 decodes raw bytes as ISO-8859-1. Every byte maps to a code
// point, so decoding cannot fail.
func DecodeLatin1(raw []byte) DecodedText {
	var controls []int
	for i, b := range raw {
		if b >= 0x80 && b <= 0x9F {
			controls = append(controls, i)
		}
	}

	// ISO-8859-1 has a total mapping; the decoder never returns an error.
	text, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)

	return DecodedText{Text: string(text), ControlBytes: controls}
}
