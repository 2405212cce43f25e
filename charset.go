package terminal

// decSpecialGraphics maps the ASCII bytes 0x60-0x7E to the DEC Special
// Graphics line-drawing glyphs they stand for when G0/G1 is designated as
// CharsetDECSpecialGraphics (spec.md §4.4). Grounded on the teacher's
// decSpecialGraphics table in output.go, except that 'a' maps to the light
// shade and 'o'-'s' all map to the same horizontal line.
var decSpecialGraphics = map[rune]rune{
	'`': '◆',
	'a': '░',
	'b': '␉',
	'c': '␌',
	'd': '␍',
	'e': '␊',
	'f': '°',
	'g': '±',
	'h': '␤',
	'i': '␋',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '─',
	'p': '─',
	'q': '─',
	'r': '─',
	's': '─',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}

// ukCharset maps the single byte the UK national replacement character set
// (spec.md §4.4) differs on: '#' becomes the pound sign.
var ukCharset = map[rune]rune{
	'#': '£',
}

// translateCharset applies the mapping of charset cs to r.
// Unmapped runes pass through unchanged, which is also the entire behaviour
// of CharsetASCII.
func translateCharset(cs Charset, r rune) rune {
	switch cs {
	case CharsetDECSpecialGraphics:
		if mapped, ok := decSpecialGraphics[r]; ok {
			return mapped
		}
	case CharsetUK:
		if mapped, ok := ukCharset[r]; ok {
			return mapped
		}
	}
	return r
}

// charsetFromDesignator maps the final byte of an ESC ( / ) / * / +
// charset-designation sequence to a Charset value.
func charsetFromDesignator(final byte) (Charset, bool) {
	switch final {
	case 'B': // US ASCII
		return CharsetASCII, true
	case '0': // DEC Special Graphics
		return CharsetDECSpecialGraphics, true
	case 'A': // UK
		return CharsetUK, true
	default:
		return CharsetASCII, false
	}
}
