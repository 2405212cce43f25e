package terminal

// ApplySGR interprets the numeric parameters of a CSI ... m (Select
// Graphic Rendition) sequence against the current pen and returns the
// resulting Style, grounded on the teacher's handleColorEscape/
// handleColorMode family in color.go but re-targeted from image/color.Color
// onto Style, the screen model's own cell attribute type. Each SGR
// parameter is an explicit instruction (set/clear one attribute), so
// interpretation must see the live pen rather than compose in isolation —
// that is why this lives on the style already in effect instead of
// returning a standalone delta.
//
// An empty parameter list is treated as a single implicit 0 (reset), the
// default CSI parameters use everywhere else.
func ApplySGR(current Style, params []int) Style {
	if len(params) == 0 {
		params = []int{0}
	}

	style := current

	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			style = Style{}
		case p == 1:
			style.Bold = true
		case p == 4:
			style.Underline = true
		case p == 5, p == 6:
			style.Blink = true
		case p == 7:
			style.Reverse = true
		case p == 22:
			style.Bold = false
		case p == 24:
			style.Underline = false
		case p == 25:
			style.Blink = false
		case p == 27:
			style.Reverse = false
		case p >= 30 && p <= 37:
			style.FG, style.HasFG, style.FG256, style.HasTrueColorFG = uint8(p-30), true, false, false
		case p == 38:
			consumed := applyExtendedColor(&style, params[i+1:], true)
			i += consumed
		case p == 39:
			style.HasFG, style.HasTrueColorFG, style.FG256 = false, false, false
		case p >= 40 && p <= 47:
			style.BG, style.HasBG, style.BG256, style.HasTrueColorBG = uint8(p-40), true, false, false
		case p == 48:
			consumed := applyExtendedColor(&style, params[i+1:], false)
			i += consumed
		case p == 49:
			style.HasBG, style.HasTrueColorBG, style.BG256 = false, false, false
		case p >= 90 && p <= 97:
			style.FG, style.HasFG, style.FG256 = uint8(p-90+8), true, true
		case p >= 100 && p <= 107:
			style.BG, style.HasBG, style.BG256 = uint8(p-100+8), true, true
		}
	}

	return style
}

// applyExtendedColor consumes the ";5;n" (256-color) or ";2;r;g;b"
// (truecolor) parameter sequence following a 38/48 SGR code and returns how
// many extra parameters it consumed.
func applyExtendedColor(style *Style, rest []int, fg bool) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return 1
		}
		idx := uint8(rest[1])
		if fg {
			style.FG, style.HasFG, style.FG256 = idx, true, true
		} else {
			style.BG, style.HasBG, style.BG256 = idx, true, true
		}
		return 2
	case 2:
		if len(rest) < 4 {
			return len(rest)
		}
		rgb := packRGB(rest[1], rest[2], rest[3])
		if fg {
			style.TrueColorFG, style.HasTrueColorFG, style.HasFG = rgb, true, true
		} else {
			style.TrueColorBG, style.HasTrueColorBG, style.HasBG = rgb, true, true
		}
		return 4
	default:
		return 0
	}
}

func packRGB(r, g, bch int) uint32 {
	clamp := func(v int) uint32 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint32(v)
	}
	return clamp(r)<<16 | clamp(g)<<8 | clamp(bch)
}
