package terminal

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RGB is a simple 24-bit color, used by Settings for the values parsed out
// of an X resource file rather than a full image/color.Color (the screen
// model already has its own truecolor packing in Style).
type RGB struct {
	R, G, B uint8
}

// Settings collects every terminal-wide option spec.md §6 recognises,
// grounded on the teacher's font/color/behavior fields scattered across
// term.go but gathered here into one configuration object loaded from
// `-xrm` resources or `~/.terminator-settings`, in the style of classic X
// resource databases (`Terminator*foo: bar`).
type Settings struct {
	AntiAlias   bool
	BlockCursor bool
	CursorBlink bool
	FancyBell   bool
	VisualBell  bool

	FontName string
	FontSize float64

	InitialColumnCount int
	InitialRowCount    int
	InternalBorder     int

	LoginShell      bool
	ScrollKey       bool
	ScrollTTYOutput bool
	UseMenuBar      bool

	Color0, Color1, Color2, Color3 RGB
	Color4, Color5, Color6, Color7 RGB
	Background                     RGB
	Foreground                     RGB
	ColorBD                        RGB
	HasColorBD                     bool
	CursorColor                    RGB
	SelectionColor                 RGB

	// MaxScrollback bounds the primary screen's scrollback history
	// (spec.md §3's "bounded by a configured maximum").
	MaxScrollback int

	// ClearScrollbackOnErase resolves an Open Question from spec.md §9:
	// whether ED 2 (erase entire display) also drops scrollback. Default
	// false matches classic xterm behaviour.
	ClearScrollbackOnErase bool
}

// DefaultSettings returns the settings a freshly started session uses
// before any resource file is applied, grounded on the teacher's New()
// constructor defaults in term.go.
func DefaultSettings() Settings {
	s := Settings{
		BlockCursor:        true,
		CursorBlink:        true,
		FontSize:           14,
		InitialColumnCount: 80,
		InitialRowCount:    24,
		InternalBorder:     2,
		LoginShell:         true,
		ScrollKey:          true,
		ScrollTTYOutput:    false,
		MaxScrollback:      10000,
		Foreground:         RGB{0xFA, 0xFA, 0xFA},
		Background:         RGB{0x00, 0x00, 0x00},
	}
	s.Color0 = RGB{0x00, 0x00, 0x00}
	s.Color1 = RGB{0xCD, 0x00, 0x00}
	s.Color2 = RGB{0x00, 0xCD, 0x00}
	s.Color3 = RGB{0xCD, 0xCD, 0x00}
	s.Color4 = RGB{0x00, 0x00, 0xEE}
	s.Color5 = RGB{0xCD, 0x00, 0xCD}
	s.Color6 = RGB{0x00, 0xCD, 0xCD}
	s.Color7 = RGB{0xE5, 0xE5, 0xE5}
	s.CursorColor = s.Foreground
	s.SelectionColor = RGB{0x40, 0x40, 0xA0}
	return s
}

// resourceFields maps the lowercase resource key name to a setter, so
// ParseResources stays a flat table instead of a long if/else chain.
func (s *Settings) resourceFields() map[string]func(string) error {
	boolSetter := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}
	intSetter := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	colorSetter := func(dst *RGB) func(string) error {
		return func(v string) error {
			c, err := ParseColor(v)
			if err != nil {
				return err
			}
			*dst = c
			return nil
		}
	}

	return map[string]func(string) error{
		"antialias":       boolSetter(&s.AntiAlias),
		"blockcursor":     boolSetter(&s.BlockCursor),
		"cursorblink":     boolSetter(&s.CursorBlink),
		"fancybell":       boolSetter(&s.FancyBell),
		"visualbell":      boolSetter(&s.VisualBell),
		"loginshell":      boolSetter(&s.LoginShell),
		"scrollkey":       boolSetter(&s.ScrollKey),
		"scrollttyoutput": boolSetter(&s.ScrollTTYOutput),
		"usemenubar":      boolSetter(&s.UseMenuBar),
		"fontname":        func(v string) error { s.FontName = v; return nil },
		"fontsize": func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			s.FontSize = f
			return nil
		},
		"initialcolumncount": intSetter(&s.InitialColumnCount),
		"initialrowcount":    intSetter(&s.InitialRowCount),
		"internalborder":     intSetter(&s.InternalBorder),
		"scrollback":         intSetter(&s.MaxScrollback),
		"color0":             colorSetter(&s.Color0),
		"color1":             colorSetter(&s.Color1),
		"color2":             colorSetter(&s.Color2),
		"color3":             colorSetter(&s.Color3),
		"color4":             colorSetter(&s.Color4),
		"color5":             colorSetter(&s.Color5),
		"color6":             colorSetter(&s.Color6),
		"color7":             colorSetter(&s.Color7),
		"background":         colorSetter(&s.Background),
		"foreground":         colorSetter(&s.Foreground),
		"cursorcolor":        colorSetter(&s.CursorColor),
		"selectioncolor":     colorSetter(&s.SelectionColor),
		"colorbd": func(v string) error {
			c, err := ParseColor(v)
			if err != nil {
				return err
			}
			s.ColorBD, s.HasColorBD = c, true
			return nil
		},
		"clearscrollbackonerase": boolSetter(&s.ClearScrollbackOnErase),
	}
}

// ApplyResource sets a single key/value pair, case-insensitively on the
// key, as produced by ParseResources.
func (s *Settings) ApplyResource(key, value string) error {
	setter, ok := s.resourceFields()[strings.ToLower(key)]
	if !ok {
		return nil // unknown keys are ignored, matching classic X resources
	}
	return setter(value)
}

// brightPalette holds the color8-15 counterparts of Color0-7, in the same
// order, used by resolveColorBD's exact-match heuristic.
var brightPalette = [8]RGB{
	{0x7F, 0x7F, 0x7F}, {0xFF, 0x00, 0x00}, {0x00, 0xFF, 0x00}, {0xFF, 0xFF, 0x00},
	{0x5C, 0x5C, 0xFF}, {0xFF, 0x00, 0xFF}, {0x00, 0xFF, 0xFF}, {0xFF, 0xFF, 0xFF},
}

// resolveColorBD fills in ColorBD when the resource file never set one,
// per spec.md §6's heuristic: "if foreground matches color0..7, set it to
// the corresponding color8..15". When the foreground isn't one of the
// eight base palette colors, fall back to a brightened copy of it so
// ColorBD is never left equal to DefaultStyle's zero value.
func (s *Settings) resolveColorBD() {
	if s.HasColorBD {
		return
	}
	base := [8]RGB{s.Color0, s.Color1, s.Color2, s.Color3, s.Color4, s.Color5, s.Color6, s.Color7}
	for i, c := range base {
		if c == s.Foreground {
			s.ColorBD = brightPalette[i]
			return
		}
	}
	brighten := func(c uint8) uint8 {
		v := int(c) + 85
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	s.ColorBD = RGB{brighten(s.Foreground.R), brighten(s.Foreground.G), brighten(s.Foreground.B)}
}

// ParseResources reads an X-resource-style settings stream (the format
// `-xrm` options and `~/.terminator-settings` both use):
//
//	Terminator*key: value
//	Terminator.key: value
//	key: value
//	! a comment
//	# a comment
//
// and applies every recognized key onto s. Grounded on the teacher's
// command-line/settings handling conventions (term.go's use of a flat
// named-option style) generalized into an actual resource-file reader,
// since the teacher never persists user preferences to disk.
func (s *Settings) ParseResources(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		key = strings.TrimPrefix(key, "Terminator*")
		key = strings.TrimPrefix(key, "Terminator.")
		if err := s.ApplyResource(key, value); err != nil {
			return fmt.Errorf("settings: key %q: %w", key, err)
		}
	}
	s.resolveColorBD()
	return scanner.Err()
}

// ParseColor accepts either "#rrggbb" or one of a small set of X11
// rgb.txt color names the teacher's theme already speaks in terms of
// (black/red/green/yellow/blue/magenta/cyan/white and their "bright"
// counterparts), per spec.md §6.
func ParseColor(v string) (RGB, error) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "#") && len(v) == 7 {
		n, err := strconv.ParseUint(v[1:], 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("bad color %q: %w", v, err)
		}
		return RGB{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
	}
	if c, ok := x11Names[strings.ToLower(v)]; ok {
		return c, nil
	}
	return RGB{}, fmt.Errorf("unrecognized color %q", v)
}

var x11Names = map[string]RGB{
	"black":         {0x00, 0x00, 0x00},
	"red":           {0xCD, 0x00, 0x00},
	"green":         {0x00, 0xCD, 0x00},
	"yellow":        {0xCD, 0xCD, 0x00},
	"blue":          {0x00, 0x00, 0xEE},
	"magenta":       {0xCD, 0x00, 0xCD},
	"cyan":          {0x00, 0xCD, 0xCD},
	"white":         {0xE5, 0xE5, 0xE5},
	"brightblack":   {0x7F, 0x7F, 0x7F},
	"brightred":     {0xFF, 0x00, 0x00},
	"brightgreen":   {0x00, 0xFF, 0x00},
	"brightyellow":  {0xFF, 0xFF, 0x00},
	"brightblue":    {0x5C, 0x5C, 0xFF},
	"brightmagenta": {0xFF, 0x00, 0xFF},
	"brightcyan":    {0x00, 0xFF, 0xFF},
	"brightwhite":   {0xFF, 0xFF, 0xFF},
}
