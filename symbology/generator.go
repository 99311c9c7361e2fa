package symbology

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode/utf8"

	svg "github.com/ajstarks/svgo"
	colors "gopkg.in/go-playground/colors.v1"

	"github.com/atlasdatatech/sublayer/internal/log"
)

const (
	// DefaultColor is used for the initial entry of a resolved sublayer.
	DefaultColor = "#16bf27"

	// placeholder colours share saturation and value; only the hue varies
	placeholderSaturation = 0.4
	placeholderValue      = 0.8

	iconSize = 32
)

// Generator builds a single placeholder entry for a label.
type Generator interface {
	Placeholder(label, colorSeed string) Entry
}

// SVGGenerator renders placeholder entries as a rounded square with the
// first letter of the label.
type SVGGenerator struct{}

var _ Generator = SVGGenerator{}

// Placeholder returns an entry for label drawn in colorSeed. An unparsable
// colour falls back to DefaultColor.
func (SVGGenerator) Placeholder(label, colorSeed string) Entry {
	c, err := colors.Parse(colorSeed)
	if err != nil {
		log.Warnf("invalid placeholder colour %q for %q: %v", colorSeed, label, err)
		c, _ = colors.Parse(DefaultColor)
	}
	hex := c.ToHEX().String()

	textColor := "#ffffff"
	if c.IsLight() {
		textColor = "#000000"
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(iconSize, iconSize)
	canvas.Roundrect(0, 0, iconSize, iconSize, 4, 4, "fill:"+hex)
	canvas.Text(iconSize/2, iconSize*2/3, initial(label),
		fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;text-anchor:middle", textColor))
	canvas.End()

	return Entry{
		Name:  label,
		Color: hex,
		SVG:   buf.String(),
	}
}

func initial(label string) string {
	r, _ := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

// PlaceholderColor returns a colour for name with a fixed saturation and
// value and a hue derived from the name. The same name always yields the
// same colour.
func PlaceholderColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32()%360) / 360

	r, g, b := hsvToRGB(hue, placeholderSaturation, placeholderValue)
	c, err := colors.RGB(r, g, b)
	if err != nil {
		return DefaultColor
	}
	return c.ToHEX().String()
}

// hsvToRGB expects h, s and v in [0,1].
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}
