// Package chart renders the small inline SVG charts of the console.
package chart

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Defaults for HBars.
const (
	DefaultWidth     = 640
	DefaultRowHeight = 28
	DefaultLabelArea = 180
	DefaultPadding   = 16
)

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	// Text is printed next to the bar; empty means the raw value.
	Text string
}

// Opts tunes HBars.
type Opts struct {
	Title       string
	Description string
	Width       int
	RowHeight   int
	LabelArea   int
	AxisColor   string
}

// Hues spreads n hues evenly around the colour wheel: bar i of n gets
// round(i*360/n).
func Hues(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = int(math.Round(float64(i) * 360 / float64(n)))
	}
	return out
}

// Color is the muted pastel fill for hue.
func Color(hue int) string {
	return fmt.Sprintf("hsl(%d, 50%%, 70%%)", hue)
}

// HBars renders one horizontal bar per entry, coloured by Hues.
func HBars(bars []Bar, opts Opts) (template.HTML, error) {
	if len(bars) == 0 {
		return "", fmt.Errorf("chart: at least one bar required")
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	rowHeight := opts.RowHeight
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	labelArea := float64(opts.LabelArea)
	if labelArea <= 0 {
		labelArea = DefaultLabelArea
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	padding := float64(DefaultPadding)

	plotWidth := float64(width) - labelArea - 2*padding
	if plotWidth <= 0 {
		return "", fmt.Errorf("chart: viewport too small")
	}
	height := int(2*padding) + rowHeight*len(bars)

	minVal, maxVal := 0.0, 0.0
	for _, b := range bars {
		minVal = math.Min(minVal, b.Value)
		maxVal = math.Max(maxVal, b.Value)
	}
	if maxVal-minVal < 1e-9 {
		maxVal = minVal + 1
	}
	// Leave room on the right for the value text.
	scale := plotWidth * 0.85 / (maxVal - minVal)
	zeroX := padding + labelArea + (0-minVal)*scale

	titleID := makeID(opts.Title, "hbar-title")
	descID := makeID(opts.Title, "hbar-desc")
	hues := Hues(len(bars))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Horizontal bars"))))

	top := padding
	bottom := padding + float64(rowHeight*len(bars))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\"></line>", zeroX, top, zeroX, bottom, axisColor))

	barHeight := float64(rowHeight) * 0.7
	for i, bar := range bars {
		rowY := top + float64(i*rowHeight)
		barY := rowY + (float64(rowHeight)-barHeight)/2
		x, w := zeroX, bar.Value*scale
		if w < 0 {
			x, w = zeroX+w, -w
		}
		text := bar.Text
		if text == "" {
			text = formatValue(bar.Value)
		}
		label := template.HTMLEscapeString(bar.Label)
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" text-anchor=\"end\">%s</text>", padding+labelArea-8, barY+barHeight/2+4, axisColor, label))
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s\"></rect>", x, barY, w, barHeight, Color(hues[i]), label))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"start\">%s</text>", x+w+4, barY+barHeight/2+4, axisColor, template.HTMLEscapeString(text)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatValue(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
