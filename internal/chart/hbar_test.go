package chart

import (
	"strings"
	"testing"
)

func TestHuesEvenlySpaced(t *testing.T) {
	got := Hues(4)
	want := []int{0, 90, 180, 270}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hue %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if h := Hues(3); h[1] != 120 || h[2] != 240 {
		t.Fatalf("unexpected hues for 3 bars: %v", h)
	}
	if h := Hues(7); h[1] != 51 {
		t.Fatalf("expected rounded hue 51, got %d", h[1])
	}
	if len(Hues(0)) != 0 {
		t.Fatalf("expected no hues for empty chart")
	}
}

func TestHBarsProducesSVG(t *testing.T) {
	html, err := HBars([]Bar{
		{Label: "Плёнка", Value: 12.5, Text: "12,5"},
		{Label: "Коробка", Value: 3},
		{Label: "Возврат", Value: -2},
	}, Opts{Title: "Расход"})
	if err != nil {
		t.Fatalf("hbars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<rect") != 3 {
		t.Fatalf("expected three bars in svg")
	}
	for _, fill := range []string{"hsl(0, 50%, 70%)", "hsl(120, 50%, 70%)", "hsl(240, 50%, 70%)"} {
		if !strings.Contains(output, fill) {
			t.Fatalf("expected fill %s", fill)
		}
	}
	if !strings.Contains(output, "12,5") || !strings.Contains(output, ">3<") {
		t.Fatalf("expected value labels")
	}
}

func TestHBarsRequiresData(t *testing.T) {
	if _, err := HBars(nil, Opts{}); err == nil {
		t.Fatalf("expected error for empty chart")
	}
}
