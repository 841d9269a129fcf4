package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"

	"Midas/internal/domain/models"
)

func TestComposeIronCondorScenario(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Compose(&models.OneLinerRequest{
		Class:      "IRON_CONDOR",
		Confidence: 0.73,
		Publisher:  "Reuters",
		Refs: []*models.Headline{
			{URL: "https://a"},
			nil,
			{URL: "https://b"},
		},
	})

	wantPrefix := "Range-bound, IV watch. Source: Reuters —([1][2])"
	if !strings.HasPrefix(out.Text, wantPrefix) {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(out.RefsNumbers) != 2 {
		t.Fatalf("expected 2 numbered refs, got %d", len(out.RefsNumbers))
	}
	if out.RefsNumbers[0].N != 1 || out.RefsNumbers[0].URL != "https://a" {
		t.Fatalf("unexpected first ref %+v", out.RefsNumbers[0])
	}
	if out.RefsNumbers[1].N != 2 || out.RefsNumbers[1].URL != "https://b" {
		t.Fatalf("unexpected second ref %+v", out.RefsNumbers[1])
	}
}

func TestComposeDenseNumbering(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Compose(&models.OneLinerRequest{
		Class: "NO_ACTION",
		Refs: []*models.Headline{
			nil,
			{URL: "https://a"},
			{URL: "https://b"},
		},
	})
	if !strings.Contains(out.Text, "([1][2])") {
		t.Fatalf("numbering must be dense over present refs, got %q", out.Text)
	}
	if strings.Contains(out.Text, "[3]") {
		t.Fatalf("positional numbering leaked into %q", out.Text)
	}
}

func TestComposeUnknownClass(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Compose(&models.OneLinerRequest{Class: "SOMETHING_ELSE"})
	if !strings.HasPrefix(out.Text, "Review setup. Source: News —") {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if out.RefsNumbers != nil {
		t.Fatalf("no refs expected, got %+v", out.RefsNumbers)
	}
}

func TestComposeKnownClasses(t *testing.T) {
	cases := map[string]string{
		"IRON_CONDOR":  "Range-bound, IV watch",
		"DEBIT_CALL":   "Bullish, defined risk",
		"DEBIT_PUT":    "Bearish, defined risk",
		"COVERED_CALL": "Income; upside capped",
		"NO_ACTION":    "Signal unclear",
	}
	c := NewOneLinerComposer()
	for class, phrase := range cases {
		out := c.Compose(&models.OneLinerRequest{Class: class})
		if !strings.HasPrefix(out.Text, phrase+". ") {
			t.Fatalf("class %s: unexpected text %q", class, out.Text)
		}
	}
}

func TestComposeTruncation(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Compose(&models.OneLinerRequest{
		Class:     "DEBIT_CALL",
		Publisher: strings.Repeat("VeryLongPublisherName", 20),
	})
	if n := utf8.RuneCountInString(out.Text); n > 180 {
		t.Fatalf("text exceeds 180 runes: %d", n)
	}
	if !strings.HasSuffix(out.Text, "…") {
		t.Fatalf("truncated text must end with one ellipsis, got %q", out.Text)
	}
	if strings.HasSuffix(out.Text, " …") {
		t.Fatalf("no whitespace allowed before the ellipsis: %q", out.Text)
	}
}

func TestComposeIgnoresExtraSlots(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Compose(&models.OneLinerRequest{
		Class: "NO_ACTION",
		Refs: []*models.Headline{
			{URL: "https://a"},
			{URL: "https://b"},
			{URL: "https://c"},
			{URL: "https://d"},
		},
	})
	if len(out.RefsNumbers) != 3 {
		t.Fatalf("only the first three slots count, got %d", len(out.RefsNumbers))
	}
}

func TestFallbackTemplate(t *testing.T) {
	c := NewOneLinerComposer()
	out := c.Fallback("DEBIT_PUT", 0.42)
	if out.Text != "DEBIT_PUT · 42% confidence" {
		t.Fatalf("unexpected fallback text %q", out.Text)
	}
}
