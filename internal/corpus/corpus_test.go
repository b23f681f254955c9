package corpus

import (
	"strings"
	"testing"
)

func TestDefault_Lookup(t *testing.T) {
	c := Default()

	src, ok := c.Lookup(SourceWikiAI)
	if !ok {
		t.Fatal("Expected source 1 to be known")
	}
	if src.Domain != "wikipedia.org" {
		t.Errorf("Expected wikipedia.org, got %s", src.Domain)
	}

	if _, ok := c.Lookup("42"); ok {
		t.Error("Expected unknown id to be unresolvable")
	}
	if len(c.Sources()) != 5 {
		t.Errorf("Expected 5 known sources, got %d", len(c.Sources()))
	}
}

func TestDefault_PhrasesResolve(t *testing.T) {
	c := Default()
	for _, p := range c.Phrases() {
		if p.Text != strings.ToLower(p.Text) {
			t.Errorf("Phrase %q must be lowercase", p.Text)
		}
		if _, ok := c.Lookup(p.SourceID); !ok {
			t.Errorf("Phrase %q points at unknown source %s", p.Text, p.SourceID)
		}
		if p.Similarity <= 0 || p.Similarity > 1 {
			t.Errorf("Phrase %q has similarity %f outside (0,1]", p.Text, p.Similarity)
		}
	}
}

func TestPassages(t *testing.T) {
	c := Default()

	two := c.Passages(2)
	if len(two) != 2 {
		t.Fatalf("Expected 2 passages, got %d", len(two))
	}
	if two[0].SourceID != SourceWikiAI || two[1].SourceID != SourceHabrML {
		t.Errorf("Expected the first two passages in order, got %s, %s", two[0].SourceID, two[1].SourceID)
	}

	if got := len(c.Passages(0)); got != 5 {
		t.Errorf("Expected all 5 passages, got %d", got)
	}

	// Callers get a copy
	two[0].Text = "changed"
	if c.Passages(1)[0].Text == "changed" {
		t.Error("Passages must return a copy")
	}
}

func TestWebSourceID(t *testing.T) {
	a := WebSourceID("https://example.com/a")
	b := WebSourceID("https://example.com/a")
	c := WebSourceID("https://example.com/b")

	if a != b {
		t.Error("Expected the same URL to map to the same id")
	}
	if a == c {
		t.Error("Expected different URLs to map to different ids")
	}
	if !strings.HasPrefix(a, "web-") || len(a) != len("web-")+16 {
		t.Errorf("Unexpected id format: %s", a)
	}
}

func TestDomainOf(t *testing.T) {
	tests := map[string]string{
		"https://www.Example.com/path": "example.com",
		"http://habr.com:8080/ru/":     "habr.com",
		"not a url":                    "",
	}
	for in, want := range tests {
		if got := DomainOf(in); got != want {
			t.Errorf("DomainOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChain_Lookup(t *testing.T) {
	web := Discovered{"web-1": {ID: "web-1", Title: "Found", URL: "https://found.example", Domain: "found.example"}}
	chain := Chain{web, nil, Default()}

	if s, ok := chain.Lookup("web-1"); !ok || s.Title != "Found" {
		t.Errorf("Expected discovered source, got %+v, %v", s, ok)
	}
	if s, ok := chain.Lookup(SourceMediumDL); !ok || s.Domain != "medium.com" {
		t.Errorf("Expected known source, got %+v, %v", s, ok)
	}
	if _, ok := chain.Lookup("missing"); ok {
		t.Error("Expected missing id to be unresolvable")
	}
}
