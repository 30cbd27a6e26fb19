package scope

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		scope    string
		selector string
		match    bool
	}{
		{"source.css", "source.css", true},
		{"source.css", "source", true},
		{"source.css", "source.css.embedded", false},
		{"source.css", "source.cs", false},
		{"source.css", "text", false},
		{"text.html.basic", "text.html", true},
		{"text.html.basic", "source.css, text.html", true},
		{"text.html.basic", "source.css | text.html", true},
		{"text.html.basic source.css.embedded", "text.html source.css", true},
		{"source.css", "text.html source.css", false},
		{"text.plain", "text - text.plain", false},
		{"text.html.basic", "text - text.plain", true},
		{"source.css", "", false},
		{"source.css", " , ", false},
		{"", "source", false},
		{"source.css", "source.*", true},
	}

	for _, tt := range tests {
		got := Score(tt.scope, tt.selector)
		if (got > 0) != tt.match {
			t.Errorf("Score(%q, %q) = %d, want match=%v", tt.scope, tt.selector, got, tt.match)
		}
	}
}

func TestScore_SpecificityOrdering(t *testing.T) {
	general := Score("source.css", "source")
	specific := Score("source.css", "source.css")
	if specific <= general {
		t.Errorf("specific score %d should exceed general score %d", specific, general)
	}

	shallow := Score("text.html source.css", "text")
	deep := Score("text.html source.css", "source")
	if deep <= shallow {
		t.Errorf("deeper match %d should exceed shallower match %d", deep, shallow)
	}
}

func TestParseSelector(t *testing.T) {
	sel := ParseSelector("source.css, text.html - text.html.markdown")
	if sel.IsEmpty() {
		t.Fatal("selector should not be empty")
	}
	if sel.String() != "source.css, text.html - text.html.markdown" {
		t.Errorf("String = %q", sel.String())
	}
	if !sel.Matches("text.html.basic") {
		t.Error("should match text.html.basic")
	}
	if sel.Matches("text.html.markdown") {
		t.Error("should not match excluded text.html.markdown")
	}
	if !ParseSelector("").IsEmpty() {
		t.Error("empty selector should be empty")
	}
}
