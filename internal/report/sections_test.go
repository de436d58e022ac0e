package report

import (
	"reflect"
	"testing"
)

func TestParseFullAnswer(t *testing.T) {
	text := "Overview text\n\nGaps:\n- Missing auth\n- No logging\nRecommendations:\n- Add JWT\n- Add audit log"
	got := Parse(text)
	if got.Summary != "Overview text" {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
	wantGaps := []string{"Missing auth", "No logging"}
	if !reflect.DeepEqual(got.Gaps, wantGaps) {
		t.Fatalf("unexpected gaps %#v, want %#v", got.Gaps, wantGaps)
	}
	wantRecs := []string{"Add JWT", "Add audit log"}
	if !reflect.DeepEqual(got.Recommendations, wantRecs) {
		t.Fatalf("unexpected recommendations %#v, want %#v", got.Recommendations, wantRecs)
	}
}

func TestParseNoMarkers(t *testing.T) {
	text := "The requirements look complete and well structured."
	got := Parse(text)
	if got.Summary != text {
		t.Fatalf("expected whole text as summary, got %q", got.Summary)
	}
	if len(got.Gaps) != 0 || len(got.Recommendations) != 0 {
		t.Fatalf("expected empty lists, got %#v / %#v", got.Gaps, got.Recommendations)
	}
}

func TestParseStableAcrossCalls(t *testing.T) {
	text := "Intro\n\nGaps:\n- one\n- two\nRecommendations:\n- three"
	first := Parse(text)
	second := Parse(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parse not deterministic: %#v vs %#v", first, second)
	}
}

func TestParseBulletGlyphs(t *testing.T) {
	text := "Done\n\nGaps:\n• Spaced bullet\n* Star bullet\n- - Nested dash\nRecommendations:\n-Tight bullet"
	got := Parse(text)
	wantGaps := []string{"Spaced bullet", "Star bullet", "- Nested dash"}
	if !reflect.DeepEqual(got.Gaps, wantGaps) {
		t.Fatalf("unexpected gaps %#v, want %#v", got.Gaps, wantGaps)
	}
	wantRecs := []string{"Tight bullet"}
	if !reflect.DeepEqual(got.Recommendations, wantRecs) {
		t.Fatalf("unexpected recommendations %#v, want %#v", got.Recommendations, wantRecs)
	}
}

func TestParseMarkerCase(t *testing.T) {
	text := "Intro\n\nGAPS:\n- upper\nrecommendations:\n- lower"
	got := Parse(text)
	if !reflect.DeepEqual(got.Gaps, []string{"upper"}) {
		t.Fatalf("case-insensitive gaps marker not honored: %#v", got.Gaps)
	}
	if !reflect.DeepEqual(got.Recommendations, []string{"lower"}) {
		t.Fatalf("case-insensitive recommendations marker not honored: %#v", got.Recommendations)
	}
}

func TestParseEmptyMarkerSections(t *testing.T) {
	text := "Summary only\n\nGaps:\nRecommendations:"
	got := Parse(text)
	if got.Summary != "Summary only" {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
	if len(got.Gaps) != 0 || len(got.Recommendations) != 0 {
		t.Fatalf("expected empty sections, got %#v / %#v", got.Gaps, got.Recommendations)
	}
}

func TestParseSummaryStopsAtMarkerWithoutBlankLine(t *testing.T) {
	text := "Tight intro Gaps:\n- only item"
	got := Parse(text)
	if got.Summary != "Tight intro" {
		t.Fatalf("summary should stop at marker, got %q", got.Summary)
	}
	if !reflect.DeepEqual(got.Gaps, []string{"only item"}) {
		t.Fatalf("unexpected gaps %#v", got.Gaps)
	}
}

func TestParseGapsRunToEndWithoutRecommendations(t *testing.T) {
	text := "Intro\n\nGaps:\n- a\n- b"
	got := Parse(text)
	if !reflect.DeepEqual(got.Gaps, []string{"a", "b"}) {
		t.Fatalf("unexpected gaps %#v", got.Gaps)
	}
	if len(got.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %#v", got.Recommendations)
	}
}
