package matcher

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Alex Lee", "alex lee"},
		{"alex_lee", "alex_lee"},
		{"O'Brien, Sam!", "obrien sam"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"Jean-Luc  Picard", "jean luc picard"},
		{"Smith--Jones", "smith jones"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestVariationsCoverSeparators(t *testing.T) {
	p := Player{FirstName: "Alex", LastName: "Lee", FullName: "Alex Lee"}
	v := Variations(p)

	for _, want := range []string{"alex lee", "lee alex", "alex_lee", "lee_alex", "alex", "lee"} {
		if !v[want] {
			t.Errorf("missing variation %q", want)
		}
	}
	// Dots are stripped by normalization, so first.last collapses to firstlast.
	if !v["alexlee"] {
		t.Error("dot-joined variation should normalize to alexlee")
	}
}

func TestVariationsIncludeParents(t *testing.T) {
	p := Player{
		FirstName: "Sam", LastName: "Cole", FullName: "Sam Cole",
		Parent1First: "Dana", Parent1Last: "Cole",
	}
	v := Variations(p)
	if !v["dana cole"] || !v["dana_cole"] || !v["dana"] {
		t.Fatalf("parent variations missing: %v", v)
	}
}

func TestMatchPhotoExactIsHighConfidence(t *testing.T) {
	players := []Player{{FirstName: "Alex", LastName: "Lee", FullName: "Alex Lee"}}
	matches := MatchPhoto("alex_lee.jpg", players)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Confidence != ConfidenceHigh || m.MatchType != MatchExact {
		t.Fatalf("expected high/exact, got %s/%s", m.Confidence, m.MatchType)
	}
}

func TestMatchPhotoPartialIsMediumConfidence(t *testing.T) {
	players := []Player{{FirstName: "Alexander", LastName: "Leesburg", FullName: "Alexander Leesburg"}}
	matches := MatchPhoto("team_picnic_leesburg_close.jpg", players)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Confidence != ConfidenceMedium || matches[0].MatchType != MatchPartial {
		t.Fatalf("expected medium/partial, got %+v", matches[0])
	}
}

func TestMatchPhotoShortVariationsNeverPartialMatch(t *testing.T) {
	players := []Player{{FirstName: "Al", LastName: "Bo", FullName: "Al Bo"}}
	if matches := MatchPhoto("gallery.jpg", players); len(matches) != 0 {
		t.Fatalf("two-character variations must not partial-match, got %+v", matches)
	}
}

func TestMatchPhotoNoMatch(t *testing.T) {
	players := []Player{{FirstName: "Alex", LastName: "Lee", FullName: "Alex Lee"}}
	if matches := MatchPhoto("img_20250901_0042.jpg", players); len(matches) != 0 {
		t.Fatalf("expected no matches, got %+v", matches)
	}
}

func TestMatchPhotoOrdersHighBeforeMedium(t *testing.T) {
	players := []Player{
		{FirstName: "Jordan", LastName: "Reyes-Smith", FullName: "Jordan Reyes-Smith"},
		{FirstName: "Jordan", LastName: "Reyes", FullName: "Jordan Reyes"},
	}
	matches := MatchPhoto("jordan_reyes.jpg", players)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Player.FullName != "Jordan Reyes" || matches[0].Confidence != ConfidenceHigh {
		t.Fatalf("exact match should sort first, got %+v", matches[0])
	}
	if matches[1].Confidence != ConfidenceMedium {
		t.Fatalf("partial match should sort second, got %+v", matches[1])
	}
}

func TestAlternativesFormatsRunnersUp(t *testing.T) {
	matches := []Match{
		{Player: Player{FullName: "Best Match"}, Confidence: ConfidenceHigh},
		{Player: Player{FullName: "Second"}, Confidence: ConfidenceMedium},
		{Player: Player{FullName: "Third"}, Confidence: ConfidenceMedium},
		{Player: Player{FullName: "Fourth"}, Confidence: ConfidenceMedium},
	}
	got := Alternatives(matches)
	want := []string{"Second (medium)", "Third (medium)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Alternatives = %v, want %v", got, want)
	}

	if Alternatives(matches[:1]) != nil {
		t.Fatal("single match has no alternatives")
	}
}
