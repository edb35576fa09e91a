// Package matcher maps photo filenames to roster players by generating
// name variations and comparing them against the normalized filename stem.
// It is a pure string algorithm with no knowledge of where photos or
// rosters come from.
package matcher

import (
	"sort"
	"strings"
	"unicode"
)

// Confidence tiers and match types produced by the matcher.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"

	MatchExact   = "exact"
	MatchPartial = "partial"
)

// Player carries the roster fields the matcher draws name variations from.
// Parent names are included because team photos are frequently uploaded
// under a parent's name.
type Player struct {
	FullName  string
	FirstName string
	LastName  string
	StudentID string

	Parent1First string
	Parent1Last  string
	Parent2First string
	Parent2Last  string
}

// Match is one candidate player for a photo.
type Match struct {
	Player     Player
	Confidence string
	MatchType  string
	Variation  string
}

// Normalize lowercases a name, strips characters other than letters,
// digits, underscores, spaces and hyphens, and collapses runs of spaces
// and hyphens into a single space.
func Normalize(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteRune(r)
		}
	}
	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	return strings.Join(fields, " ")
}

// Variations returns the normalized set of name combinations a photo of
// this player might be filed under: first/last in either order joined by
// space, underscore, dot or hyphen, the bare first and last names, the
// full name with each separator, and the same treatment for parent names.
func Variations(p Player) map[string]bool {
	raw := make(map[string]bool)

	if p.FirstName != "" && p.LastName != "" {
		for _, sep := range []string{" ", "_", ".", "-"} {
			raw[p.FirstName+sep+p.LastName] = true
			raw[p.LastName+sep+p.FirstName] = true
		}
		raw[p.FirstName] = true
		raw[p.LastName] = true
	}

	if p.FullName != "" {
		raw[p.FullName] = true
		raw[strings.ReplaceAll(p.FullName, " ", "_")] = true
		raw[strings.ReplaceAll(p.FullName, " ", ".")] = true
		raw[strings.ReplaceAll(p.FullName, " ", "-")] = true
	}

	for _, parent := range [][2]string{
		{p.Parent1First, p.Parent1Last},
		{p.Parent2First, p.Parent2Last},
	} {
		first, last := parent[0], parent[1]
		if first == "" || last == "" {
			continue
		}
		raw[first+" "+last] = true
		raw[first+"_"+last] = true
		raw[last+"_"+first] = true
		raw[first] = true
		raw[last] = true
	}

	variations := make(map[string]bool, len(raw))
	for v := range raw {
		if n := Normalize(v); n != "" {
			variations[n] = true
		}
	}
	return variations
}

// MatchPhoto returns candidate players for a photo filename, best first.
// An exact variation hit is high confidence; a substring containment in
// either direction is medium. Variations of two characters or fewer are
// never used for partial matching. Ordering is stable: high before medium,
// roster order within a tier.
func MatchPhoto(photoName string, players []Player) []Match {
	stem := photoName
	if i := strings.LastIndex(photoName, "."); i >= 0 {
		stem = photoName[:i]
	}
	normalized := Normalize(stem)

	var matches []Match
	for _, player := range players {
		variations := Variations(player)

		if variations[normalized] {
			matches = append(matches, Match{
				Player:     player,
				Confidence: ConfidenceHigh,
				MatchType:  MatchExact,
				Variation:  normalized,
			})
			continue
		}

		// Deterministic partial scan; map iteration order would make the
		// reported variation flap between runs.
		sorted := make([]string, 0, len(variations))
		for v := range variations {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)

		for _, variation := range sorted {
			if len(variation) <= 2 {
				continue
			}
			if strings.Contains(normalized, variation) || strings.Contains(variation, normalized) {
				matches = append(matches, Match{
					Player:     player,
					Confidence: ConfidenceMedium,
					MatchType:  MatchPartial,
					Variation:  variation,
				})
				break
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return rank(matches[i].Confidence) > rank(matches[j].Confidence)
	})
	return matches
}

// Alternatives formats up to two runner-up matches for display, e.g.
// "Jordan Reyes (medium)".
func Alternatives(matches []Match) []string {
	if len(matches) <= 1 {
		return nil
	}
	rest := matches[1:]
	if len(rest) > 2 {
		rest = rest[:2]
	}
	out := make([]string, 0, len(rest))
	for _, m := range rest {
		out = append(out, m.Player.FullName+" ("+m.Confidence+")")
	}
	return out
}

func rank(confidence string) int {
	switch confidence {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}
