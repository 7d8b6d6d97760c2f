// Package places normalizes noisy location strings from receipt text to
// canonical Iraqi province names.
package places

import (
	"sort"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
)

// SimilarityThreshold is the minimum normalized similarity (0..1) for the
// fuzzy fallback to accept a canonical candidate. A score exactly at the
// threshold is accepted.
const SimilarityThreshold = 0.6

var arabicNormalizer = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ى", "ي",
	"ة", "ه",
	"ـ", "",
)

var noisePrefixes = []string{"محافظة", "محافظه", "مدينة", "مدينه"}

// normalize prepares a string for comparison: trims, lowercases Latin,
// strips administrative noise words, unifies Arabic letter variants and
// removes diacritics.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range noisePrefixes {
		s = strings.TrimSpace(strings.TrimPrefix(s, p))
	}
	s = arabicNormalizer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		// Arabic diacritics carry no identity.
		if r >= 0x064B && r <= 0x0652 {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

type tables struct {
	canonical   map[string]string   // normalized canonical -> canonical
	corrections map[string]string   // normalized misspelling -> canonical
	aliases     map[string][]string // canonical -> normalized alias substrings
	prefixes    []prefixEntry
	// ordered holds the correction entries sorted by misspelling, so
	// substring scans resolve the same way every run.
	ordered []correctionEntry
}

type prefixEntry struct {
	prefix    string
	canonical string
}

type correctionEntry struct {
	bad  string
	good string
}

var loadTables = sync.OnceValue(func() *tables {
	t := &tables{
		canonical:   make(map[string]string, len(Provinces)),
		corrections: make(map[string]string, len(corrections)),
		aliases:     make(map[string][]string, len(cityAliases)),
	}
	for _, p := range Provinces {
		n := normalize(p)
		t.canonical[n] = p
		if r := []rune(n); len(r) >= 2 {
			t.prefixes = append(t.prefixes, prefixEntry{prefix: string(r[:2]), canonical: p})
		}
	}
	for bad, good := range corrections {
		t.corrections[normalize(bad)] = good
	}
	for bad, good := range t.corrections {
		t.ordered = append(t.ordered, correctionEntry{bad: bad, good: good})
	}
	sort.Slice(t.ordered, func(i, j int) bool { return t.ordered[i].bad < t.ordered[j].bad })
	for p, list := range cityAliases {
		norm := make([]string, 0, len(list))
		for _, a := range list {
			norm = append(norm, normalize(a))
		}
		t.aliases[p] = norm
	}
	return t
})

// Correct maps a noisy location string to a canonical province name.
// Resolution order, first hit wins:
//
//  1. exact match in the correction dictionary
//  2. exact match against the canonical list
//  3. contains heuristics per province (city aliases, partial names)
//  4. substring match against the correction dictionary, either direction
//  5. two-character prefix match against the canonical list
//  6. similarity scoring against every canonical name, best match wins
//     if its score reaches SimilarityThreshold
//
// If nothing matches, the input is returned unchanged: the value is never
// silently dropped, but correctness is not guaranteed either.
func Correct(raw string) string {
	in := normalize(raw)
	if in == "" {
		return raw
	}
	t := loadTables()

	if good, ok := t.corrections[in]; ok {
		return good
	}
	if canon, ok := t.canonical[in]; ok {
		return canon
	}

	for _, p := range Provinces {
		for _, alias := range t.aliases[p] {
			if alias != "" && strings.Contains(in, alias) {
				return p
			}
		}
	}

	for _, e := range t.ordered {
		if strings.Contains(in, e.bad) || strings.Contains(e.bad, in) {
			return e.good
		}
	}

	if r := []rune(in); len(r) >= 2 {
		head := string(r[:2])
		for _, pe := range t.prefixes {
			if pe.prefix == head {
				return pe.canonical
			}
		}
	}

	// Iterates the canonical list in declared order; earlier provinces
	// win ties.
	best := ""
	bestScore := 0.0
	for _, canon := range Provinces {
		score := levenshtein.Similarity(in, normalize(canon), nil)
		if score > bestScore {
			best, bestScore = canon, score
		}
	}
	if bestScore >= SimilarityThreshold {
		return best
	}

	return raw
}

// IsCanonical reports whether s already is a canonical province name.
func IsCanonical(s string) bool {
	t := loadTables()
	_, ok := t.canonical[normalize(s)]
	return ok
}
