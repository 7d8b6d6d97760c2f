package places

import "testing"

func TestCorrectExactDictionary(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"بقداد", "بغداد"},
		{"بغدات", "بغداد"},
		{"بصره", "البصرة"},
		{"الموصل", "نينوى"},
		{"الناصرية", "ذي قار"},
		{"تكريت", "صلاح الدين"},
		{"baghdad", "بغداد"},
		{"erbil", "أربيل"},
	}
	for _, tc := range cases {
		if got := Correct(tc.in); got != tc.want {
			t.Errorf("Correct(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCorrectCanonicalPassThrough(t *testing.T) {
	for _, p := range Provinces {
		if got := Correct(p); got != p {
			t.Errorf("Correct(%q) = %q, want unchanged", p, got)
		}
	}
}

func TestCorrectCanonicalWithNoiseWords(t *testing.T) {
	if got := Correct("محافظة بغداد"); got != "بغداد" {
		t.Errorf("Correct(محافظة بغداد) = %q", got)
	}
	if got := Correct("  النجف  "); got != "النجف" {
		t.Errorf("whitespace should not matter, got %q", got)
	}
}

func TestCorrectContainsHeuristics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"حي الصدر بغداد الجديدة", "بغداد"},
		{"البصرة شط العرب", "البصرة"},
		{"الفلوجة", "الأنبار"},
		{"الكوفة شارع السكة", "النجف"},
		{"زاخو", "دهوك"},
	}
	for _, tc := range cases {
		if got := Correct(tc.in); got != tc.want {
			t.Errorf("Correct(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCorrectPrefixFallback(t *testing.T) {
	// Shares only the first two characters with the canonical name and
	// matches nothing earlier in the chain.
	if got := Correct("ذي الحجة"); got != "ذي قار" {
		t.Errorf("Correct(ذي الحجة) = %q, want ذي قار", got)
	}
}

func TestCorrectSimilarityBoundary(t *testing.T) {
	// Five runes, edit distance 2 to بغداد: similarity exactly 0.6, which
	// is accepted (threshold is inclusive).
	if got := Correct("زغدلد"); got != "بغداد" {
		t.Errorf("score 0.6 should be accepted, got %q", got)
	}
	// Edit distance 3: similarity 0.4, rejected, input echoed unchanged.
	if got := Correct("زغضلق"); got != "زغضلق" {
		t.Errorf("score below threshold should echo input, got %q", got)
	}
}

func TestCorrectSubstringResolutionStable(t *testing.T) {
	// Both words are known misspellings and neither is an alias hint;
	// the substring scan runs sorted, so the first key wins every time.
	for i := 0; i < 25; i++ {
		if got := Correct("Babel Nineveh"); got != "بابل" {
			t.Fatalf("run %d: Correct(Babel Nineveh) = %q, want بابل", i, got)
		}
	}
}

func TestCorrectUnknownEchoed(t *testing.T) {
	in := "مدينة غير موجودة اطلاقا"
	if got := Correct(in); got != in {
		t.Errorf("unmatchable input should be echoed, got %q", got)
	}
}

func TestCorrectEmpty(t *testing.T) {
	if got := Correct(""); got != "" {
		t.Errorf("empty input should stay empty, got %q", got)
	}
}
