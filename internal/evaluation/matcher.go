package evaluation

import (
	"regexp"
	"strings"
)

// Matching constants, tuned against the German evaluation corpus. The
// key-term gate rejects pairs sharing too few anchor terms before the more
// permissive window comparison runs.
const (
	keyTermGate      = 0.2
	windowThreshold  = 0.3
	matchWindowWords = 10
)

var (
	yearTokenRe    = regexp.MustCompile(`^\d{4}(?:er)?$`)
	capitalTokenRe = regexp.MustCompile(`^[A-ZÄÖÜ]`)
	punctTrimRe    = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)
)

// curatedVocabulary anchors domain terms that neither capitalization nor
// year extraction would catch once text is normalized.
var curatedVocabulary = map[string]bool{
	"biodeutsch":  true,
	"bio-deutsch": true,
	"duden":       true,
	"unwort":      true,
	"begriff":     true,
	"bezeichnung": true,
	"cartoon":     true,
	"taz":         true,
}

// TextsMatch reports whether two texts refer to the same content:
// normalize both, gate on shared key terms, then look for a sufficiently
// overlapping word window. The predicate is symmetric.
func TextsMatch(a, b string) bool {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	keyA := keyTerms(a)
	keyB := keyTerms(b)
	if len(keyA) > 0 && len(keyB) > 0 {
		if jaccard(keyA, keyB) < keyTermGate {
			return false
		}
	}

	return maxWindowOverlap(tokensA, tokensB) >= windowThreshold
}

// tokenize lower-cases, collapses whitespace and strips surrounding
// punctuation from each word.
func tokenize(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = punctTrimRe.ReplaceAllString(w, "")
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// keyTerms extracts anchor terms from the original (non-normalized) text:
// 4-digit years and decade tokens like "1990er", tokens capitalized in the
// source, and curated vocabulary words. Terms are returned normalized.
func keyTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, raw := range strings.Fields(text) {
		trimmed := punctTrimRe.ReplaceAllString(raw, "")
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		switch {
		case yearTokenRe.MatchString(lower):
			terms[lower] = true
		case capitalTokenRe.MatchString(trimmed):
			terms[lower] = true
		case curatedVocabulary[lower]:
			terms[lower] = true
		}
	}
	return terms
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// maxWindowOverlap slides a window of min(len(a), len(b), 10) words over
// both token sequences and returns the best overlap score between any pair
// of windows: shared words divided by the smaller window's distinct word
// count.
func maxWindowOverlap(a, b []string) float64 {
	w := len(a)
	if len(b) < w {
		w = len(b)
	}
	if w > matchWindowWords {
		w = matchWindowWords
	}
	if w == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+w <= len(a); i++ {
		setA := toSet(a[i : i+w])
		for j := 0; j+w <= len(b); j++ {
			setB := toSet(b[j : j+w])
			if score := overlapScore(setA, setB); score > best {
				best = score
			}
		}
	}
	return best
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func overlapScore(a, b map[string]bool) float64 {
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	if smaller == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	return float64(inter) / float64(smaller)
}
