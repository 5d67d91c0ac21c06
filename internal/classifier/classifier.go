// Package classifier maps a user query to a coarse intent class used to
// pick the retrieval strictness. Classification is pattern-based, stateless
// and never fails: queries matching nothing fall back to a low-confidence
// factual default.
package classifier

import (
	"regexp"
	"strings"
)

// QueryType is the mutually exclusive classification of a query's
// information need.
type QueryType int

const (
	Factual QueryType = iota // when/who/where questions seeking specific facts
	Definition               // "what is", define, explain questions
	Context                  // why/how questions seeking broader context
)

func (t QueryType) String() string {
	switch t {
	case Factual:
		return "factual"
	case Definition:
		return "definition"
	case Context:
		return "context"
	default:
		return "unknown"
	}
}

// Classification is a query type with its confidence in [0, 1].
type Classification struct {
	Type       QueryType
	Confidence float64
}

// Cue word patterns per query type. The corpus is German, so the cues are
// German question markers.
var (
	factualPatterns = compileAll(
		// Time
		`^wann\s`,
		`seit\swann`,
		`ab\swann`,
		`\d{4}`,
		// Entities
		`^wo\s`,
		`^wer\s`,
		`^welche[rs]?\s`,
		`^von\swem`,
		// Actions
		`wurde`,
		`hat.*verwendet`,
		`nutzte`,
		`veröffentlichte`,
		`erschien`,
		// Events
		`erstmals`,
		`zuerst`,
		`zum\sersten\smal`,
	)

	definitionPatterns = compileAll(
		`^was (ist|sind|bedeutet)`,
		`^definiere`,
		`^erkläre`,
		`^beschreibe`,
		`bedeutung`,
		`definition`,
	)

	contextPatterns = compileAll(
		`^warum`,
		`^wie\s`,
		`^inwiefern`,
		`unterschied`,
		`zusammenhang`,
		`kontext`,
		`hintergrund`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Classifier scores a query against the per-type cue patterns. It is a
// cheap, stateless value; construct one per use or share freely.
type Classifier struct{}

// NewClassifier returns a ready Classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the dominant query type with a confidence score. A
// pattern matching at the start of the query counts double. Queries that
// match nothing default to (Factual, 0.3).
func (c *Classifier) Classify(query string) Classification {
	query = strings.ToLower(strings.TrimSpace(query))

	scores := [3]int{
		score(query, factualPatterns),
		score(query, definitionPatterns),
		score(query, contextPatterns),
	}

	total := scores[0] + scores[1] + scores[2]
	if total == 0 {
		return Classification{Type: Factual, Confidence: 0.3}
	}

	// Ties resolve in enumeration order: factual, definition, context.
	best := Factual
	for t := Definition; t <= Context; t++ {
		if scores[t] > scores[best] {
			best = t
		}
	}

	confidence := float64(scores[best]) / (float64(total) * 1.5)
	if confidence > 1.0 {
		confidence = 1.0
	}
	return Classification{Type: best, Confidence: confidence}
}

func score(query string, patterns []*regexp.Regexp) int {
	total := 0
	for _, p := range patterns {
		loc := p.FindStringIndex(query)
		if loc == nil {
			continue
		}
		if loc[0] == 0 {
			total += 2
		} else {
			total++
		}
	}
	return total
}

// RecommendedThreshold maps a query type to its similarity cutoff. Context
// queries tolerate lower similarity because they need broader supporting
// evidence.
func (c *Classifier) RecommendedThreshold(t QueryType) float64 {
	switch t {
	case Factual:
		return 0.45
	case Definition:
		return 0.40
	case Context:
		return 0.30
	default:
		return 0.5
	}
}
