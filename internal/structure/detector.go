// Package structure locates structural regions (headers, lists, code blocks,
// paragraphs) inside raw document text. Spans are half-open [start, end)
// character offsets into the source string and are recomputed per document.
package structure

import (
	"regexp"
	"strings"
)

// SpanKind identifies the structural role of a span.
type SpanKind int

const (
	KindHeader SpanKind = iota
	KindList
	KindCodeBlock
	KindParagraph
)

func (k SpanKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindList:
		return "list"
	case KindCodeBlock:
		return "code_block"
	case KindParagraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Span is a half-open [Start, End) character range in the source text.
type Span struct {
	Kind  SpanKind
	Start int
	End   int
}

// Overlaps reports whether two half-open ranges intersect.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Structure holds all detected spans of a document, grouped by kind.
// Spans within a group are ordered and non-overlapping.
type Structure struct {
	Headers    []Span
	Lists      []Span
	CodeBlocks []Span
	Paragraphs []Span
}

var (
	atxHeaderRe   = regexp.MustCompile(`^#{1,6}\s+\S`)
	underlineRe   = regexp.MustCompile(`^[=-]{2,}\s*$`)
	listItemRe    = regexp.MustCompile(`^\s{0,3}(?:[-*+]|\d+[.)])\s+\S`)
	fenceRe       = regexp.MustCompile("^```")
	indentedRe    = regexp.MustCompile(`^(?:    |\t)\s*\S`)
	blankLineRe   = regexp.MustCompile(`^\s*$`)
)

// line is an internal view of a single source line with its offsets.
// end excludes the trailing newline.
type line struct {
	start, end int
	text       string
}

// Detect scans text and returns all structural spans. It never fails: text
// without any markup yields zero headers, lists and code blocks and the
// whole text as paragraph spans.
func Detect(text string) Structure {
	lines := splitLines(text)
	var st Structure

	codeLines := make([]bool, len(lines))
	st.CodeBlocks = detectCodeBlocks(lines, codeLines)
	st.Headers = detectHeaders(lines, codeLines)
	st.Lists = detectLists(lines, codeLines)

	claimed := make([]Span, 0, len(st.Headers)+len(st.Lists)+len(st.CodeBlocks))
	claimed = append(claimed, st.Headers...)
	claimed = append(claimed, st.Lists...)
	claimed = append(claimed, st.CodeBlocks...)
	st.Paragraphs = detectParagraphs(lines, claimed)

	return st
}

func splitLines(text string) []line {
	var lines []line
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, line{start: start, end: i, text: text[start:i]})
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, line{start: start, end: len(text), text: text[start:]})
	}
	return lines
}

func detectCodeBlocks(lines []line, codeLines []bool) []Span {
	var spans []Span

	// Fenced blocks: paired ``` delimiters, fences included in the span.
	for i := 0; i < len(lines); i++ {
		if codeLines[i] || !fenceRe.MatchString(lines[i].text) {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if fenceRe.MatchString(lines[j].text) {
				spans = append(spans, Span{Kind: KindCodeBlock, Start: lines[i].start, End: lines[j].end})
				for k := i; k <= j; k++ {
					codeLines[k] = true
				}
				i = j
				break
			}
		}
	}

	// Runs of 4-space (or tab) indented lines.
	for i := 0; i < len(lines); i++ {
		if codeLines[i] || !indentedRe.MatchString(lines[i].text) {
			continue
		}
		j := i
		for j+1 < len(lines) && !codeLines[j+1] && indentedRe.MatchString(lines[j+1].text) {
			j++
		}
		spans = append(spans, Span{Kind: KindCodeBlock, Start: lines[i].start, End: lines[j].end})
		for k := i; k <= j; k++ {
			codeLines[k] = true
		}
		i = j
	}

	sortSpans(spans)
	return spans
}

func detectHeaders(lines []line, codeLines []bool) []Span {
	var spans []Span
	for i := 0; i < len(lines); i++ {
		if codeLines[i] {
			continue
		}
		if atxHeaderRe.MatchString(lines[i].text) {
			spans = append(spans, Span{Kind: KindHeader, Start: lines[i].start, End: lines[i].end})
			continue
		}
		// Setext style: a non-blank line underlined with = or -.
		if i+1 < len(lines) && !codeLines[i+1] &&
			!blankLineRe.MatchString(lines[i].text) &&
			!listItemRe.MatchString(lines[i].text) &&
			underlineRe.MatchString(lines[i+1].text) {
			spans = append(spans, Span{Kind: KindHeader, Start: lines[i].start, End: lines[i+1].end})
			i++
		}
	}
	return spans
}

func detectLists(lines []line, codeLines []bool) []Span {
	var spans []Span
	for i := 0; i < len(lines); i++ {
		if codeLines[i] || !listItemRe.MatchString(lines[i].text) {
			continue
		}
		// Extend the span over following list items, tolerating a gap of
		// at most 2 blank lines between items.
		last := i
		j := i + 1
		blanks := 0
		for j < len(lines) {
			switch {
			case !codeLines[j] && listItemRe.MatchString(lines[j].text):
				last = j
				blanks = 0
			case blankLineRe.MatchString(lines[j].text) && blanks < 2:
				blanks++
			default:
				j = len(lines)
				continue
			}
			j++
		}
		spans = append(spans, Span{Kind: KindList, Start: lines[i].start, End: lines[last].end})
		i = last
	}
	return spans
}

func detectParagraphs(lines []line, claimed []Span) []Span {
	var spans []Span
	for i := 0; i < len(lines); i++ {
		if blankLineRe.MatchString(lines[i].text) {
			continue
		}
		j := i
		for j+1 < len(lines) && !blankLineRe.MatchString(lines[j+1].text) {
			j++
		}
		span := Span{Kind: KindParagraph, Start: lines[i].start, End: lines[j].end}
		if !overlapsAny(span, claimed) {
			spans = append(spans, span)
		}
		i = j
	}
	return spans
}

func overlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}

func sortSpans(spans []Span) {
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].Start < spans[j-1].Start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
}

// Slice returns the trimmed text covered by a span.
func Slice(text string, s Span) string {
	return strings.TrimSpace(text[s.Start:s.End])
}
