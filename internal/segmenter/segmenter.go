// Package segmenter splits documents into bounded, context-preserving chunks
// and turns them into embedded, metadata-carrying units ready for storage.
package segmenter

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"docqa/internal/structure"
)

// Default chunk sizing, in characters.
const (
	DefaultMinChunkSize = 400
	DefaultMaxChunkSize = 1200
	DefaultOverlapSize  = 200
)

// Segmenter produces ordered, overlapping chunk strings from raw text.
// It is stateless; two Segment calls on independent inputs may run in
// parallel with no coordination.
type Segmenter struct {
	minChunkSize   int
	maxChunkSize   int
	overlapSize    int
	structureAware bool
	logger         zerolog.Logger
}

// NewSegmenter creates a Segmenter with default sizing.
func NewSegmenter(logger zerolog.Logger) *Segmenter {
	return &Segmenter{
		minChunkSize: DefaultMinChunkSize,
		maxChunkSize: DefaultMaxChunkSize,
		overlapSize:  DefaultOverlapSize,
		logger:       logger,
	}
}

// WithMinChunkSize sets the minimum chunk size.
func (s *Segmenter) WithMinChunkSize(size int) *Segmenter {
	if size > 0 {
		s.minChunkSize = size
	}
	return s
}

// WithMaxChunkSize sets the maximum chunk size.
func (s *Segmenter) WithMaxChunkSize(size int) *Segmenter {
	if size > 0 {
		s.maxChunkSize = size
	}
	return s
}

// WithOverlapSize sets the number of trailing characters carried over into
// the next chunk.
func (s *Segmenter) WithOverlapSize(size int) *Segmenter {
	if size >= 0 {
		s.overlapSize = size
	}
	return s
}

// WithStructureAware toggles per-section adaptive target sizing driven by
// the structure detector. When off, documents are split on paragraph breaks
// only and chunks grow up to the maximum size.
func (s *Segmenter) WithStructureAware(aware bool) *Segmenter {
	s.structureAware = aware
	return s
}

// Segment splits text into ordered chunk strings. Consecutive chunks built
// from the same buffer share a trailing/leading overlap region.
func (s *Segmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	if s.structureAware {
		for _, sec := range s.sections(text) {
			chunks = append(chunks, s.accumulate(splitParagraphs(sec.content), sec.target)...)
		}
	} else {
		chunks = s.accumulate(splitParagraphs(text), s.maxChunkSize)
	}

	chunks = s.mergeSmall(chunks)

	s.logger.Debug().Int("chunks", len(chunks)).Msg("segmented document")
	return chunks
}

// section is a structural slice of the document with its adaptive size
// target.
type section struct {
	content string
	target  int
}

// sections orders all detected structural spans boundary-to-boundary and
// assigns each a target size: headers shrink the target, lists and code
// blocks shrink it less, plain prose grows it.
func (s *Segmenter) sections(text string) []section {
	st := structure.Detect(text)

	var spans []structure.Span
	spans = append(spans, st.Headers...)
	spans = append(spans, st.Lists...)
	spans = append(spans, st.CodeBlocks...)
	spans = append(spans, st.Paragraphs...)
	sortByStart(spans)

	mid := (s.minChunkSize + s.maxChunkSize) / 2
	var out []section
	for i, sp := range spans {
		end := len(text)
		if i+1 < len(spans) {
			end = spans[i+1].Start
		}
		content := strings.TrimSpace(text[sp.Start:end])
		if content == "" {
			continue
		}

		target := mid
		switch sp.Kind {
		case structure.KindHeader:
			target -= 200
		case structure.KindList, structure.KindCodeBlock:
			target -= 100
		default:
			target += 200
		}
		out = append(out, section{content: content, target: clamp(target, s.minChunkSize, s.maxChunkSize)})
	}
	return out
}

// accumulate greedily packs paragraph sub-units into chunks bounded by
// target size, seeding each new buffer with the trailing overlap of the
// chunk just emitted.
func (s *Segmenter) accumulate(paragraphs []string, target int) []string {
	var chunks []string
	var buffer []string
	length := 0
	seeded := false // buffer holds only the overlap seed

	flush := func() {
		chunk := strings.Join(buffer, "\n\n")
		chunks = append(chunks, chunk)
		seed := tail(chunk, s.overlapSize)
		buffer = buffer[:0]
		length = 0
		if seed != "" {
			buffer = append(buffer, seed)
			length = len(seed)
			seeded = true
		}
	}

	for _, para := range paragraphs {
		pl := len(para)

		if length+pl+separatorCost(buffer) > target && len(buffer) > 0 {
			if seeded && len(buffer) == 1 {
				// Emitting the bare overlap seed would produce a
				// junk chunk; drop the seed instead.
				buffer = buffer[:0]
				length = 0
				seeded = false
			} else {
				flush()
			}
		}

		if pl > target {
			// The paragraph alone exceeds the target: re-apply the
			// same strategy at sentence granularity.
			chunks = append(chunks, s.splitBySentence(para, target)...)
			buffer = buffer[:0]
			length = 0
			if len(chunks) > 0 {
				if seed := tail(chunks[len(chunks)-1], s.overlapSize); seed != "" {
					buffer = append(buffer, seed)
					length = len(seed)
					seeded = true
				}
			}
			continue
		}

		buffer = append(buffer, para)
		length += pl + 2
		if len(buffer) > 1 {
			seeded = false
		}
	}

	if len(buffer) > 0 && !(seeded && len(buffer) == 1) {
		chunks = append(chunks, strings.Join(buffer, "\n\n"))
	}
	return chunks
}

var sentenceBoundaryRe = regexp.MustCompile(`([.!?]+)\s+`)

// splitSentences splits text on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the sentence.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringSubmatchIndex(text, -1) {
		sentence := strings.TrimSpace(text[last:loc[3]])
		if sentence != "" {
			out = append(out, sentence)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// splitBySentence packs sentences of an oversized paragraph into chunks
// bounded by target, carrying the last sentence over as overlap. A single
// sentence longer than the maximum chunk size is emitted whole rather than
// truncated.
func (s *Segmenter) splitBySentence(para string, target int) []string {
	sentences := splitSentences(para)
	if len(sentences) <= 1 {
		return []string{para}
	}

	var chunks []string
	var buffer []string
	length := 0

	for _, sentence := range sentences {
		sl := len(sentence)
		if length+sl+len(buffer) > target && len(buffer) > 0 {
			chunks = append(chunks, strings.Join(buffer, " "))
			// Sentence-level overlap: carry the previous sentence.
			prev := buffer[len(buffer)-1]
			buffer = buffer[:0]
			buffer = append(buffer, prev)
			length = len(prev)
		}
		buffer = append(buffer, sentence)
		length += sl + 1
	}
	if len(buffer) > 0 {
		chunks = append(chunks, strings.Join(buffer, " "))
	}
	return chunks
}

// mergeSmall folds chunks below the minimum size into their predecessor
// when the result still fits under the maximum size. The final chunk of a
// document is allowed to stay short.
func (s *Segmenter) mergeSmall(chunks []string) []string {
	if len(chunks) < 2 {
		return chunks
	}
	out := chunks[:1]
	for _, c := range chunks[1:] {
		prev := out[len(out)-1]
		if len(c) < s.minChunkSize && len(prev)+2+len(c) <= s.maxChunkSize {
			out[len(out)-1] = prev + "\n\n" + c
			continue
		}
		out = append(out, c)
	}
	return out
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// separatorCost accounts for the "\n\n" join separator added per buffered
// sub-unit.
func separatorCost(buffer []string) int {
	if len(buffer) == 0 {
		return 0
	}
	return 2
}

func tail(text string, n int) string {
	if n <= 0 || len(text) == 0 {
		return ""
	}
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortByStart(spans []structure.Span) {
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].Start < spans[j-1].Start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
}
