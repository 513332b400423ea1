package summarizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// LocalModelName identifies the extractive summarizer in API responses.
const LocalModelName = "Local Rule-Based Algorithm"

// DefaultMaxSentences is the sentence budget used when none is configured.
const DefaultMaxSentences = 3

var (
	sentenceBoundaryRe = regexp.MustCompile(`[.!?]+`)

	keywords = []string{"important", "key", "main", "summary", "conclusion", "therefore", "however"}
)

type scoredSentence struct {
	index int
	text  string
	score float64
}

// Extract selects up to maxSentences sentences from text by position, length and
// keyword heuristics and joins them in document order.
//
// Text that already has no more than maxSentences sentences is returned as is.
func Extract(text string, maxSentences int) string {
	if maxSentences < 1 {
		maxSentences = 1
	}

	sentences := splitSentences(text)
	if len(sentences) <= maxSentences {
		return text
	}

	scored := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		scored[i] = scoredSentence{index: i, text: s, score: scoreSentence(s, i, len(sentences))}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	// Repeated sentences all sort at the position of their first occurrence.
	first := make(map[string]int, len(sentences))
	for i, s := range sentences {
		if _, ok := first[s]; !ok {
			first[s] = i
		}
	}
	top := scored[:maxSentences]
	sort.SliceStable(top, func(i, j int) bool {
		return first[top[i].text] < first[top[j].text]
	})

	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}
	summary := strings.Join(parts, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary
}

// splitSentences cuts text at runs of terminal punctuation and drops blank fragments.
func splitSentences(text string) []string {
	raw := sentenceBoundaryRe.Split(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scoreSentence(sentence string, index, total int) float64 {
	position := 1.0
	if index == 0 || index == total-1 {
		position = 2.0
	}

	length := 1.0
	if n := len(strings.Fields(sentence)); n >= 5 && n <= 20 {
		length = 1.5
	}

	keyword := 1.0
	lower := strings.ToLower(sentence)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			keyword += 0.5
		}
	}

	return position * length * keyword
}

// Extractive is the self-contained Summarizer backed by Extract.
type Extractive struct {
	maxSentences int
}

// NewExtractive creates an extractive summarizer with the given sentence budget.
func NewExtractive(maxSentences int) *Extractive {
	if maxSentences < 1 {
		maxSentences = DefaultMaxSentences
	}
	return &Extractive{maxSentences: maxSentences}
}

// Summarize implements Summarizer. The result has its whitespace collapsed.
func (e *Extractive) Summarize(ctx context.Context, text string) (string, error) {
	return e.SummarizeN(ctx, text, e.maxSentences)
}

// SummarizeN summarizes with an explicit sentence budget.
func (e *Extractive) SummarizeN(ctx context.Context, text string, maxSentences int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return CollapseWhitespace(Extract(text, maxSentences)), nil
}

// Name implements Summarizer.
func (e *Extractive) Name() string { return LocalModelName }

// CollapseWhitespace replaces every whitespace run with one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
