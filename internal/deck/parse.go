package deck

import "strings"

// Separator splits a line into question and answer. Only the first
// occurrence counts; later dashes belong to the answer.
const Separator = "-"

// Parse turns free text into cards, one per line. Lines without a separator
// and lines whose question is blank are dropped. A repeated question keeps
// the position of its first occurrence and the answer of its last.
func Parse(raw string) []Card {
	lines := strings.Split(raw, "\n")
	pairs := make([]Card, 0, len(lines))
	for _, line := range lines {
		q, a, ok := strings.Cut(line, Separator)
		if !ok {
			continue
		}
		pairs = append(pairs, Card{Question: q, Answer: a})
	}
	return normalize(pairs)
}

func normalize(pairs []Card) []Card {
	out := make([]Card, 0, len(pairs))
	seen := make(map[string]int, len(pairs))
	for _, p := range pairs {
		q := strings.TrimSpace(p.Question)
		if q == "" {
			continue
		}
		a := strings.TrimSpace(p.Answer)
		if i, ok := seen[q]; ok {
			out[i].Answer = a
			continue
		}
		seen[q] = len(out)
		out = append(out, Card{Question: q, Answer: a})
	}
	return out
}
