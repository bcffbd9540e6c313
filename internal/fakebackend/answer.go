package fakebackend

import (
	"strings"
	"unicode"
)

const noAnswer = "I could not find an answer in this document."

// answerFrom quotes the sentence of text that shares the most words with
// question. Words shorter than three letters are ignored.
func answerFrom(text, question string) string {
	want := wordSet(question)
	if len(want) == 0 {
		return noAnswer
	}

	best, bestScore := "", 0
	for _, sentence := range splitSentences(text) {
		score := 0
		for w := range wordSet(sentence) {
			if want[w] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = sentence, score
		}
	}
	if bestScore == 0 {
		return noAnswer
	}
	return "According to the document: " + best
}

func wordSet(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if len([]rune(w)) >= 3 {
			set[w] = true
		}
	}
	return set
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(b.String()), " "); s != "" {
			out = append(out, s)
		}
		b.Reset()
	}
	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n':
			flush()
		}
	}
	flush()
	return out
}
