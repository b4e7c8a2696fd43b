package textdetect

import (
	"unicode/utf8"

	"genscan/internal/core/normalize"
)

// Features are the writing statistics several analyzers share
type Features struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	UniqueWords         int     `json:"unique_words"`
	VocabularyDiversity float64 `json:"vocabulary_diversity"`
	AvgWordLength       float64 `json:"avg_word_length"`
}

// document is the tokenized input, built once per Detect call
type document struct {
	words     []string
	sentences []string
	unique    int
}

func parse(text string) document {
	words := normalize.Words(text)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return document{
		words:     words,
		sentences: normalize.Sentences(text),
		unique:    len(seen),
	}
}

// Extract computes Features for text
func Extract(text string) Features { return parse(text).features() }

func (d document) features() Features {
	n := len(d.words)
	sc := len(d.sentences)

	chars := 0
	for _, w := range d.words {
		chars += utf8.RuneCountInString(w)
	}

	return Features{
		WordCount:           n,
		SentenceCount:       sc,
		AvgSentenceLength:   float64(n) / float64(max(sc, 1)),
		UniqueWords:         d.unique,
		VocabularyDiversity: float64(d.unique) / float64(max(n, 1)),
		AvgWordLength:       float64(chars) / float64(max(n, 1)),
	}
}
