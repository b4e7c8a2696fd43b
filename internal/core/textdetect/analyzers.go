package textdetect

import (
	"math"
	"strings"

	"genscan/internal/core/signal"
	perr "genscan/internal/platform/errors"

	"gonum.org/v1/gonum/stat"
)

type bigram [2]string

type trigram [3]string

// repetition counts repeated bigrams and trigrams per word
func (c Config) repetition(d document) signal.Outcome {
	n := len(d.words)
	if n < c.MinWordsRepetition {
		return signal.Ok(ScoreRepetition, signal.Neutral)
	}

	bi := make(map[bigram]struct{}, n)
	tri := make(map[trigram]struct{}, n)
	for i := 0; i+1 < n; i++ {
		bi[bigram{d.words[i], d.words[i+1]}] = struct{}{}
		if i+2 < n {
			tri[trigram{d.words[i], d.words[i+1], d.words[i+2]}] = struct{}{}
		}
	}
	repeats := (n - 1 - len(bi)) + (n - 2 - len(tri))

	return signal.Ok(ScoreRepetition, float64(repeats)/float64(n)*c.RepetitionScale)
}

// vocab is one minus the unique word ratio
func (c Config) vocab(d document) signal.Outcome {
	n := len(d.words)
	if n < c.MinWordsVocab {
		return signal.Ok(ScoreVocab, signal.Neutral)
	}
	return signal.Ok(ScoreVocab, 1-float64(d.unique)/float64(n))
}

// structure scores how uniform sentence lengths are: max(0, 1 - std/mean)
func (c Config) structure(d document) signal.Outcome {
	if len(d.sentences) < c.MinSentences {
		return signal.Ok(ScoreStructure, signal.Neutral)
	}

	lengths := make([]float64, len(d.sentences))
	for i, s := range d.sentences {
		lengths[i] = float64(len(strings.Fields(s)))
	}
	mean, std := stat.PopMeanStdDev(lengths, nil)

	cv := 1.0
	if mean > 0 {
		cv = std / mean
	}
	return signal.Ok(ScoreStructure, math.Max(0, 1-cv))
}

// perplexity builds a bigram model over the text itself and maps its pseudo
// perplexity to [0,1], lower perplexity scoring higher
func (c Config) perplexity(d document) signal.Outcome {
	n := len(d.words)
	if n < c.MinWordsPerplexity {
		return signal.Ok(ScorePerplexity, signal.Neutral)
	}

	grams := make([]bigram, 0, n-1)
	freq := make(map[bigram]int, n)
	for i := 0; i+1 < n; i++ {
		g := bigram{d.words[i], d.words[i+1]}
		grams = append(grams, g)
		freq[g]++
	}
	if len(grams) == 0 {
		return signal.Fail(ScorePerplexity, perr.Internalf("perplexity: no bigrams"))
	}

	total := float64(len(grams))
	var sum float64
	for _, g := range grams {
		p := float64(freq[g]) / total
		if p > 0 {
			sum += math.Log(p)
		} else {
			sum += c.FloorLogProb
		}
	}
	ppl := math.Exp(-sum / total)
	if math.IsInf(ppl, 0) || math.IsNaN(ppl) {
		return signal.Fail(ScorePerplexity, perr.Internalf("perplexity: non finite value"))
	}

	return signal.Ok(ScorePerplexity, 1-ppl/c.PerplexityScale)
}
