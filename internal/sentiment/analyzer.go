// Package sentiment classifies free text against investment-domain keyword
// tables and aggregates tweet batches into crash-risk scores.
package sentiment

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Per-text classification labels.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Batch-level sentiment labels. These thresholds apply to the averaged
// negative score, so the sense is inverted versus the per-text scale:
// higher means worse.
const (
	BatchVeryNegative = "very_negative"
	BatchNegative     = "negative"
	BatchNeutral      = "neutral"
	BatchPositive     = "positive"
)

// Crash risk levels.
const (
	RiskCritical = "critical"
	RiskHigh     = "high"
	RiskMedium   = "medium"
	RiskLow      = "low"
)

// Result is the per-text sentiment breakdown. Score is the net sentiment in
// [-100, 100]; NegativeScore and PositiveScore are each in [0, 100].
type Result struct {
	Score         float64  `json:"score"`
	NegativeScore float64  `json:"negative_score"`
	PositiveScore float64  `json:"positive_score"`
	NegativeWords []string `json:"negative_words,omitempty"`
	PositiveWords []string `json:"positive_words,omitempty"`
	TotalWords    int      `json:"total_words"`
	Label         string   `json:"label"`
}

// WordCount pairs a word with its frequency across a batch.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Aggregation is the batch-level sentiment summary.
type Aggregation struct {
	TweetCount           int         `json:"tweet_count"`
	AverageScore         float64     `json:"average_score"`
	AverageNegativeScore float64     `json:"average_negative_score"`
	PositiveCount        int         `json:"positive_count"`
	NeutralCount         int         `json:"neutral_count"`
	NegativeCount        int         `json:"negative_count"`
	Level                string      `json:"level"`
	TopNegativeWords     []WordCount `json:"top_negative_words,omitempty"`
}

// CrashRisk blends sentiment and tweet volume into a 0-100 risk score.
type CrashRisk struct {
	RiskScore      float64 `json:"risk_score"`
	RiskLevel      string  `json:"risk_level"`
	Recommendation string  `json:"recommendation"`
}

// Analyze scores one text. The keyword scores follow
// min(100, 1000 * keywordCount / totalWords); an empty text is neutral.
func Analyze(text string) Result {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return Result{Label: LabelNeutral}
	}

	var negWords, posWords []string
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if _, ok := negativeSet[lower]; ok {
			negWords = append(negWords, lower)
			continue
		}
		if _, ok := positiveSet[lower]; ok {
			posWords = append(posWords, lower)
		}
	}

	total := len(tokens)
	neg := math.Min(100, 1000*float64(len(negWords))/float64(total))
	pos := math.Min(100, 1000*float64(len(posWords))/float64(total))
	score := pos - neg

	label := LabelNeutral
	switch {
	case score >= 10:
		label = LabelPositive
	case score <= -10:
		label = LabelNegative
	}

	return Result{
		Score:         score,
		NegativeScore: neg,
		PositiveScore: pos,
		NegativeWords: negWords,
		PositiveWords: posWords,
		TotalWords:    total,
		Label:         label,
	}
}

// Aggregate folds a tweet batch into the batch-level summary. The batch
// level applies the inverted thresholds to the averaged negative score:
// 70 very_negative, 40 negative, 20 neutral, else positive.
func Aggregate(texts []string) Aggregation {
	agg := Aggregation{TweetCount: len(texts)}
	if len(texts) == 0 {
		agg.Level = BatchNeutral
		return agg
	}

	wordCounts := make(map[string]int)
	var scoreSum, negSum float64
	for _, text := range texts {
		r := Analyze(text)
		scoreSum += r.Score
		negSum += r.NegativeScore
		switch r.Label {
		case LabelPositive:
			agg.PositiveCount++
		case LabelNegative:
			agg.NegativeCount++
		default:
			agg.NeutralCount++
		}
		for _, w := range r.NegativeWords {
			wordCounts[w]++
		}
	}

	agg.AverageScore = scoreSum / float64(len(texts))
	agg.AverageNegativeScore = negSum / float64(len(texts))

	switch {
	case agg.AverageNegativeScore >= 70:
		agg.Level = BatchVeryNegative
	case agg.AverageNegativeScore >= 40:
		agg.Level = BatchNegative
	case agg.AverageNegativeScore >= 20:
		agg.Level = BatchNeutral
	default:
		agg.Level = BatchPositive
	}

	agg.TopNegativeWords = topWords(wordCounts, 10)
	return agg
}

// EvaluateCrashRisk blends the averaged negative-sentiment score (70%) with
// a tweet-volume factor capped at 100 tweets (30%) into a 0-100 risk score.
func EvaluateCrashRisk(sentimentScore float64, tweetCount int) CrashRisk {
	volume := math.Min(float64(tweetCount), 100)
	score := 0.7*sentimentScore + 0.3*volume

	var level, msg string
	switch {
	case score >= 80:
		level = RiskCritical
		msg = "Crash chatter is extreme. Consider reducing exposure and tightening stops immediately."
	case score >= 60:
		level = RiskHigh
		msg = "Negative sentiment is elevated. Review open positions and avoid adding risk."
	case score >= 40:
		level = RiskMedium
		msg = "Some negative chatter detected. Monitor the situation before acting."
	default:
		level = RiskLow
		msg = "Sentiment looks calm. No action needed."
	}

	return CrashRisk{RiskScore: round2(score), RiskLevel: level, Recommendation: msg}
}

// tokenize splits text into ASCII word runs and CJK runs, then segments
// each CJK run against the keyword dictionary with greedy longest match.
// Unmatched CJK characters count as single-character tokens.
func tokenize(text string) []string {
	var tokens []string
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case isASCIIWordRune(r):
			j := i
			for j < len(runes) && isASCIIWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		case isCJK(r):
			j := i
			for j < len(runes) && isCJK(runes[j]) {
				j++
			}
			tokens = append(tokens, segmentCJK(runes[i:j])...)
			i = j
		default:
			i++
		}
	}
	return tokens
}

// segmentCJK splits a CJK run into dictionary words by greedy longest
// match, falling back to single characters.
func segmentCJK(run []rune) []string {
	var tokens []string
	i := 0
	for i < len(run) {
		matched := false
		maxLen := maxDictWordLen
		if rest := len(run) - i; rest < maxLen {
			maxLen = rest
		}
		for l := maxLen; l >= 2; l-- {
			word := string(run[i : i+l])
			if _, ok := dictionary[word]; ok {
				tokens = append(tokens, word)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			tokens = append(tokens, string(run[i]))
			i++
		}
	}
	return tokens
}

func isASCIIWordRune(r rune) bool {
	return r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// isCJK covers the unified ideographs plus hiragana and katakana.
func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		r == 'ー' // long vowel mark used inside katakana words
}

func topWords(counts map[string]int, n int) []WordCount {
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
