package signal

// Blend weights for combining technical score with batch sentiment.
const (
	technicalWeight = 0.7
	sentimentWeight = 0.3

	// Sentiment scores span [-100, 100]; the composite technical score is
	// empirically bounded by [-25, 25]. Sentiment is rescaled onto the
	// technical range before blending.
	sentimentScale = 4.0
)

// CombineWithSentiment blends a technical analysis with a batch sentiment
// score in [-100, 100] using a fixed 70/30 weighted average, then
// re-classifies on the standard thresholds. The individual scores and
// reasons of the technical analysis are preserved.
func CombineWithSentiment(a Analysis, sentimentScore float64) Analysis {
	blended := round2(technicalWeight*a.OverallScore + sentimentWeight*(sentimentScore/sentimentScale))

	level := classify(blended)
	out := a
	out.OverallScore = blended
	out.Signal = level
	out.Confidence = confidence(level, blended)
	out.RiskLevel = riskLevel(level)
	out.Recommendation = recommendation(level)
	return out
}
