package sentiment

// Investment-domain keyword tables, Japanese and English. The tokenizer
// segments CJK runs against these dictionaries, so multi-character terms
// must be listed here to be counted as single words.

var negativeWords = []string{
	// Japanese
	"暴落", "急落", "下落", "続落", "大損", "損失", "損切り", "含み損",
	"赤字", "減益", "減配", "無配", "倒産", "破綻", "下方修正", "売り",
	"空売り", "狼狽", "悲観", "弱気", "不安", "リスク", "撤退", "最安値",
	// English
	"crash", "plunge", "collapse", "selloff", "bearish", "bankruptcy",
	"recession", "downgrade", "loss", "losses", "dump", "panic", "short",
	"default", "bubble", "overvalued",
}

var positiveWords = []string{
	// Japanese
	"上昇", "急騰", "高騰", "続伸", "反発", "好調", "好決算", "増益",
	"増配", "上方修正", "買い", "強気", "最高値", "成長", "割安", "期待",
	// English
	"rally", "surge", "bullish", "breakout", "upgrade", "profit", "growth",
	"beat", "record", "undervalued", "moon", "buy",
}

var negativeSet = toSet(negativeWords)
var positiveSet = toSet(positiveWords)

// dictionary is the union of both tables, used by the CJK segmenter for
// longest-match lookup.
var dictionary = func() map[string]struct{} {
	d := make(map[string]struct{}, len(negativeWords)+len(positiveWords))
	for _, w := range negativeWords {
		d[w] = struct{}{}
	}
	for _, w := range positiveWords {
		d[w] = struct{}{}
	}
	return d
}()

// maxDictWordLen is the longest dictionary entry in runes, bounding the
// greedy segmenter's lookahead.
var maxDictWordLen = func() int {
	max := 1
	for w := range dictionary {
		if n := len([]rune(w)); n > max {
			max = n
		}
	}
	return max
}()

func toSet(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
