package sentiment

import (
	"math"
	"strings"
)

// Lexicon scores headline text with a fixed polarity word list, finance
// tilted, compounded with the usual s/sqrt(s^2+alpha) normalization so each
// headline lands in [-1, 1].
type Lexicon struct {
	polarity map[string]float64
}

// compoundAlpha dampens the normalized score for short texts.
const compoundAlpha = 15.0

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"isnt": true, "wasnt": true, "wont": true, "cant": true, "doesnt": true,
}

// NewLexicon builds the scorer with the embedded word list.
func NewLexicon() *Lexicon {
	return &Lexicon{polarity: map[string]float64{
		// positive
		"gain": 1.6, "gains": 1.6, "surge": 2.1, "surges": 2.1, "rally": 1.9,
		"rallies": 1.9, "jump": 1.7, "jumps": 1.7, "rise": 1.4, "rises": 1.4,
		"soar": 2.3, "soars": 2.3, "record": 1.2, "beat": 1.8, "beats": 1.8,
		"strong": 1.5, "growth": 1.6, "profit": 1.7, "profits": 1.7,
		"upgrade": 1.9, "upgraded": 1.9, "bullish": 2.0, "outperform": 1.8,
		"buy": 1.3, "dividend": 1.0, "bonus": 1.2, "expansion": 1.3,
		"wins": 1.6, "win": 1.6, "approval": 1.4, "positive": 1.5,
		"recovery": 1.4, "rebound": 1.5, "upbeat": 1.6, "robust": 1.5,
		"high": 0.9, "boost": 1.5, "boosts": 1.5,

		// negative
		"loss": -1.7, "losses": -1.7, "fall": -1.4, "falls": -1.4,
		"drop": -1.5, "drops": -1.5, "plunge": -2.3, "plunges": -2.3,
		"crash": -2.5, "crashes": -2.5, "slump": -2.0, "slumps": -2.0,
		"weak": -1.5, "decline": -1.5, "declines": -1.5, "miss": -1.6,
		"misses": -1.6, "downgrade": -1.9, "downgraded": -1.9,
		"bearish": -2.0, "underperform": -1.8, "sell": -1.3, "debt": -1.1,
		"fraud": -2.6, "probe": -1.6, "penalty": -1.7, "fine": -1.2,
		"lawsuit": -1.6, "default": -2.2, "bankruptcy": -2.8,
		"layoff": -1.8, "layoffs": -1.8, "negative": -1.5, "risk": -0.9,
		"concern": -1.2, "concerns": -1.2, "warning": -1.5, "cuts": -1.3,
		"cut": -1.3, "low": -0.9, "slowdown": -1.6, "scam": -2.5,
	}}
}

// Score returns the compound polarity of one headline in [-1, 1].
func (l *Lexicon) Score(text string) float64 {
	words := tokenize(text)

	sum := 0.0
	negate := false
	for _, w := range words {
		if negations[w] {
			negate = true
			continue
		}
		if v, ok := l.polarity[w]; ok {
			if negate {
				v = -v
			}
			sum += v
		}
		negate = false
	}
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+compoundAlpha)
}

// ScoreAll averages the compound score across headlines; empty input is
// neutral.
func (l *Lexicon) ScoreAll(headlines []string) float64 {
	if len(headlines) == 0 {
		return 0
	}
	total := 0.0
	for _, h := range headlines {
		total += l.Score(h)
	}
	return total / float64(len(headlines))
}

func tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}
