package rag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tradeboard/tradeboard/internal/domain"
)

// Position size as a fraction of available cash, by risk grade.
var positionSizePct = map[domain.RiskLevel]float64{
	domain.RiskLow:    0.02,
	domain.RiskMedium: 0.03,
	domain.RiskHigh:   0.05,
}

var confidencePct = regexp.MustCompile(`(\d+)%\s*confiden`)

// ParseRecommendation extracts a structured recommendation from a
// model answer. Parsing is deliberately forgiving: a malformed answer
// degrades to HOLD with default confidence rather than an error.
func ParseRecommendation(symbol, answer string, availableCash float64) domain.Recommendation {
	lower := strings.ToLower(answer)

	action := parseAction(lower)
	confidence := parseConfidence(lower)
	risk := parseRisk(lower)

	size := 0.0
	if action == domain.ActionBuy {
		size = availableCash * positionSizePct[risk]
	}

	return domain.Recommendation{
		Symbol:       symbol,
		Action:       action,
		Confidence:   confidence,
		Risk:         risk,
		PositionSize: size,
		Reasoning:    answer,
	}
}

func parseAction(lower string) domain.SignalAction {
	switch {
	case strings.Contains(lower, "buy") && !containsNegatedBuy(lower):
		return domain.ActionBuy
	case strings.Contains(lower, "sell"):
		return domain.ActionSell
	default:
		return domain.ActionHold
	}
}

func containsNegatedBuy(lower string) bool {
	for _, neg := range []string{"don't buy", "do not buy", "not buy", "avoid buy"} {
		if strings.Contains(lower, neg) {
			return true
		}
	}
	return false
}

func parseConfidence(lower string) float64 {
	if m := confidencePct.FindStringSubmatch(lower); m != nil {
		if pct, err := strconv.Atoi(m[1]); err == nil && pct >= 0 && pct <= 100 {
			return float64(pct) / 100
		}
	}
	switch {
	case strings.Contains(lower, "high confidence"), strings.Contains(lower, "very confident"):
		return 0.85
	case strings.Contains(lower, "good confidence"), strings.Contains(lower, "fairly confident"):
		return 0.75
	case strings.Contains(lower, "low confidence"), strings.Contains(lower, "uncertain"):
		return 0.5
	default:
		return 0.7
	}
}

func parseRisk(lower string) domain.RiskLevel {
	switch {
	case strings.Contains(lower, "low risk"), strings.Contains(lower, "conservative"):
		return domain.RiskLow
	case strings.Contains(lower, "high risk"), strings.Contains(lower, "risky"),
		strings.Contains(lower, "speculative"):
		return domain.RiskHigh
	default:
		return domain.RiskMedium
	}
}
