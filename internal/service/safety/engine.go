package safety

import (
	"strings"

	"github.com/sandevgo/solace/internal/config"
	"github.com/sandevgo/solace/internal/core"
)

// Engine classifies text for crisis signals. Phrase matching runs before
// sentiment: any high-risk phrase wins and carries an override, moderate
// phrases adjust tone and flag the footnote, and a clean text falls through
// to sentiment-only tone hinting.
type Engine struct {
	highPhrases     []string
	moderatePhrases []string
	checkOutbound   bool
}

func NewEngine(cfg *config.SafetyConfig) *Engine {
	high := make([]string, 0, len(highRiskPhrases)+len(cfg.ExtraRiskPhrases))
	high = append(high, highRiskPhrases...)
	for _, p := range cfg.ExtraRiskPhrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			high = append(high, p)
		}
	}

	return &Engine{
		highPhrases:     high,
		moderatePhrases: moderateRiskPhrases,
		checkOutbound:   cfg.CheckOutbound,
	}
}

// Classify inspects an inbound user turn.
func (e *Engine) Classify(text string) core.SafetyVerdict {
	lowered := strings.ToLower(text)

	for _, phrase := range e.highPhrases {
		if strings.Contains(lowered, phrase) {
			return core.SafetyVerdict{
				Risk:          core.RiskHigh,
				MatchedSignal: phrase,
				ToneHint:      ToneGrounding,
				OverrideText:  crisisOverrideText,
			}
		}
	}

	for _, phrase := range e.moderatePhrases {
		if strings.Contains(lowered, phrase) {
			return core.SafetyVerdict{
				Risk:          core.RiskModerate,
				MatchedSignal: phrase,
				ToneHint:      ToneCalm,
			}
		}
	}

	return core.SafetyVerdict{
		Risk:     core.RiskNone,
		ToneHint: sentimentTone(text),
	}
}

// ReviewResponse checks a generated response before it reaches the user.
// A high-risk match replaces the response entirely; a moderate inbound
// verdict appends the support footnote.
func (e *Engine) ReviewResponse(response string, inbound core.SafetyVerdict) (string, core.SafetyVerdict) {
	outbound := core.SafetyVerdict{Risk: core.RiskNone, ToneHint: inbound.ToneHint}

	if e.checkOutbound {
		lowered := strings.ToLower(response)
		for _, phrase := range e.highPhrases {
			if strings.Contains(lowered, phrase) {
				outbound = core.SafetyVerdict{
					Risk:          core.RiskHigh,
					MatchedSignal: phrase,
					ToneHint:      ToneGrounding,
					OverrideText:  crisisOverrideText,
				}
				return crisisOverrideText, outbound
			}
		}
	}

	if inbound.Risk == core.RiskModerate && !strings.Contains(response, "988") {
		return response + moderateFootnote, outbound
	}

	return response, outbound
}

// ToneDirective renders the verdict's tone hint as a prompt directive.
// Empty for neutral tone.
func ToneDirective(v core.SafetyVerdict) string {
	return toneDirective(v.ToneHint)
}
