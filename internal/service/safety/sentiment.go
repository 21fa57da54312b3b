package safety

import "strings"

// Small polarity lexicon for tone adaptation. Not a safety signal on its
// own; it only picks the tone hint for otherwise safe turns.
var negativeWords = map[string]struct{}{
	"sad": {}, "angry": {}, "anxious": {}, "stressed": {}, "scared": {},
	"lonely": {}, "tired": {}, "exhausted": {}, "frustrated": {},
	"depressed": {}, "overwhelmed": {}, "worried": {}, "afraid": {},
	"hurt": {}, "upset": {}, "miserable": {}, "awful": {}, "terrible": {},
	"hate": {}, "crying": {}, "lost": {}, "alone": {}, "empty": {},
}

var positiveWords = map[string]struct{}{
	"happy": {}, "glad": {}, "great": {}, "good": {}, "excited": {},
	"grateful": {}, "proud": {}, "hopeful": {}, "better": {}, "calm": {},
	"love": {}, "wonderful": {}, "amazing": {}, "relieved": {}, "thankful": {},
}

// Tone hints steer the response register.
const (
	ToneCalm      = "calm"
	ToneWarm      = "warm"
	ToneUpbeat    = "upbeat"
	ToneNeutral   = "neutral"
	ToneGrounding = "grounding"
)

// sentimentTone scores the text against the lexicon and maps the balance
// to a tone hint.
func sentimentTone(text string) string {
	neg, pos := 0, 0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		if _, ok := negativeWords[word]; ok {
			neg++
		}
		if _, ok := positiveWords[word]; ok {
			pos++
		}
	}

	switch {
	case neg >= 3 && neg > pos:
		return ToneGrounding
	case neg > pos:
		return ToneCalm
	case pos > neg:
		return ToneUpbeat
	case pos > 0:
		return ToneWarm
	default:
		return ToneNeutral
	}
}

// toneDirective renders a tone hint as a system directive for the prompt.
func toneDirective(tone string) string {
	switch tone {
	case ToneGrounding:
		return "The user is in significant distress. Be gentle and grounding. Validate their feelings before anything else. Do not problem-solve unless asked."
	case ToneCalm:
		return "The user seems to be struggling. Respond with warmth and patience. Acknowledge the difficulty before offering perspective."
	case ToneUpbeat:
		return "The user is in good spirits. Match their energy while staying genuine."
	case ToneWarm:
		return "Keep a warm, encouraging register."
	default:
		return ""
	}
}
