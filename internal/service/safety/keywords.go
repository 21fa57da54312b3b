package safety

// Crisis signal phrases, matched case-insensitively as substrings.
// highRiskPhrases indicate active self-harm ideation and trigger the
// response override; moderateRiskPhrases indicate acute distress and only
// adjust tone and append the support footnote.
var highRiskPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"end it all",
	"want to die",
	"self harm",
	"self-harm",
	"hurt myself",
	"harm myself",
	"overdose",
	"no reason to live",
	"better off dead",
	"better off without me",
}

var moderateRiskPhrases = []string{
	"stressed",
	"overwhelmed",
	"anxious",
	"panic",
	"hopeless",
	"worthless",
	"can't go on",
	"cant go on",
	"give up on everything",
	"nothing matters",
	"no one cares",
	"falling apart",
	"can't take it anymore",
	"cant take it anymore",
}

// crisisOverrideText replaces any generated response on a high-risk turn.
const crisisOverrideText = `I'm really concerned about what you're sharing with me. You deserve support from people who are trained to help.

Please reach out right now:
- 988 Suicide & Crisis Lifeline: call or text 988 (available 24/7)
- Crisis Text Line: text HOME to 741741
- If you are in immediate danger, call 911 or go to the nearest emergency room

You don't have to go through this alone. Would you be willing to reach out to one of these resources?`

// moderateFootnote is appended to a generated response on a moderate-risk
// turn.
const moderateFootnote = "\n\nIf things ever feel like too much, support is always available: you can call or text 988 to reach the Suicide & Crisis Lifeline, any time."
