package turn

import (
	"unicode"

	"parley/internal/languages"
)

// Side says who spoke an utterance.
type Side int

const (
	SideUnknown Side = iota
	SideHome
	SideForeign
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// DropReason explains why an utterance classified as unknown.
type DropReason string

const (
	DropNone           DropReason = ""
	DropUnresolved     DropReason = "unresolved_language"
	DropMisrecognition DropReason = "misrecognition"
)

// Classification is the outcome of Classify.
type Classification struct {
	Side       Side
	TargetCode string
	Text       string
	Drop       DropReason
}

// Classifier attributes utterances to the home or foreign side.
type Classifier struct {
	table      *languages.Table
	homeTarget string
	homeScript *unicode.RangeTable
}

// NewClassifier builds a classifier. A nil homeScript defaults to Han.
func NewClassifier(table *languages.Table, homeTarget string, homeScript *unicode.RangeTable) *Classifier {
	if homeScript == nil {
		homeScript = unicode.Han
	}
	return &Classifier{table: table, homeTarget: homeTarget, homeScript: homeScript}
}

// Classify resolves detected against the language table. Home-side text that
// carries Latin letters but no home-script characters is treated as a
// misrecognition and dropped; the foreign side is never filtered.
func (c *Classifier) Classify(detected, text string) Classification {
	target, ok := c.table.ResolveTargetCode(detected)
	if !ok {
		return Classification{Side: SideUnknown, Text: text, Drop: DropUnresolved}
	}

	if target != c.homeTarget {
		return Classification{Side: SideForeign, TargetCode: target, Text: text}
	}

	if looksMisrecognized(text, c.homeScript) {
		return Classification{Side: SideUnknown, TargetCode: target, Text: text, Drop: DropMisrecognition}
	}
	return Classification{Side: SideHome, TargetCode: target, Text: text}
}

func looksMisrecognized(text string, homeScript *unicode.RangeTable) bool {
	hasLatin := false
	for _, r := range text {
		if unicode.Is(homeScript, r) {
			return false
		}
		if !hasLatin && unicode.IsLetter(r) && unicode.Is(unicode.Latin, r) {
			hasLatin = true
		}
	}
	return hasLatin
}
