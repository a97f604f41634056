// Package canned produces the fixed sample content used when no document backend is available:
// explanations, keyword-matched chat answers and locally generated session ids.
package canned

import (
	"math/rand/v2"
	"strings"

	"github.com/hyperjump/docassist/internal/models"
)

// Responder maps an outgoing question to the answer shown in the chat.
type Responder func(question string) string

// Explainer picks the explanation shown for a document.
type Explainer func(fileName string) models.Explanation

// category is one keyword rule of the fallback responder.
type category struct {
	keywords []string
	answer   string
}

// categories are checked in order; the first matching keyword wins.
var categories = []category{
	{keywords: []string{"parties", "party", "who"}, answer: partiesAnswer},
	{keywords: []string{"deadline", "date", "when"}, answer: deadlinesAnswer},
	{keywords: []string{"breach", "violation", "break"}, answer: breachAnswer},
	{keywords: []string{"confidential", "secret", "private"}, answer: confidentialityAnswer},
	{keywords: []string{"payment", "money", "pay"}, answer: paymentAnswer},
	{keywords: []string{"terminate", "end", "cancel"}, answer: terminationAnswer},
}

// MatchCategory returns the canned answer for the first keyword category found in question.
func MatchCategory(question string) (string, bool) {
	lower := strings.ToLower(question)
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.answer, true
			}
		}
	}
	return "", false
}

// NewKeywordResponder returns a Responder that answers by keyword category and falls back to a
// generic reply chosen with rng. A nil rng uses the package-level source.
func NewKeywordResponder(rng *rand.Rand) Responder {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return func(question string) string {
		if answer, ok := MatchCategory(question); ok {
			return answer
		}
		return GenericReplies[pick(len(GenericReplies))]
	}
}

// FixedResponder always answers with reply.
func FixedResponder(reply string) Responder {
	return func(string) string { return reply }
}

// NewRandomExplainer returns an Explainer that picks one of the sample explanations uniformly.
func NewRandomExplainer(rng *rand.Rand) Explainer {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return func(fileName string) models.Explanation {
		e := sampleExplanations[pick(len(sampleExplanations))]
		e.FileName = fileName
		return e
	}
}

// Explanations returns a copy of the sample explanations.
func Explanations() []models.Explanation {
	return append([]models.Explanation(nil), sampleExplanations...)
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewSessionID returns a local opaque session id of the form DOC-XXXXXXXXX.
func NewSessionID(rng *rand.Rand) string {
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	var b strings.Builder
	b.WriteString("DOC-")
	for i := 0; i < 9; i++ {
		b.WriteByte(idAlphabet[pick(len(idAlphabet))])
	}
	return b.String()
}
