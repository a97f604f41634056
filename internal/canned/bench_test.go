package canned

import (
	"math/rand/v2"
	"testing"
)

func BenchmarkMatchCategory(b *testing.B) {
	questions := []string{
		"Who are the parties to this agreement?",
		"What happens if someone breaks the contract?",
		"Is there anything unusual in section four?",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MatchCategory(questions[i%len(questions)])
	}
}

func BenchmarkKeywordResponder(b *testing.B) {
	respond := NewKeywordResponder(rand.New(rand.NewPCG(1, 2)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = respond("Can you summarise the payment schedule?")
	}
}
