// Package scoring adjudicates a bell ring against the cards currently on the
// table.
package scoring

import "github.com/halligalli/bell-server/internal/game/cards"

// Target is the fruit total that makes a bell ring correct.
const Target = 5

// Reason records which rule decided a bell ring.
type Reason string

const (
	ReasonPlus      Reason = "plus"
	ReasonMinus     Reason = "minus"
	ReasonExactFive Reason = "exact_five"
	ReasonOverFive  Reason = "over_five"
	ReasonMiss      Reason = "miss"
)

// Result is the outcome of a bell ring.
type Result struct {
	Delta  int
	Reason Reason
}

// Won reports whether the bell ring earned a point.
func (r Result) Won() bool {
	return r.Delta > 0
}

// Evaluate scores a bell ring over the revealed cards. The first rule that
// matches decides: any plus card, then any minus card, then a fruit whose
// total is exactly five, then a fruit whose total exceeds five. Anything else
// is a miss.
func Evaluate(revealed []cards.Card) Result {
	var hasPlus, hasMinus bool
	for _, c := range revealed {
		switch c.Kind {
		case cards.KindPlus:
			hasPlus = true
		case cards.KindMinus:
			hasMinus = true
		}
	}

	// Plus beats a simultaneous minus.
	if hasPlus {
		return Result{Delta: 1, Reason: ReasonPlus}
	}
	if hasMinus {
		return Result{Delta: -1, Reason: ReasonMinus}
	}

	totals := make(map[cards.Fruit]int)
	for _, c := range revealed {
		if c.Kind == cards.KindFruit {
			totals[c.Fruit] += c.Value
		}
	}

	for _, sum := range totals {
		if sum == Target {
			return Result{Delta: 1, Reason: ReasonExactFive}
		}
	}
	for _, sum := range totals {
		if sum > Target {
			return Result{Delta: -1, Reason: ReasonOverFive}
		}
	}
	return Result{Delta: -1, Reason: ReasonMiss}
}

// Apply adds delta to score, never going below zero.
func Apply(score, delta int) int {
	return max(0, score+delta)
}
