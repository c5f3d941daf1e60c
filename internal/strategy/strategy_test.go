package strategy

import (
	"testing"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// table seats Alice (to decide), Bob (leading, active) and Cara (stayed)
// with 20 cards left in the deck.
func table() *model.GameState {
	alice := &model.PlayerState{ID: "p1", Name: "Alice", Hand: card.MustParseHand("5", "7"), RoundScore: 12, TotalScore: 40}
	bob := &model.PlayerState{ID: "p2", Name: "Bob", Hand: card.MustParseHand("5", "12"), RoundScore: 17, TotalScore: 150}
	cara := &model.PlayerState{ID: "p3", Name: "Cara", Hand: card.MustParseHand("9"), RoundScore: 9, TotalScore: 80, Stayed: true}

	return &model.GameState{
		ID:           "game_test",
		Deck:         make([]card.Card, 20),
		Discard:      card.MustParseHand("7", "7", "7"),
		CurrentRound: model.NewRoundState(2, "p1", []*model.PlayerState{alice, bob, cara}, 20),
	}
}

func contextFor(t *testing.T, g *model.GameState, id string) *Context {
	t.Helper()
	ctx, err := NewContext(g, id)
	require.NoError(t, err)
	return ctx
}

func TestNewContext(t *testing.T) {
	g := table()
	ctx := contextFor(t, g, "p1")

	assert.Equal(t, "p1", ctx.PlayerID)
	assert.Equal(t, 12, ctx.RoundScore)
	assert.Equal(t, 2, ctx.Round)
	assert.Equal(t, 20, ctx.Deck.Remaining)
	assert.Equal(t, 3, ctx.Deck.Discarded)
	assert.Len(t, ctx.Deck.Visible, 6, "discard plus the other hands")
	require.Len(t, ctx.Opponents, 2)
	assert.Equal(t, "Bob", ctx.Opponents[0].Name)
	assert.True(t, ctx.Opponents[0].Active())
	assert.False(t, ctx.Opponents[1].Active())

	ctx.Hand[0] = card.NewNumber("", 11)
	assert.Equal(t, "5", g.CurrentRound.Player("p1").Hand[0].String(), "context holds a copy of the hand")

	_, err := NewContext(g, "nobody")
	assert.Error(t, err)

	g.CurrentRound = nil
	_, err = NewContext(g, "p1")
	assert.Error(t, err)
}

func TestDuplicateOdds(t *testing.T) {
	ctx := contextFor(t, table(), "p1")

	odds := ctx.DuplicateOdds()
	// five 5s: one held, one with Bob; seven 7s: one held, three discarded
	assert.InDelta(t, 3.0/20, odds[5], 1e-9)
	assert.InDelta(t, 3.0/20, odds[7], 1e-9)
	assert.InDelta(t, 0.3, ctx.BustRisk(), 1e-9)

	ctx.Deck.Remaining = 0
	assert.Empty(t, ctx.DuplicateOdds())
	assert.Zero(t, ctx.BustRisk())
}

func TestContextHelpers(t *testing.T) {
	ctx := contextFor(t, table(), "p1")

	assert.Equal(t, 2, ctx.NumberCards())
	assert.False(t, ctx.HasMultiplier())
	ctx.Hand = append(ctx.Hand, card.NewMultiply(""))
	assert.True(t, ctx.HasMultiplier())

	lead, ok := ctx.LeadingOpponent()
	require.True(t, ok)
	assert.Equal(t, "p2", lead.ID)

	assert.False(t, ctx.MustHit())
	ctx.FlipThreeActive, ctx.FlipThreeCount = true, 2
	assert.True(t, ctx.MustHit())
}

func TestThreshold(t *testing.T) {
	ctx := contextFor(t, table(), "p1")

	low := NewThreshold("", 10)
	high := NewThreshold("", 100)
	assert.Equal(t, "Threshold(10)", low.Name())

	assert.False(t, low.HitOrStay(ctx))
	assert.True(t, high.HitOrStay(ctx))

	assert.Equal(t, "p2", high.FlipThreeTarget(ctx, []string{"p1", "p2"}))
	assert.Equal(t, "p1", high.FlipThreeTarget(ctx, []string{"p1"}), "no opponent left means self")

	assert.Equal(t, "p1", low.FreezeTarget(ctx, []string{"p1", "p2"}), "bank a hand over target")
	assert.Equal(t, "p2", high.FreezeTarget(ctx, []string{"p1", "p2"}))

	dups := card.Numbers(card.MustParseHand("5", "5"))
	assert.Equal(t, dups[1], low.SecondChanceDiscard(ctx, dups))

	ctx.FlipThreeActive, ctx.FlipThreeCount = true, 1
	assert.True(t, low.HitOrStay(ctx), "Flip Three forces a draw")
}

func TestOdds(t *testing.T) {
	ctx := contextFor(t, table(), "p1")

	careful := NewOdds("", 0.25, 0)
	bold := NewOdds("", 0.5, 0)
	assert.Equal(t, "Odds(25%)", careful.Name())

	assert.False(t, careful.HitOrStay(ctx), "30% risk is above 25%")
	assert.True(t, bold.HitOrStay(ctx))

	assert.Equal(t, "p1", careful.FreezeTarget(ctx, []string{"p1", "p2"}))
	assert.Equal(t, "p2", bold.FreezeTarget(ctx, []string{"p1", "p2"}))
	assert.Equal(t, "p2", careful.FlipThreeTarget(ctx, []string{"p1", "p2"}))

	capped := NewOdds("", 0.5, 10)
	assert.False(t, capped.HitOrStay(ctx), "stays once the target is reached")

	ctx.HasSecondChance = true
	assert.True(t, careful.HitOrStay(ctx), "Second Chance covers the next card")
}

func TestRandom(t *testing.T) {
	ctx := contextFor(t, table(), "p1")
	rng := randutil.New(7)

	never := NewRandom("", 0, rng)
	always := NewRandom("", 1, rng)
	assert.Equal(t, "Random(0%)", never.Name())

	for range 50 {
		assert.False(t, never.HitOrStay(ctx))
		assert.True(t, always.HitOrStay(ctx))
		assert.Contains(t, []string{"p1", "p2"}, never.FreezeTarget(ctx, []string{"p1", "p2"}))
		assert.Contains(t, []string{"p1", "p2"}, never.FlipThreeTarget(ctx, []string{"p1", "p2"}))
	}

	ctx.FlipThreeActive, ctx.FlipThreeCount = true, 3
	assert.True(t, never.HitOrStay(ctx))
}

func TestNew(t *testing.T) {
	tests := []struct {
		spec    Spec
		name    string
		wantErr bool
	}{
		{spec: Spec{Kind: KindThreshold}, name: "Threshold(100)"},
		{spec: Spec{Kind: KindRandom}, name: "Random(50%)"},
		{spec: Spec{Kind: KindOdds, MaxRisk: 0.1}, name: "Odds(10%)"},
		{spec: Spec{Name: "cautious", Kind: KindThreshold, Target: 20}, name: "cautious"},
		{spec: Spec{Kind: KindRandom, HitProbability: 1.5}, wantErr: true},
		{spec: Spec{Kind: KindOdds, MaxRisk: 2}, wantErr: true},
		{spec: Spec{Kind: KindThreshold, Target: -5}, wantErr: true},
		{spec: Spec{Kind: "psychic"}, wantErr: true},
	}

	for _, tt := range tests {
		s, err := New(tt.spec, randutil.New(1))
		if tt.wantErr {
			assert.Error(t, err, "%+v", tt.spec)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.name, s.Name())
	}
}
