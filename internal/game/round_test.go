package game

import (
	"testing"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealCardToPlayer(t *testing.T) {
	t.Run("takes the exact card from the deck", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		top, err := e.PeekCard()
		require.NoError(t, err)

		require.NoError(t, e.DealCardToPlayer(alice, top))

		p := r.Player(alice)
		require.Len(t, p.Hand, 1)
		assert.True(t, card.Same(top, p.Hand[0]))
		assert.Equal(t, deck.Size-1, len(e.GameState().Deck))
		assert.Equal(t, deck.Size-1, r.CardsRemaining)
		assert.Equal(t, deck.Size, cardsInPlay(e))

		dealt := lastOfType[*events.CardDealt](e)
		require.NotNil(t, dealt)
		assert.Equal(t, 1, dealt.HandSize)
		assert.Equal(t, "Alice", dealt.PlayerName)
	})

	t.Run("matches by face when identity is unknown", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]

		require.NoError(t, e.DealCardToPlayer(alice, card.NewNumber("", 12)))

		p := r.Player(alice)
		require.Len(t, p.Hand, 1)
		assert.NotEmpty(t, p.Hand[0].ID(), "the deck's own card is dealt")
		assert.Equal(t, deck.Size, cardsInPlay(e))
		assert.Equal(t, 11, deck.Composition(e.GameState().Deck).NumberCounts[12])
	})

	t.Run("accepts a manual card missing from the deck", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		stackDeck(e, "1", "2")

		require.NoError(t, e.DealCardToPlayer(alice, card.NewNumber("", 9)))
		assert.Len(t, e.GameState().Deck, 2)
		assert.Equal(t, 9, r.Player(alice).RoundScore)
	})

	t.Run("updates the live round score", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		stackDeck(e, "10", "9", "+4", "x2", "3")

		deal(t, e, alice, "10", "9", "+4", "x2")
		assert.Equal(t, 46, r.Player(alice).RoundScore)
		assert.Equal(t, 0, r.Player(alice).TotalScore, "totals move only when banked")
	})

	t.Run("rejects invalid cards", func(t *testing.T) {
		e, r := newTestEngine(t)
		err := e.DealCardToPlayer(r.Order[0], card.NewNumber("", 13))
		reason, _ := rules.IsDenied(err)
		assert.Equal(t, rules.ReasonInvalidCard, reason)
	})
}

func TestBust(t *testing.T) {
	t.Run("duplicate busts and zeroes the round score", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice := r.Order[0]
		stackDeck(e, "7", "3", "7", "5")

		deal(t, e, alice, "7", "3", "7")

		p := r.Player(alice)
		assert.True(t, p.Busted)
		assert.Equal(t, 0, p.RoundScore)
		assert.NotNil(t, e.GameState().CurrentRound, "others are still playing")

		busted := lastOfType[*events.PlayerBusted](e)
		require.NotNil(t, busted)
		assert.Equal(t, "7", busted.Card.String())

		err := e.DealCardToPlayer(alice, card.NewNumber("", 5))
		reason, _ := rules.IsDenied(err)
		assert.Equal(t, rules.ReasonBusted, reason)
	})

	t.Run("last player busting ends the round", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "8", "4", "4", "1")

		deal(t, e, alice, "8")
		require.NoError(t, e.PlayerStay(alice))
		deal(t, e, bob, "4", "4")

		g := e.GameState()
		assert.Nil(t, g.CurrentRound)
		require.Len(t, g.History, 1)
		done := g.History[0]
		assert.True(t, done.Complete)
		assert.Equal(t, model.EndPlayerBusted, done.EndReason)
		assert.Equal(t, []string{alice}, done.WinnerIDs)
		assert.Equal(t, 8, done.Player(alice).TotalScore)
		assert.Equal(t, 0, done.Player(bob).TotalScore)

		assert.Len(t, g.Discard, 3, "hands go to the discard pile")
		assert.ErrorIs(t, e.PlayerStay(bob), ErrNoActiveRound)
	})

	t.Run("flip three is cleared on bust", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice := r.Order[0]
		stackDeck(e, "F3", "2", "2")

		deal(t, e, alice, "F3")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], alice, ""))
		deal(t, e, alice, "2", "2")

		p := r.Player(alice)
		assert.True(t, p.Busted)
		assert.False(t, p.FlipThreeActive)
		assert.Equal(t, 0, p.FlipThreeCount)
	})
}

func TestStay(t *testing.T) {
	e, r := newTestEngine(t, "Alice", "Bob", "Carol")
	alice := r.Order[0]
	// seven nines cannot be dealt without busting, so build the hand directly
	r.Player(alice).Hand = card.MustParseHand("9", "9", "9", "9", "9", "9", "9")

	require.NoError(t, e.PlayerStay(alice))

	p := r.Player(alice)
	assert.True(t, p.Stayed)
	assert.Equal(t, 78, p.RoundScore)
	assert.Equal(t, 78, p.TotalScore)

	stayed := lastOfType[*events.PlayerStayed](e)
	require.NotNil(t, stayed)
	assert.True(t, stayed.HasFlip7)
	assert.Equal(t, 78, stayed.TotalScore)

	err := e.PlayerStay(alice)
	reason, _ := rules.IsDenied(err)
	assert.Equal(t, rules.ReasonAlreadyStayed, reason)

	err = e.PlayerHit(alice)
	reason, _ = rules.IsDenied(err)
	assert.Equal(t, rules.ReasonAlreadyStayed, reason)
}

func TestPlayerHitOnlyRecords(t *testing.T) {
	e, r := newTestEngine(t)
	alice := r.Order[0]

	require.NoError(t, e.PlayerHit(alice))
	assert.Empty(t, r.Player(alice).Hand)
	assert.Equal(t, deck.Size, len(e.GameState().Deck))
	assert.Equal(t, events.EventTypePlayerHit, e.Log().Last().EventType())
}

func TestFlipThree(t *testing.T) {
	t.Run("action cards do not count toward the three", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice := r.Order[0]
		stackDeck(e, "F3", "F", "1", "2", "3", "4")

		deal(t, e, alice, "F3")
		require.NoError(t, e.ApplyActionCardEffect(card.NewAction("", card.FlipThree), alice, alice))

		p := r.Player(alice)
		assert.True(t, p.FlipThreeActive)
		assert.Equal(t, 3, p.FlipThreeCount)

		reason, _ := rules.IsDenied(e.PlayerStay(alice))
		assert.Equal(t, rules.ReasonFlipThreeActive, reason)

		deal(t, e, alice, "F")
		assert.Equal(t, 3, p.FlipThreeCount)

		deal(t, e, alice, "1", "2")
		assert.True(t, p.FlipThreeActive)
		assert.Equal(t, 1, p.FlipThreeCount)

		deal(t, e, alice, "3")
		assert.False(t, p.FlipThreeActive, "cleared on the third non-action card")
		assert.Equal(t, 0, p.FlipThreeCount)

		require.NoError(t, e.PlayerStay(alice))
	})

	t.Run("the triggering deal does not count", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "F3", "+2", "5")

		deal(t, e, alice, "F3")
		require.NoError(t, e.ApplyActionCardEffect(card.NewAction("", card.FlipThree), bob, alice))
		assert.Equal(t, 3, r.Player(bob).FlipThreeCount)
		assert.False(t, r.Player(alice).FlipThreeActive)

		deal(t, e, bob, "+2")
		assert.Equal(t, 2, r.Player(bob).FlipThreeCount, "modifiers count")
	})

	t.Run("cannot target a stayed player", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob := r.Order[0], r.Order[1]
		require.NoError(t, e.PlayerStay(bob))

		err := e.ApplyActionCardEffect(card.NewAction("", card.FlipThree), bob, alice)
		reason, _ := rules.IsDenied(err)
		assert.Equal(t, rules.ReasonTargetStayed, reason)
	})
}

func TestFreeze(t *testing.T) {
	t.Run("banks the target's score", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "6", "x2", "F")

		deal(t, e, bob, "6", "x2")
		deal(t, e, alice, "F")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], bob, alice))

		p := r.Player(bob)
		assert.True(t, p.Stayed)
		assert.Equal(t, 12, p.RoundScore)
		assert.Equal(t, 12, p.TotalScore)

		applied := lastOfType[*events.ActionApplied](e)
		require.NotNil(t, applied)
		assert.Equal(t, card.Freeze, applied.Action)
		assert.Equal(t, alice, applied.PlayerID)
		assert.Equal(t, bob, applied.TargetID)
		assert.NotNil(t, e.GameState().CurrentRound)
	})

	t.Run("freezing the last active player ends the round", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "4", "7", "F")

		deal(t, e, alice, "4")
		require.NoError(t, e.PlayerStay(alice))
		deal(t, e, bob, "7", "F")

		freeze := r.Player(bob).Hand[1]
		require.NoError(t, e.ApplyActionCardEffect(freeze, bob, bob))

		g := e.GameState()
		assert.Nil(t, g.CurrentRound)
		require.Len(t, g.History, 1)
		assert.Equal(t, model.EndAllResolved, g.History[0].EndReason)
		assert.Equal(t, []string{bob}, g.History[0].WinnerIDs)
		assert.Equal(t, 7, g.History[0].Player(bob).TotalScore)

		ended := lastOfType[*events.RoundEnded](e)
		require.NotNil(t, ended)
		assert.Equal(t, model.EndAllResolved, ended.Reason)
	})

	t.Run("cannot freeze a stayed player", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob := r.Order[0], r.Order[1]
		require.NoError(t, e.PlayerStay(bob))

		err := e.ApplyActionCardEffect(card.NewAction("", card.Freeze), bob, alice)
		reason, _ := rules.IsDenied(err)
		assert.Equal(t, rules.ReasonTargetStayed, reason)
	})

	t.Run("non-action cards are refused", func(t *testing.T) {
		e, r := newTestEngine(t)
		err := e.ApplyActionCardEffect(card.NewNumber("", 3), r.Order[0], "")
		reason, _ := rules.IsDenied(err)
		assert.Equal(t, rules.ReasonNotActionCard, reason)
	})
}

func TestSecondChance(t *testing.T) {
	t.Run("saves a bust", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		stackDeck(e, "SC", "5", "8", "5", "1")

		deal(t, e, alice, "SC")
		sc := r.Player(alice).Hand[0]
		require.NoError(t, e.ApplyActionCardEffect(sc, alice, ""))
		assert.True(t, r.Player(alice).HasSecondChance)

		deal(t, e, alice, "5", "8", "5")
		p := r.Player(alice)
		assert.False(t, p.Busted)

		require.NoError(t, e.UseSecondChance(alice, card.NewNumber("", 5)))
		assert.False(t, p.HasSecondChance)
		assert.Equal(t, "8 5", handString(p.Hand))
		assert.Equal(t, 13, p.RoundScore)
		assert.Len(t, e.GameState().Discard, 2, "duplicate and Second Chance are discarded")

		used := lastOfType[*events.SecondChanceUsed](e)
		require.NotNil(t, used)
		assert.Equal(t, 5, used.DiscardedValue)
	})

	t.Run("validator denials", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		stackDeck(e, "SC", "5", "6")

		reason, _ := rules.IsDenied(e.UseSecondChance(alice, card.NewNumber("", 5)))
		assert.Equal(t, rules.ReasonNoSecondChance, reason)

		deal(t, e, alice, "SC")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], alice, ""))
		deal(t, e, alice, "5")

		reason, _ = rules.IsDenied(e.UseSecondChance(alice, card.NewNumber("", 6)))
		assert.Equal(t, rules.ReasonCardNotInHand, reason)
		reason, _ = rules.IsDenied(e.UseSecondChance(alice, card.NewNumber("", 5)))
		assert.Equal(t, rules.ReasonNoDuplicate, reason)
	})

	t.Run("a triple still busts after the save", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice := r.Order[0]
		stackDeck(e, "SC", "2", "2", "2")

		deal(t, e, alice, "SC")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], alice, ""))
		deal(t, e, alice, "2", "2", "2")
		require.False(t, r.Player(alice).Busted)

		require.NoError(t, e.UseSecondChance(alice, card.NewNumber("", 2)))
		assert.True(t, r.Player(alice).Busted)
		assert.Equal(t, 0, r.Player(alice).RoundScore)
	})

	t.Run("a second copy must go to another player", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob, carol := r.Order[0], r.Order[1], r.Order[2]
		stackDeck(e, "SC", "SC", "SC")

		deal(t, e, alice, "SC")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], alice, ""))

		deal(t, e, alice, "SC")
		second := r.Player(alice).Hand[1]
		reason, _ := rules.IsDenied(e.ApplyActionCardEffect(second, alice, alice))
		assert.Equal(t, rules.ReasonSecondChanceHeld, reason)

		require.NoError(t, e.ApplyActionCardEffect(second, bob, alice))
		assert.Len(t, r.Player(alice).Hand, 1, "card moved out of Alice's hand")
		require.Len(t, r.Player(bob).Hand, 1)
		assert.True(t, card.IsAction(r.Player(bob).Hand[0], card.SecondChance))
		assert.True(t, r.Player(bob).HasSecondChance)

		deal(t, e, carol, "SC")
		third := r.Player(carol).Hand[0]
		reason, _ = rules.IsDenied(e.ApplyActionCardEffect(third, bob, carol))
		assert.Equal(t, rules.ReasonTargetHoldsSecond, reason)
	})

	t.Run("unplayable cards can be discarded", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice := r.Order[0]
		stackDeck(e, "SC", "SC")

		deal(t, e, alice, "SC", "SC")
		require.NoError(t, e.ApplyActionCardEffect(r.Player(alice).Hand[0], alice, ""))

		extra := r.Player(alice).Hand[1]
		require.NoError(t, e.DiscardActionCard(alice, extra))
		assert.Len(t, r.Player(alice).Hand, 1)
		assert.True(t, r.Player(alice).HasSecondChance, "the held copy remains")
		assert.Len(t, e.GameState().Discard, 1)

		applied := lastOfType[*events.ActionApplied](e)
		require.NotNil(t, applied)
		assert.Equal(t, "discarded", applied.Effect)

		reason, _ := rules.IsDenied(e.DiscardActionCard(alice, card.NewNumber("", 3)))
		assert.Equal(t, rules.ReasonNotActionCard, reason)
		reason, _ = rules.IsDenied(e.DiscardActionCard(alice, card.NewAction("", card.Freeze)))
		assert.Equal(t, rules.ReasonCardNotInHand, reason)
	})
}

func TestReshuffle(t *testing.T) {
	e, r := newTestEngine(t, "Alice", "Bob", "Carol")
	alice := r.Order[0]
	stackDeck(e, "11")
	e.state.Discard = card.MustParseHand("1", "2", "3")

	deal(t, e, alice, "11")

	g := e.GameState()
	assert.Len(t, g.Deck, 3)
	assert.Empty(t, g.Discard)
	assert.Equal(t, 3, r.CardsRemaining)

	types := eventTypes(e)
	require.GreaterOrEqual(t, len(types), 2)
	assert.Equal(t, events.EventTypeDeckReshuffled, types[len(types)-2], "reshuffle happens inside the deal")
	assert.Equal(t, events.EventTypeCardDealt, types[len(types)-1])

	reshuffled := lastOfType[*events.DeckReshuffled](e)
	assert.Equal(t, 3, reshuffled.CardsReshuffled)
}

func TestEndRound(t *testing.T) {
	t.Run("deck exhausted", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "10")

		deal(t, e, alice, "10")
		reason, _ := rules.IsDenied(e.DealCardToPlayer(bob, card.NewNumber("", 1)))
		assert.Equal(t, rules.ReasonDeckEmpty, reason)

		done, err := e.EndRound()
		require.NoError(t, err)
		assert.Equal(t, model.EndDeckExhausted, done.EndReason)
		assert.Equal(t, []string{alice}, done.WinnerIDs)
		assert.Equal(t, 10, done.Player(alice).TotalScore, "unresolved players are banked")
		assert.True(t, done.Player(bob).Stayed)
	})

	t.Run("ended by caller", func(t *testing.T) {
		e, r := newTestEngine(t)
		alice, bob := r.Order[0], r.Order[1]
		stackDeck(e, "3", "3", "9")

		deal(t, e, alice, "3")
		deal(t, e, bob, "3")

		done, err := e.EndRound()
		require.NoError(t, err)
		assert.Equal(t, model.EndEndedByCaller, done.EndReason)
		assert.Equal(t, []string{alice, bob}, done.WinnerIDs, "ties share the round")
		assert.Len(t, e.GameState().Discard, 2)
		assert.Equal(t, 3, cardsInPlay(e))

		_, err = e.EndRound()
		assert.ErrorIs(t, err, ErrNoActiveRound)
	})

	t.Run("a bust earlier in the round sets the reason", func(t *testing.T) {
		e, r := newTestEngine(t, "Alice", "Bob", "Carol")
		alice, bob, carol := r.Order[0], r.Order[1], r.Order[2]
		stackDeck(e, "6", "6", "2")

		deal(t, e, alice, "6", "6")
		require.NoError(t, e.PlayerStay(bob))
		deal(t, e, carol, "2")
		require.NoError(t, e.PlayerStay(carol))

		done := e.GameState().History[0]
		assert.Equal(t, model.EndPlayerBusted, done.EndReason)
		assert.Equal(t, []string{carol}, done.WinnerIDs)
	})
}

func TestCardConservation(t *testing.T) {
	e, r := newTestEngine(t, "Alice", "Bob", "Carol")

	for round := 0; round < 5 && !e.GameState().Complete; round++ {
		if round > 0 {
			var err error
			r, err = e.StartNewRound()
			require.NoError(t, err)
		}
		for e.GameState().CurrentRound != nil {
			active := r.Active()
			if len(active) == 0 || e.DeckSize() == 0 {
				_, err := e.EndRound()
				require.NoError(t, err)
				break
			}
			p := active[0]
			if p.RoundScore >= 15 && rules.CanStay(p).Allowed() {
				require.NoError(t, e.PlayerStay(p.ID))
				continue
			}
			next, err := e.PeekCard()
			require.NoError(t, err)
			require.NoError(t, e.DealCardToPlayer(p.ID, next))
			if p.Active() && card.IsAction(next, card.SecondChance) && !p.HasSecondChance {
				require.NoError(t, e.ApplyActionCardEffect(next, p.ID, ""))
			} else if p.Active() && card.IsAction(next) {
				require.NoError(t, e.DiscardActionCard(p.ID, next))
			}
			if p.HasSecondChance && len(rules.Duplicates(p.Hand)) > 0 {
				dup := rules.Duplicates(p.Hand)[0]
				require.NoError(t, e.UseSecondChance(p.ID, card.NewNumber("", dup)))
			}
			assert.Equal(t, deck.Size, cardsInPlay(e))
		}
		assert.Equal(t, deck.Size, cardsInPlay(e), "round %d", round+1)
	}
}

func handString(hand []card.Card) string {
	s := ""
	for i, c := range hand {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
