package game

import (
	"fmt"

	"github.com/lox/flip7/internal/card"
	"github.com/lox/flip7/internal/deck"
	"github.com/lox/flip7/internal/events"
	"github.com/lox/flip7/internal/model"
	"github.com/lox/flip7/internal/rules"
)

// DealCardToPlayer gives c to the player. The same physical card is taken
// from the deck when present, otherwise the first deck card with the same
// face; a card found in neither way is accepted as a manual override.
//
// When the deal empties the deck the discard pile is reshuffled into it.
// A card that busts the player may end the round. A Flip Three effect that
// was active before the deal counts down only on number and modifier cards.
func (e *Engine) DealCardToPlayer(playerID string, c card.Card) error {
	r, p, err := e.activePlayer(playerID)
	if err != nil {
		return err
	}
	if err := rules.CanHit(p, len(e.state.Deck)).Err(); err != nil {
		return err
	}
	if err := card.Validate(c); err != nil {
		return rules.Deny(rules.ReasonInvalidCard, "%v", err)
	}

	dealt := c
	if i := card.IndexOf(e.state.Deck, c); i >= 0 {
		dealt = e.state.Deck[i]
		e.state.Deck = card.Remove(e.state.Deck, i)
	} else {
		e.logger.Warn("Dealt card not found in deck", "player", p.Name, "card", c)
	}
	flipThreeBefore := p.FlipThreeActive

	p.Hand = append(p.Hand, dealt)
	r.CardsRemaining = len(e.state.Deck)

	if len(e.state.Deck) == 0 && len(e.state.Discard) > 0 {
		if err := e.reshuffle(r); err != nil {
			return err
		}
	}

	busted := rules.Busts(p.Hand, p.HasSecondChance)
	if !busted {
		p.RoundScore = rules.Score(p.Hand).Final
	}

	e.logger.Debug("Dealt card", "round", r.Number, "player", p.Name, "card", dealt, "hand", len(p.Hand))
	if err := e.emit(&events.CardDealt{
		Round:      r.Number,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Card:       dealt,
		HandSize:   len(p.Hand),
	}); err != nil {
		return err
	}

	if busted {
		return e.bust(r, p, dealt)
	}

	if flipThreeBefore && !card.IsAction(dealt) {
		p.FlipThreeCount--
		if p.FlipThreeCount <= 0 {
			p.FlipThreeCount = 0
			p.FlipThreeActive = false
			e.logger.Debug("Flip Three complete", "player", p.Name)
		}
	}
	return nil
}

func (e *Engine) reshuffle(r *model.RoundState) error {
	n := len(e.state.Discard)
	e.state.Deck = deck.Shuffle(e.state.Discard, e.rng)
	e.state.Discard = nil
	r.CardsRemaining = len(e.state.Deck)

	e.logger.Info("Reshuffled discard pile into deck", "round", r.Number, "cards", n)
	return e.emit(&events.DeckReshuffled{Round: r.Number, CardsReshuffled: n})
}

func (e *Engine) bust(r *model.RoundState, p *model.PlayerState, c card.Card) error {
	p.Busted = true
	p.RoundScore = 0
	p.FlipThreeActive = false
	p.FlipThreeCount = 0

	e.logger.Debug("Player busted", "round", r.Number, "player", p.Name, "card", c)
	if err := e.emit(&events.PlayerBusted{Round: r.Number, PlayerID: p.ID, PlayerName: p.Name, Card: c}); err != nil {
		return err
	}
	if r.AllResolved() {
		_, err := e.endRound(r)
		return err
	}
	return nil
}

// bank records the player's hand score as their round score and adds it to
// their total.
func bank(p *model.PlayerState) rules.Breakdown {
	b := rules.Score(p.Hand)
	p.RoundScore = b.Final
	p.TotalScore += b.Final
	p.Stayed = true
	p.FlipThreeActive = false
	p.FlipThreeCount = 0
	return b
}

// ApplyActionCardEffect resolves an action card drawn by originalID against
// targetID. An empty originalID means the target drew it.
func (e *Engine) ApplyActionCardEffect(c card.Card, targetID, originalID string) error {
	if originalID == "" {
		originalID = targetID
	}
	r, target, err := e.activePlayer(targetID)
	if err != nil {
		return err
	}
	_, original, err := e.activePlayer(originalID)
	if err != nil {
		return err
	}

	a, ok := c.(card.Action)
	if !ok {
		return rules.Deny(rules.ReasonNotActionCard, "%s", c)
	}
	if err := rules.CanTarget(a.Action, target).Err(); err != nil {
		return err
	}

	applied := &events.ActionApplied{
		Round:      r.Number,
		Action:     a.Action,
		PlayerID:   original.ID,
		PlayerName: original.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
	}

	switch a.Action {
	case card.Freeze:
		b := bank(target)
		applied.Effect = fmt.Sprintf("%s frozen with %d points", target.Name, b.Final)

	case card.FlipThree:
		target.FlipThreeActive = true
		target.FlipThreeCount = 3
		applied.Effect = fmt.Sprintf("%s must take 3 cards", target.Name)

	case card.SecondChance:
		if target.HasSecondChance {
			if original.ID == target.ID {
				return rules.Deny(rules.ReasonSecondChanceHeld, "")
			}
			return rules.Deny(rules.ReasonTargetHoldsSecond, "%s", target.Name)
		}
		moveToHand(a, original, target)
		target.HasSecondChance = true
		applied.Effect = fmt.Sprintf("%s holds a Second Chance", target.Name)
	}

	e.logger.Debug("Action applied", "round", r.Number, "action", a.Action, "from", original.Name, "to", target.Name)
	if err := e.emit(applied); err != nil {
		return err
	}

	if a.Action == card.Freeze && r.AllResolved() {
		_, err := e.endRound(r)
		return err
	}
	return nil
}

// moveToHand makes sure the action card ends up in the target's hand,
// taking it from the original holder when it was dealt to them.
func moveToHand(a card.Action, original, target *model.PlayerState) {
	if original.ID != target.ID {
		if i := card.IndexOf(original.Hand, a); i >= 0 {
			moved := original.Hand[i]
			original.Hand = card.Remove(original.Hand, i)
			target.Hand = append(target.Hand, moved)
			return
		}
	}
	if card.IndexOf(target.Hand, a) < 0 {
		target.Hand = append(target.Hand, a)
	}
}

// DiscardActionCard moves an action card that cannot be played from the
// player's hand to the discard pile.
func (e *Engine) DiscardActionCard(playerID string, c card.Card) error {
	r, p, err := e.activePlayer(playerID)
	if err != nil {
		return err
	}
	a, ok := c.(card.Action)
	if !ok {
		return rules.Deny(rules.ReasonNotActionCard, "%s", c)
	}
	i := card.IndexOf(p.Hand, c)
	if i < 0 {
		return rules.Deny(rules.ReasonCardNotInHand, "%s", c)
	}

	e.state.Discard = append(e.state.Discard, p.Hand[i])
	p.Hand = card.Remove(p.Hand, i)
	if a.Action == card.SecondChance && !holdsSecondChance(p.Hand) {
		p.HasSecondChance = false
	}

	return e.emit(&events.ActionApplied{
		Round:      r.Number,
		Action:     a.Action,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		TargetID:   p.ID,
		TargetName: p.Name,
		Effect:     "discarded",
	})
}

func holdsSecondChance(hand []card.Card) bool {
	for _, c := range hand {
		if card.IsAction(c, card.SecondChance) {
			return true
		}
	}
	return false
}

// PlayerHit records that the player asked for a card. The card itself is
// dealt by a separate DealCardToPlayer call.
func (e *Engine) PlayerHit(playerID string) error {
	r, p, err := e.activePlayer(playerID)
	if err != nil {
		return err
	}
	if err := rules.CanHit(p, len(e.state.Deck)).Err(); err != nil {
		return err
	}
	return e.emit(&events.PlayerHit{Round: r.Number, PlayerID: p.ID, PlayerName: p.Name})
}

// PlayerStay banks the player's hand. The round ends when they were the
// last player still in.
func (e *Engine) PlayerStay(playerID string) error {
	r, p, err := e.activePlayer(playerID)
	if err != nil {
		return err
	}
	if err := rules.CanStay(p).Err(); err != nil {
		return err
	}

	b := bank(p)
	e.logger.Debug("Player stayed", "round", r.Number, "player", p.Name, "score", b.Final, "total", p.TotalScore)
	if err := e.emit(&events.PlayerStayed{
		Round:      r.Number,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		RoundScore: p.RoundScore,
		TotalScore: p.TotalScore,
		HasFlip7:   b.HasFlip7(),
	}); err != nil {
		return err
	}

	if r.AllResolved() {
		_, err := e.endRound(r)
		return err
	}
	return nil
}

// UseSecondChance discards the duplicate c together with the player's
// Second Chance card.
func (e *Engine) UseSecondChance(playerID string, c card.Card) error {
	r, p, err := e.activePlayer(playerID)
	if err != nil {
		return err
	}
	if err := rules.CanUseSecondChance(p, c).Err(); err != nil {
		return err
	}

	i := card.IndexOf(p.Hand, c)
	discarded := p.Hand[i].(card.Number)
	e.state.Discard = append(e.state.Discard, discarded)
	p.Hand = card.Remove(p.Hand, i)

	for j, h := range p.Hand {
		if card.IsAction(h, card.SecondChance) {
			e.state.Discard = append(e.state.Discard, h)
			p.Hand = card.Remove(p.Hand, j)
			break
		}
	}
	p.HasSecondChance = false

	busted := rules.Busts(p.Hand, false)
	if !busted {
		p.RoundScore = rules.Score(p.Hand).Final
	}

	e.logger.Debug("Second Chance used", "round", r.Number, "player", p.Name, "discarded", discarded.Value)
	if err := e.emit(&events.SecondChanceUsed{
		Round:          r.Number,
		PlayerID:       p.ID,
		PlayerName:     p.Name,
		DiscardedValue: discarded.Value,
	}); err != nil {
		return err
	}

	if busted {
		return e.bust(r, p, discarded)
	}
	return nil
}

// EndRound ends the active round. Players still in are treated as staying.
func (e *Engine) EndRound() (*model.RoundState, error) {
	r, err := e.CurrentRound()
	if err != nil {
		return nil, err
	}
	return e.endRound(r)
}

func (e *Engine) endReason(r *model.RoundState) model.EndReason {
	switch {
	case r.AnyBusted():
		return model.EndPlayerBusted
	case r.AllResolved():
		return model.EndAllResolved
	case len(e.state.Deck) == 0:
		return model.EndDeckExhausted
	default:
		return model.EndEndedByCaller
	}
}

func (e *Engine) endRound(r *model.RoundState) (*model.RoundState, error) {
	r.Complete = true
	r.EndReason = e.endReason(r)

	for _, p := range r.Active() {
		bank(p)
	}
	r.WinnerIDs = rules.RoundWinners(r)

	roundScores := make(map[string]int, len(r.Players))
	totals := make(map[string]int, len(r.Players))
	for _, p := range r.Each() {
		e.state.Discard = append(e.state.Discard, p.Hand...)
		roundScores[p.ID] = p.RoundScore
		totals[p.ID] = p.TotalScore
	}

	r.CardsRemaining = len(e.state.Deck)
	e.state.History = append(e.state.History, r)
	e.state.CurrentRound = nil

	e.logger.Debug("Round ended", "round", r.Number, "reason", r.EndReason, "winners", len(r.WinnerIDs))
	if err := e.emit(&events.RoundEnded{
		Round:       r.Number,
		Reason:      r.EndReason,
		RoundScores: roundScores,
		TotalScores: totals,
		WinnerIDs:   r.WinnerIDs,
	}); err != nil {
		return r, err
	}
	return r, e.checkGameEnd(r)
}
