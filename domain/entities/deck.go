package entities

import (
	"encoding/json"
	"errors"

	"casino/domain/rng"
)

// StandardDeckSize is the number of cards in a fresh deck
const StandardDeckSize = 52

// ErrDeckExhausted is the panic value raised when dealing from an empty deck
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is an ordered stack of cards dealt from the end. A deck belongs to exactly
// one blackjack session and is discarded with it.
type Deck struct {
	cards []Card
}

// NewStandardDeck builds the 52 card deck in rank-major order, unshuffled
func NewStandardDeck() *Deck {
	cards := make([]Card, 0, StandardDeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return &Deck{cards: cards}
}

// NewShuffledDeck builds a standard deck and shuffles it with src
func NewShuffledDeck(src rng.Source) *Deck {
	d := NewStandardDeck()
	d.Shuffle(src)
	return d
}

// NewDeck creates a deck holding exactly the given cards. The last card is the
// first one dealt.
func NewDeck(cards ...Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Shuffle permutes the deck in place with Fisher-Yates. At step i the swap
// partner is drawn from the inclusive range [0, i].
func (d *Deck) Shuffle(src rng.Source) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card. Dealing from an empty deck is a
// programming error and panics.
func (d *Deck) Deal() Card {
	if len(d.cards) == 0 {
		panic(ErrDeckExhausted)
	}
	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the undealt cards, bottom first
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	return NewDeck(d.cards...)
}

func (d *Deck) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.cards)
}

func (d *Deck) UnmarshalJSON(data []byte) error {
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	d.cards = cards
	return nil
}

// NewStackedDeck returns a full 52 card deck whose first deals are top, in
// order, followed by the remaining standard cards. Duplicates in top are
// dealt once.
func NewStackedDeck(top ...Card) *Deck {
	used := make(map[Card]struct{}, len(top))
	order := make([]Card, 0, StandardDeckSize)
	for _, c := range top {
		if _, ok := used[c]; ok {
			continue
		}
		used[c] = struct{}{}
		order = append(order, c)
	}
	for _, c := range NewStandardDeck().cards {
		if _, ok := used[c]; !ok {
			order = append(order, c)
		}
	}
	cards := make([]Card, len(order))
	for i, c := range order {
		cards[len(order)-1-i] = c
	}
	return &Deck{cards: cards}
}
