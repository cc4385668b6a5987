package entities

func card(r Rank, s Suit) Card {
	return Card{Rank: r, Suit: s}
}

func hand(cards ...Card) Hand {
	return Hand(cards)
}

type fixedSource struct {
	n int
}

func (f fixedSource) IntN(n int) int {
	return f.n % n
}

type recordingSource struct {
	calls []int
}

func (r *recordingSource) IntN(n int) int {
	r.calls = append(r.calls, n)
	return 0
}
