package chess

import (
	"sync"

	"github.com/corentings/chess/v2/opening"
)

var ecoBook = sync.OnceValue(opening.NewBookECO)

// Opening names the deepest ECO opening matching the moves played so far.
func (b *Board) Opening() (code, title string, ok bool) {
	if b == nil || len(b.moves) == 0 {
		return "", "", false
	}
	book := ecoBook()
	if book == nil {
		return "", "", false
	}
	o := book.Find(b.game.Moves())
	if o == nil {
		return "", "", false
	}
	return o.Code(), o.Title(), true
}
