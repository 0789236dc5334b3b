package pvpchess

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/Cheese-chessroom-bot/pkg/chessdto"
)

// MemoryStore keeps records for the life of the process. Used when neither
// Redis nor a database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*chessdto.ChessGame
	max   int
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = 100
	}
	return &MemoryStore{games: make(map[string]*chessdto.ChessGame), max: max}
}

func (m *MemoryStore) SaveResult(ctx context.Context, g *chessdto.ChessGame) error {
	if err := validate(g); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = clone(g)
	if len(m.games) > m.max {
		oldest := m.sortedLocked()[len(m.games)-1]
		delete(m.games, oldest.ID)
	}
	return nil
}

func (m *MemoryStore) Recent(ctx context.Context, limit int) ([]*chessdto.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.sortedLocked()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*chessdto.ChessGame, 0, len(items))
	for _, g := range items {
		out = append(out, clone(g))
	}
	return out, nil
}

// sortedLocked orders by EndedAt desc, then ID desc.
func (m *MemoryStore) sortedLocked() []*chessdto.ChessGame {
	items := make([]*chessdto.ChessGame, 0, len(m.games))
	for _, g := range m.games {
		items = append(items, g)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items
}
