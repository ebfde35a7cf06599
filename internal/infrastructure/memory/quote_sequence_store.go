// Package memory implementaciones en memoria para despliegues de un solo proceso y tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.QuoteSequenceStore = (*QuoteSequenceStore)(nil)

// QuoteSequenceStore contador por período protegido por mutex. Solo garantiza unicidad
// dentro del proceso.
type QuoteSequenceStore struct {
	mu    sync.Mutex
	floor repository.QuoteSequenceFloor
	last  map[quote.Period]int64
}

// NewQuoteSequenceStore construye el store. Con floor distinto de nil, el primer Next de
// cada período arranca desde la mayor secuencia ya persistida, así un reinicio del
// proceso no vuelve a emitir números existentes.
func NewQuoteSequenceStore(floor repository.QuoteSequenceFloor) *QuoteSequenceStore {
	return &QuoteSequenceStore{floor: floor, last: make(map[quote.Period]int64)}
}

// Next incrementa y devuelve el contador del período.
func (s *QuoteSequenceStore) Next(ctx context.Context, p quote.Period) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.last[p]; !ok && s.floor != nil {
		seeded, err := s.floor.MaxSequence(ctx, p)
		if err != nil {
			return 0, fmt.Errorf("sembrar secuencia %s: %w", p, err)
		}
		s.last[p] = seeded
	}
	s.last[p]++
	return s.last[p], nil
}
