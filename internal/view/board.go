package view

import (
	"sync"
	"time"

	"github.com/xela07ax/gardarika-console/internal/domain"
)

// FailurePrefix - начало сообщения аварийного экрана.
const FailurePrefix = "Load failed: "

// View - копия состояния экрана для отрисовки.
type View struct {
	Regions  []Region  `json:"regions,omitempty"`
	Failure  string    `json:"failure,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Board - единственное живое состояние экрана. Меняется только целыми регионами.
type Board struct {
	mu       sync.RWMutex
	regions  map[RegionID]Region
	failure  string
	loadedAt time.Time
}

func NewBoard() *Board {
	return &Board{regions: make(map[RegionID]Region)}
}

// Apply заменяет все регионы снимка. План строится до захвата блокировки,
// читатели видят либо старый снимок целиком, либо новый.
func (b *Board) Apply(s *domain.Snapshot) {
	updates := Plan(s)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range updates {
		b.regions[r.ID] = r
	}
	b.loadedAt = s.LoadedAt
}

// Put заменяет один изолированный регион (карточка игрока).
func (b *Board) Put(r Region) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regions[r.ID] = r
}

// Fail включает аварийный экран. Он постоянный: сбросить его может только перезапуск.
func (b *Board) Fail(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failure = FailurePrefix + message
}

func (b *Board) Failed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failure != ""
}

func (b *Board) Region(id RegionID) (Region, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.regions[id]
	return r, ok
}

// View возвращает копию экрана. Аварийный экран заменяет все регионы.
// Регионы неизменяемы, поэтому копии значений Region достаточно.
func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.failure != "" {
		return View{Failure: b.failure}
	}

	v := View{LoadedAt: b.loadedAt, Regions: make([]Region, 0, len(b.regions))}
	for _, id := range layout {
		if r, ok := b.regions[id]; ok {
			v.Regions = append(v.Regions, r)
		}
	}
	return v
}
