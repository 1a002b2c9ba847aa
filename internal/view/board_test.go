package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/gardarika-console/internal/domain"
)

func TestBoardApplyReplacesWholeSnapshot(t *testing.T) {
	b := NewBoard()
	b.Apply(&domain.Snapshot{World: domain.WorldState{Season: "summer"}, LoadedAt: time.Now()})
	b.Apply(&domain.Snapshot{World: domain.WorldState{Season: "winter"}, LoadedAt: time.Now()})

	r, ok := b.Region(RegionWorld)
	require.True(t, ok)
	assert.Equal(t, "winter", r.Rows[0].Fields[0].Value)

	v := b.View()
	assert.Empty(t, v.Failure)
	assert.Len(t, v.Regions, 12)
	assert.Equal(t, RegionHero, v.Regions[0].ID)
}

func TestBoardPutTouchesOnlyPlayerCard(t *testing.T) {
	b := NewBoard()
	b.Apply(&domain.Snapshot{Clans: []domain.ClanSummary{{ID: 2, Name: "Druzhina"}}})
	before := b.View()

	b.Put(PlayerMessage("player not found"))
	after := b.View()

	require.Len(t, after.Regions, len(before.Regions)+1)
	card, ok := b.Region(RegionPlayer)
	require.True(t, ok)
	assert.Equal(t, "player not found", card.Rows[0].Fields[0].Value)

	for _, r := range before.Regions {
		got, ok := b.Region(r.ID)
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
}

func TestBoardFailureReplacesView(t *testing.T) {
	b := NewBoard()
	b.Apply(&domain.Snapshot{})
	b.Fail("unauthorized")

	v := b.View()
	assert.True(t, b.Failed())
	assert.Equal(t, "Load failed: unauthorized", v.Failure)
	assert.Empty(t, v.Regions)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, v))
	assert.Equal(t, "!! Load failed: unauthorized\n", buf.String())
}

func TestRenderPrintsRegions(t *testing.T) {
	b := NewBoard()
	b.Apply(&domain.Snapshot{Trades: []domain.PendingTrade{{ID: 7, Seller: "A", Buyer: "B"}}})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, b.View()))

	out := buf.String()
	assert.Contains(t, out, "== Trade moderation [trade-list] ==")
	assert.Contains(t, out, "#7  Trade: A ➜ B")
	assert.Contains(t, out, NoEntries)
}
