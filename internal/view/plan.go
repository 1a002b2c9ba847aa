package view

import (
	"fmt"

	"github.com/xela07ax/gardarika-console/internal/domain"
)

// Plan превращает снимок в набор независимых обновлений регионов.
// Чистая функция: каждый регион строится только из своей части снимка,
// порядок применения результата не важен.
func Plan(s *domain.Snapshot) []Region {
	return []Region{
		statsRegion(s.Stats),
		heroRegion(s.Stats),
		tradesRegion(s.Trades),
		guildRegion(s.Reports),
		settingsRegion(s.Settings),
		worldRegion(s.World),
		eventsRegion(s.Events),
		clansRegion(s.Clans),
		territoriesRegion(s.Territories),
		questsRegion(s.Quests),
		actionLogsRegion(s.ActionLogs),
		adminLogsRegion(s.AdminLogs),
	}
}

func leader(st domain.DashboardStats) string {
	if st.LeaderName == nil && st.LeaderLevel == nil {
		return Unset
	}
	return fmt.Sprintf("%s (%s)", textPtr(st.LeaderName), plainPtr(st.LeaderLevel))
}

func statsRegion(st domain.DashboardStats) Region {
	return Region{ID: RegionStats, Title: "Dashboard", Rows: []Row{{Fields: []Field{
		{Label: "Online", Value: numPtr(st.Online)},
		{Label: "Economy", Value: numPtr(st.EconomyGold)},
		{Label: "New Players", Value: numPtr(st.NewPlayers)},
		{Label: "Server Load", Value: plainPtr(st.ServerLoad)},
		{Label: "Level Cap", Value: plainPtr(st.LevelCap)},
		{Label: "Leader", Value: leader(st)},
	}}}}
}

func heroRegion(st domain.DashboardStats) Region {
	load := percent(plainPtr(st.ServerLoad))
	return Region{ID: RegionHero, Title: "Status", Rows: []Row{{Fields: []Field{
		{Label: "Online", Value: numPtr(st.Online)},
		{Label: "Load", Value: load},
		{Label: "Leader", Value: textPtr(st.LeaderName)},
	}}}}
}

func tradesRegion(trades []domain.PendingTrade) Region {
	rs := make([]Row, 0, len(trades))
	for _, t := range trades {
		rs = append(rs, Row{Key: key(t.ID), Fields: []Field{
			{Label: "Trade", Value: fmt.Sprintf("%s ➜ %s", text(t.Seller), text(t.Buyer))},
			{Label: "Item", Value: text(t.Item)},
			{Label: "Price", Value: fmt.Sprintf("%s (+%s)", numPtr(t.Price), percent(floatPtr(t.Deviation)))},
			{Label: "Status", Value: text(t.Status)},
		}})
	}
	return Region{ID: RegionTrades, Title: "Trade moderation", Rows: rows(rs)}
}

func guildRegion(reports []domain.GuildReport) Region {
	rs := make([]Row, 0, len(reports))
	for _, r := range reports {
		rs = append(rs, Row{Key: key(r.ID), Fields: []Field{
			{Label: "Player", Value: text(r.Player)},
			{Label: "Reason", Value: text(r.Reason)},
			{Label: "Status", Value: text(r.Status)},
		}})
	}
	return Region{ID: RegionGuild, Title: "Guild book", Rows: rows(rs)}
}

func settingsRegion(st domain.EconomySettings) Region {
	return Region{ID: RegionSettings, Title: "Economy settings", Rows: []Row{{Fields: []Field{
		{Label: "Auction Tax", Value: percent(plainPtr(st.AuctionTax))},
		{Label: "NPC Buy Multiplier", Value: floatPtr(st.NPCBuyMultiplier)},
	}}}}
}

func worldRegion(w domain.WorldState) Region {
	return Region{ID: RegionWorld, Title: "World", Rows: []Row{{Fields: []Field{
		{Label: "Season", Value: text(w.Season)},
		{Label: "Time", Value: text(w.TimeOfDay)},
		{Label: "Weather", Value: text(w.Weather)},
		{Label: "Time Mode", Value: text(w.TimeMode)},
	}}}}
}

func eventsRegion(events []domain.WorldEvent) Region {
	rs := make([]Row, 0, len(events))
	for _, e := range events {
		rs = append(rs, Row{Key: key(e.ID), Fields: []Field{
			{Label: "Event", Value: text(e.Name)},
			{Label: "Status", Value: text(e.Status)},
		}})
	}
	return Region{ID: RegionEvents, Title: "Events", Rows: rows(rs)}
}

func clansRegion(clans []domain.ClanSummary) Region {
	rs := make([]Row, 0, len(clans))
	for _, c := range clans {
		rs = append(rs, Row{Key: key(c.ID), Fields: []Field{
			{Label: "Clan", Value: text(c.Name)},
			{Label: "Leader", Value: text(c.Leader)},
			{Label: "Treasury", Value: numPtr(c.Treasury)},
			{Label: "Buildings", Value: plainPtr(c.BuildingLevel)},
		}})
	}
	return Region{ID: RegionClans, Title: "Clans", Rows: rows(rs)}
}

func territoriesRegion(territories []domain.TerritorySummary) Region {
	rs := make([]Row, 0, len(territories))
	for _, t := range territories {
		rs = append(rs, Row{Key: key(t.ID), Fields: []Field{
			{Label: "Mine", Value: text(t.Mine)},
			{Label: "Owner", Value: text(t.Owner)},
		}})
	}
	return Region{ID: RegionTerritories, Title: "Territories", Rows: rows(rs)}
}

func questsRegion(quests []domain.QuestStatus) Region {
	rs := make([]Row, 0, len(quests))
	for _, q := range quests {
		rs = append(rs, Row{Key: key(q.ID), Fields: []Field{
			{Label: "Quest", Value: text(q.Name)},
			{Label: "Status", Value: text(q.Status)},
		}})
	}
	return Region{ID: RegionQuests, Title: "Legendary quests", Rows: rows(rs)}
}

func actionLogsRegion(entries []domain.ActionLog) Region {
	rs := make([]Row, 0, len(entries))
	for _, e := range entries {
		category := e.Category
		if category == "" {
			category = "Action log"
		}
		rs = append(rs, Row{Key: key(e.ID), Fields: []Field{
			{Label: "Event", Value: text(e.Description)},
			{Label: "Category", Value: category},
		}})
	}
	return Region{ID: RegionActionLogs, Title: "Action log", Rows: rows(rs)}
}

func adminLogsRegion(entries []domain.AdminLog) Region {
	rs := make([]Row, 0, len(entries))
	for _, e := range entries {
		rs = append(rs, Row{Key: key(e.ID), Fields: []Field{
			{Label: "Action", Value: text(e.Action)},
			{Label: "Admin", Value: text(e.Admin)},
			{Label: "At", Value: timestamp(e.CreatedAt)},
		}})
	}
	return Region{ID: RegionAdminLogs, Title: "Admin log", Rows: rows(rs)}
}

// PlayerRegion - карточка найденного игрока.
func PlayerRegion(p *domain.PlayerProfile) Region {
	inventory := make([]Row, 0, len(p.Inventory))
	for _, item := range p.Inventory {
		inventory = append(inventory, Row{Fields: []Field{{Label: "Item", Value: text(item)}}})
	}

	profile := Row{Key: key(p.PlayerID), Fields: []Field{
		{Label: "Nickname", Value: text(p.Nickname)},
		{Label: "Level", Value: plainPtr(p.Level)},
		{Label: "Gold", Value: numPtr(p.Gold)},
		{Label: "Experience", Value: numPtr(p.Experience)},
		{Label: "PK", Value: flag(p.IsPK)},
		{Label: "VIP", Value: flag(p.IsVIP)},
		{Label: "Jail", Value: flag(p.InJail)},
	}}

	return Region{
		ID:    RegionPlayer,
		Title: fmt.Sprintf("Player %s (#%d)", text(p.Nickname), p.PlayerID),
		Rows:  append([]Row{profile}, rows(inventory)...),
	}
}

// PlayerMessage - сообщение вместо карточки (например, ошибка поиска).
func PlayerMessage(msg string) Region {
	return Region{ID: RegionPlayer, Title: "Player", Rows: []Row{{Fields: []Field{{Value: text(msg)}}}}}
}
