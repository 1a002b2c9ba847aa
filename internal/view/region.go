package view

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// Unset - явная отметка пустого значения (null, отсутствующее поле, пустая строка).
	Unset = "—"
	// NoEntries - строка пустой коллекции.
	NoEntries = "no entries"
)

type RegionID string

const (
	RegionStats       RegionID = "dashboard-stats"
	RegionHero        RegionID = "hero-status"
	RegionTrades      RegionID = "trade-list"
	RegionGuild       RegionID = "guild-list"
	RegionSettings    RegionID = "economy-settings"
	RegionWorld       RegionID = "world-state"
	RegionEvents      RegionID = "event-list"
	RegionClans       RegionID = "clan-list"
	RegionTerritories RegionID = "territory-list"
	RegionQuests      RegionID = "quest-list"
	RegionActionLogs  RegionID = "action-logs"
	RegionAdminLogs   RegionID = "admin-logs"
	RegionPlayer      RegionID = "player-profile"
)

// layout - порядок вывода регионов.
var layout = []RegionID{
	RegionHero, RegionStats, RegionTrades, RegionGuild, RegionSettings,
	RegionWorld, RegionEvents, RegionPlayer, RegionClans, RegionTerritories,
	RegionQuests, RegionActionLogs, RegionAdminLogs,
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Row - одна строка региона. Key - ID сущности, по нему оператор адресует действия.
type Row struct {
	Key    string  `json:"key,omitempty"`
	Fields []Field `json:"fields"`
}

// Region - содержимое одной области экрана. После создания не меняется,
// обновление региона - всегда полная замена.
type Region struct {
	ID    RegionID `json:"id"`
	Title string   `json:"title"`
	Rows  []Row    `json:"rows"`
}

func text(s string) string {
	if s == "" {
		return Unset
	}
	return s
}

func textPtr(s *string) string {
	if s == nil {
		return Unset
	}
	return text(*s)
}

func num(n int64) string {
	return humanize.Comma(n)
}

func numPtr(n *int64) string {
	if n == nil {
		return Unset
	}
	return num(*n)
}

// plainPtr - число без разделителей разрядов (уровни, проценты).
func plainPtr(n *int64) string {
	if n == nil {
		return Unset
	}
	return strconv.FormatInt(*n, 10)
}

func floatPtr(f *float64) string {
	if f == nil {
		return Unset
	}
	return humanize.Ftoa(*f)
}

// percent дописывает знак процента к известному значению.
func percent(s string) string {
	if s == Unset {
		return s
	}
	return s + "%"
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// rows нормализует пустую коллекцию в явную строку NoEntries.
func rows(rs []Row) []Row {
	if len(rs) == 0 {
		return []Row{{Fields: []Field{{Value: NoEntries}}}}
	}
	return rs
}

// adminLogLayouts - форматы created_at, которые отдает сервер.
var adminLogLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func timestamp(raw string) string {
	if raw == "" {
		return Unset
	}
	for _, l := range adminLogLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t.Format("02.01.2006, 15:04:05")
		}
	}
	return raw
}
