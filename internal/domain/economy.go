package domain

import "fmt"

// PendingTrade - сделка в очереди модерации.
type PendingTrade struct {
	ID        int64    `json:"id"`
	Seller    string   `json:"seller"`
	Buyer     string   `json:"buyer"`
	Item      string   `json:"item"`
	Price     *int64   `json:"price"`
	Deviation *float64 `json:"deviation"` // отклонение от рыночной цены, %
	Status    string   `json:"status"`
}

// GuildReport - жалоба в книгу гильдии.
type GuildReport struct {
	ID     int64  `json:"id"`
	Player string `json:"player"`
	Reason string `json:"reason"`
	Status string `json:"status"`
}

// EconomySettings - глобальные параметры экономики в том виде, как их отдает сервер.
type EconomySettings struct {
	AuctionTax       *int64   `json:"auction_tax"`
	NPCBuyMultiplier *float64 `json:"npc_buy_multiplier"`
}

// EconomyUpdate - тело правки параметров экономики.
type EconomyUpdate struct {
	AuctionTax       int64   `json:"auction_tax"`
	NPCBuyMultiplier float64 `json:"npc_buy_multiplier"`
}

// TradeDecision - решение модератора по сделке.
type TradeDecision string

const (
	TradeApproved  TradeDecision = "approved"
	TradeCancelled TradeDecision = "cancelled"
	TradeBan       TradeDecision = "ban" // бан за RMT
)

func (d TradeDecision) Validate() error {
	switch d {
	case TradeApproved, TradeCancelled, TradeBan:
		return nil
	}
	return fmt.Errorf("unknown trade decision %q", string(d))
}

// ReportDecision - решение модератора по жалобе.
type ReportDecision string

const (
	ReportResolved ReportDecision = "resolved" // удалить из книги
	ReportBanned   ReportDecision = "banned"   // добавить мошенника
)

func (d ReportDecision) Validate() error {
	switch d {
	case ReportResolved, ReportBanned:
		return nil
	}
	return fmt.Errorf("unknown report decision %q", string(d))
}
