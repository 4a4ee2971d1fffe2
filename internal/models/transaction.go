package models

import "time"

// Transaction maps to the `transactions` table: the platform ledger entry for
// a completed payment. Commission and NetAmount always sum to Amount.
type Transaction struct {
	ID            string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	OrderID       string    `gorm:"column:order_id;size:64;index" json:"order_id"`
	OrderType     string    `gorm:"column:order_type;size:50" json:"order_type"`
	UserID        string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Amount        int64     `gorm:"column:amount" json:"amount"`
	Commission    int64     `gorm:"column:commission" json:"commission"`
	NetAmount     int64     `gorm:"column:net_amount" json:"net_amount"`
	Status        string    `gorm:"column:status;size:50" json:"status"`
	UpstreamTxnID string    `gorm:"column:upstream_txn_id;size:200;uniqueIndex" json:"upstream_txn_id"`
	Description   string    `gorm:"column:description;size:500" json:"description"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
