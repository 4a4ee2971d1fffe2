package models

import "time"

// Notification maps to the `notifications` table.
type Notification struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	Type      string    `gorm:"column:type;size:100" json:"type"`
	Title     string    `gorm:"column:title;size:300" json:"title"`
	Message   string    `gorm:"column:message;type:text" json:"message"`
	RelatedID string    `gorm:"column:related_id;size:64" json:"related_id"`
	Read      bool      `gorm:"column:is_read" json:"read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
