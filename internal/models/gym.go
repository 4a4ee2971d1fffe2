package models

import "time"

// Gym maps to the `gyms` table. Only the fields this service reads and writes;
// the full gym profile is owned by the marketplace CRUD surface.
type Gym struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Name        string    `gorm:"column:name;size:300" json:"name"`
	OwnerID     string    `gorm:"column:owner_id;size:64" json:"owner_id"`
	MemberCount int       `gorm:"column:member_count;default:0" json:"member_count"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Gym) TableName() string {
	return "gyms"
}
