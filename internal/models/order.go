package models

import "time"

// Order type tags used in transactions, notifications and redirect URLs.
const (
	OrderTypeServiceOrder   = "service_order"
	OrderTypeGymMembership  = "gym_membership"
	OrderTypeTrainerBooking = "trainer_booking"
)

// ServiceOrder maps to the `service_orders` table. Created with status
// "pending": the trainer still has to accept the order.
type ServiceOrder struct {
	ID              string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	UserID          string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	TrainerID       string    `gorm:"column:trainer_id;size:64;index" json:"trainer_id"`
	ServiceTitle    string    `gorm:"column:service_title;size:300" json:"service_title"`
	PackageType     string    `gorm:"column:package_type;size:50" json:"package_type"`
	Quantity        int       `gorm:"column:quantity" json:"quantity"`
	DeliveryDays    int       `gorm:"column:delivery_days" json:"delivery_days"`
	SessionDuration int       `gorm:"column:session_duration" json:"session_duration"` // minutes
	BookingType     string    `gorm:"column:booking_type;size:50" json:"booking_type"`
	Requirements    string    `gorm:"column:requirements;type:text" json:"requirements"`
	AdditionalNotes string    `gorm:"column:additional_notes;type:text" json:"additional_notes"`
	UrgentDelivery  bool      `gorm:"column:urgent_delivery" json:"urgent_delivery"`
	Amount          int64     `gorm:"column:amount" json:"amount"`
	Status          string    `gorm:"column:status;size:50" json:"status"`
	PaymentStatus   string    `gorm:"column:payment_status;size:50" json:"payment_status"`
	PaymentMethod   string    `gorm:"column:payment_method;size:100" json:"payment_method"`
	UpstreamTxnID   string    `gorm:"column:upstream_txn_id;size:200;uniqueIndex" json:"upstream_txn_id"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ServiceOrder) TableName() string {
	return "service_orders"
}

// GymMembership maps to the `gym_memberships` table. Active immediately on
// payment; there is no acceptance step for memberships.
type GymMembership struct {
	ID            string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	UserID        string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	GymID         string    `gorm:"column:gym_id;size:64;index" json:"gym_id"`
	GymName       string    `gorm:"column:gym_name;size:300" json:"gym_name"`
	PlanID        string    `gorm:"column:plan_id;size:64" json:"plan_id"`
	DurationDays  int       `gorm:"column:duration_days" json:"duration_days"`
	StartDate     time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate       time.Time `gorm:"column:end_date" json:"end_date"`
	Amount        int64     `gorm:"column:amount" json:"amount"`
	Status        string    `gorm:"column:status;size:50" json:"status"`
	PaymentStatus string    `gorm:"column:payment_status;size:50" json:"payment_status"`
	PaymentMethod string    `gorm:"column:payment_method;size:100" json:"payment_method"`
	UpstreamTxnID string    `gorm:"column:upstream_txn_id;size:200;uniqueIndex" json:"upstream_txn_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (GymMembership) TableName() string {
	return "gym_memberships"
}

// TrainerBooking maps to the `trainer_bookings` table. Confirmed immediately
// on payment.
type TrainerBooking struct {
	ID            string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	UserID        string    `gorm:"column:user_id;size:64;index" json:"user_id"`
	TrainerID     string    `gorm:"column:trainer_id;size:64;index" json:"trainer_id"`
	TrainerName   string    `gorm:"column:trainer_name;size:300" json:"trainer_name"`
	Title         string    `gorm:"column:title;size:300" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	ScheduledDate string    `gorm:"column:scheduled_date;size:50" json:"scheduled_date"`
	ScheduledTime string    `gorm:"column:scheduled_time;size:50" json:"scheduled_time"`
	Mode          string    `gorm:"column:mode;size:50" json:"mode"`
	SessionCount  int       `gorm:"column:session_count" json:"session_count"`
	PackageType   string    `gorm:"column:package_type;size:50" json:"package_type"`
	Amount        int64     `gorm:"column:amount" json:"amount"`
	Status        string    `gorm:"column:status;size:50" json:"status"`
	PaymentStatus string    `gorm:"column:payment_status;size:50" json:"payment_status"`
	PaymentMethod string    `gorm:"column:payment_method;size:100" json:"payment_method"`
	UpstreamTxnID string    `gorm:"column:upstream_txn_id;size:200;uniqueIndex" json:"upstream_txn_id"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TrainerBooking) TableName() string {
	return "trainer_bookings"
}
