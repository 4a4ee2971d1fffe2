package fulfillment

import (
	"errors"
	"testing"

	"fitmarket/internal/models"
)

func TestClassifyServiceOrder(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
	}{
		{
			name: "payload as JSON string",
			metadata: map[string]interface{}{
				"service_order_data": `{"trainerId":"t1","serviceTitle":"Meal Plan","quantity":1,"deliveryDays":7,"userId":"u1"}`,
			},
		},
		{
			name: "payload as nested object",
			metadata: map[string]interface{}{
				"service_order_data": map[string]interface{}{
					"trainerId":    "t1",
					"serviceTitle": "Meal Plan",
					"quantity":     float64(1),
					"deliveryDays": float64(7),
					"userId":       "u1",
				},
			},
		},
		{
			// The service-order key always wins, whatever else is present.
			name: "other keys present alongside",
			metadata: map[string]interface{}{
				"service_order_data":  `{"trainerId":"t1","quantity":1,"deliveryDays":7,"userId":"u1"}`,
				"gym_membership_data": `{"gymId":"g1","userId":"u1"}`,
				"unrelated":           "value",
			},
		},
		{
			name: "explicit discriminator",
			metadata: map[string]interface{}{
				"order_type":         "service_order",
				"service_order_data": `{"trainerId":"t1","quantity":1,"deliveryDays":7,"userId":"u1"}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Classify(tt.metadata)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if meta.Type != models.OrderTypeServiceOrder {
				t.Fatalf("Type = %q; want %q", meta.Type, models.OrderTypeServiceOrder)
			}
			if meta.ServiceOrder == nil || meta.ServiceOrder.TrainerID != "t1" {
				t.Errorf("ServiceOrder payload not decoded: %+v", meta.ServiceOrder)
			}
		})
	}
}

func TestClassifyGymMembership(t *testing.T) {
	meta, err := Classify(map[string]interface{}{
		"gym_membership_data": `{"gym_id":"g1","plan_id":"p1","duration_days":90,"gym_name":"Iron Works","userId":"u2"}`,
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if meta.Type != models.OrderTypeGymMembership {
		t.Fatalf("Type = %q; want %q", meta.Type, models.OrderTypeGymMembership)
	}
	data := meta.GymMembership
	if data.GymID != "g1" || data.PlanID != "p1" || data.GymName != "Iron Works" {
		t.Errorf("snake_case fields not decoded: %+v", data)
	}
	if data.DurationDays != 90 {
		t.Errorf("DurationDays = %d; want 90", data.DurationDays)
	}
}

func TestClassifyTrainerBookingFallback(t *testing.T) {
	// No variant key at all: booking fields live at the top of the bag.
	meta, err := Classify(map[string]interface{}{
		"trainerId":     "t5",
		"trainerName":   "Sam",
		"scheduledDate": "2024-06-01",
		"scheduledTime": "10:00",
		"sessionCount":  float64(3),
		"userId":        "u3",
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if meta.Type != models.OrderTypeTrainerBooking {
		t.Fatalf("Type = %q; want %q", meta.Type, models.OrderTypeTrainerBooking)
	}
	if meta.TrainerBooking.TrainerID != "t5" || meta.TrainerBooking.SessionCount != 3 {
		t.Errorf("booking payload not decoded: %+v", meta.TrainerBooking)
	}
}

func TestClassifyTrainerBookingOwnKey(t *testing.T) {
	meta, err := Classify(map[string]interface{}{
		"order_type":           "trainer_booking",
		"trainer_booking_data": `{"trainerId":"t7","userId":"u7"}`,
	})
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if meta.TrainerBooking.TrainerID != "t7" {
		t.Errorf("TrainerID = %q; want t7", meta.TrainerBooking.TrainerID)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
	}{
		{"empty metadata", map[string]interface{}{}},
		{"nil metadata", nil},
		{
			"malformed embedded json",
			map[string]interface{}{"service_order_data": `{"trainerId":`},
		},
		{
			"no recognizable payload",
			map[string]interface{}{"something": "else"},
		},
		{
			"unknown explicit order_type",
			map[string]interface{}{"order_type": "mystery", "userId": "u1"},
		},
		{
			"payload missing userId",
			map[string]interface{}{"gym_membership_data": `{"gymId":"g1"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.metadata)
			var metaErr *MetadataError
			if !errors.As(err, &metaErr) {
				t.Fatalf("Classify() error = %v; want *MetadataError", err)
			}
		})
	}
}

func TestSnakeToCamel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"duration_days", "durationDays"},
		{"gym_id", "gymId"},
		{"trainerId", "trainerId"},
		{"userId", "userId"},
		{"a_b_c", "aBC"},
	}
	for _, tt := range tests {
		if got := snakeToCamel(tt.in); got != tt.want {
			t.Errorf("snakeToCamel(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
