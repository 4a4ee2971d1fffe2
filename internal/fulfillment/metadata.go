package fulfillment

import (
	"encoding/json"
	"fmt"
	"strings"

	"fitmarket/internal/models"
)

// Metadata keys understood by the classifier. order_type is the explicit
// discriminator stamped at payment-creation time; the *_data keys are the
// legacy key-presence contract still honored for payments created elsewhere.
const (
	keyOrderType      = "order_type"
	keyServiceOrder   = "service_order_data"
	keyGymMembership  = "gym_membership_data"
	keyTrainerBooking = "trainer_booking_data"
)

// ServiceOrderData is the payload for a trainer service order.
type ServiceOrderData struct {
	TrainerID       string `json:"trainerId"`
	ServiceTitle    string `json:"serviceTitle"`
	PackageType     string `json:"packageType"`
	Quantity        int    `json:"quantity"`
	DeliveryDays    int    `json:"deliveryDays"`
	Requirements    string `json:"requirements"`
	AdditionalNotes string `json:"additionalNotes"`
	UrgentDelivery  bool   `json:"urgentDelivery"`
	UserID          string `json:"userId"`
}

// GymMembershipData is the payload for a gym membership purchase.
type GymMembershipData struct {
	GymID        string `json:"gymId"`
	PlanID       string `json:"planId"`
	DurationDays int    `json:"durationDays"`
	GymName      string `json:"gymName"`
	UserID       string `json:"userId"`
}

// TrainerBookingData is the payload for a direct trainer booking.
type TrainerBookingData struct {
	TrainerID     string `json:"trainerId"`
	TrainerName   string `json:"trainerName"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Mode          string `json:"mode"`
	SessionCount  int    `json:"sessionCount"`
	PackageType   string `json:"packageType"`
	UserID        string `json:"userId"`
}

// OrderMetadata is the decoded tagged union: exactly one payload is set,
// matching Type.
type OrderMetadata struct {
	Type           string
	ServiceOrder   *ServiceOrderData
	GymMembership  *GymMembershipData
	TrainerBooking *TrainerBookingData
}

// MetadataError means the metadata bag did not decode into any known order
// variant. The payment itself is real; only fulfillment is blocked.
type MetadataError struct {
	Reason string
	Err    error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid order metadata: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid order metadata: %s", e.Reason)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// Classify determines which order variant the metadata bag represents. The
// explicit order_type discriminator wins; otherwise the service-order key
// takes priority over the gym key, and everything else is a trainer booking
// decoded from its own key or from the bag itself.
func Classify(metadata map[string]interface{}) (*OrderMetadata, error) {
	if len(metadata) == 0 {
		return nil, &MetadataError{Reason: "empty metadata"}
	}

	if orderType, _ := metadata[keyOrderType].(string); orderType != "" {
		switch orderType {
		case models.OrderTypeServiceOrder:
			return classifyServiceOrder(payloadOrBag(metadata, keyServiceOrder))
		case models.OrderTypeGymMembership:
			return classifyGymMembership(payloadOrBag(metadata, keyGymMembership))
		case models.OrderTypeTrainerBooking:
			return classifyTrainerBooking(payloadOrBag(metadata, keyTrainerBooking))
		default:
			return nil, &MetadataError{Reason: "unknown order_type " + orderType}
		}
	}

	if raw, ok := metadata[keyServiceOrder]; ok {
		return classifyServiceOrder(raw)
	}
	if raw, ok := metadata[keyGymMembership]; ok {
		return classifyGymMembership(raw)
	}
	return classifyTrainerBooking(payloadOrBag(metadata, keyTrainerBooking))
}

func classifyServiceOrder(raw interface{}) (*OrderMetadata, error) {
	var data ServiceOrderData
	if err := decodePayload(raw, &data); err != nil {
		return nil, &MetadataError{Reason: "malformed service order payload", Err: err}
	}
	if data.UserID == "" {
		return nil, &MetadataError{Reason: "service order payload missing userId"}
	}
	return &OrderMetadata{Type: models.OrderTypeServiceOrder, ServiceOrder: &data}, nil
}

func classifyGymMembership(raw interface{}) (*OrderMetadata, error) {
	var data GymMembershipData
	if err := decodePayload(raw, &data); err != nil {
		return nil, &MetadataError{Reason: "malformed gym membership payload", Err: err}
	}
	if data.UserID == "" {
		return nil, &MetadataError{Reason: "gym membership payload missing userId"}
	}
	return &OrderMetadata{Type: models.OrderTypeGymMembership, GymMembership: &data}, nil
}

func classifyTrainerBooking(raw interface{}) (*OrderMetadata, error) {
	var data TrainerBookingData
	if err := decodePayload(raw, &data); err != nil {
		return nil, &MetadataError{Reason: "malformed trainer booking payload", Err: err}
	}
	if data.UserID == "" {
		return nil, &MetadataError{Reason: "no order payload recognized"}
	}
	return &OrderMetadata{Type: models.OrderTypeTrainerBooking, TrainerBooking: &data}, nil
}

// payloadOrBag returns the variant's own key when present, else the whole bag
// (trainer bookings historically carried their fields at the top level).
func payloadOrBag(metadata map[string]interface{}, key string) interface{} {
	if raw, ok := metadata[key]; ok {
		return raw
	}
	return metadata
}

// decodePayload decodes a payload that arrives either as a JSON string (the
// gateway echoes metadata values as strings) or as a nested object. Snake_case
// field names are accepted alongside camelCase.
func decodePayload(raw interface{}, dst interface{}) error {
	var bag map[string]interface{}

	switch t := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(t), &bag); err != nil {
			return err
		}
	case map[string]interface{}:
		bag = t
	case nil:
		return fmt.Errorf("payload is empty")
	default:
		return fmt.Errorf("payload has unsupported type %T", raw)
	}

	normalized := make(map[string]interface{}, len(bag))
	for k, v := range bag {
		normalized[snakeToCamel(k)] = v
	}

	encoded, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dst)
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	out := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out += strings.ToUpper(p[:1]) + p[1:]
	}
	return out
}
