package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

const defaultMembershipDays = 30

func (s *Service) fulfillGymMembership(ctx context.Context, data *GymMembershipData, res *payment.VerificationResult) (*Result, error) {
	existing, err := s.stores.Orders.FindGymMembershipByUpstreamID(ctx, res.TransactionID)
	if err != nil {
		return nil, &Error{OrderType: models.OrderTypeGymMembership, Err: err}
	}
	if existing != nil {
		return &Result{
			OrderType:   models.OrderTypeGymMembership,
			OrderID:     existing.ID,
			RedirectURL: s.membershipRedirect(existing.ID),
			Duplicate:   true,
		}, nil
	}

	days := data.DurationDays
	if days <= 0 {
		days = defaultMembershipDays
	}
	start := s.now()

	membership := &models.GymMembership{
		ID:            s.newID(),
		UserID:        data.UserID,
		GymID:         data.GymID,
		GymName:       data.GymName,
		PlanID:        data.PlanID,
		DurationDays:  days,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days),
		Amount:        res.Amount,
		Status:        "active", // no acceptance step for memberships
		PaymentStatus: "completed",
		PaymentMethod: "gateway",
		UpstreamTxnID: res.TransactionID,
	}
	if err := s.stores.Orders.CreateGymMembership(ctx, membership); err != nil {
		return nil, &Error{OrderType: models.OrderTypeGymMembership, Err: err}
	}

	s.recordTransaction(ctx, membership.ID, models.OrderTypeGymMembership, data.UserID, res,
		fmt.Sprintf("Gym membership payment: %s", data.GymName))

	s.notify(ctx, data.UserID, "gym_membership_activated",
		"Membership Activated",
		fmt.Sprintf("Your membership at %s is active until %s.", data.GymName, membership.EndDate.Format("2006-01-02")),
		membership.ID)

	if err := s.stores.Gyms.IncrementMemberCount(ctx, data.GymID); err != nil {
		s.logger.Error("gym member count increment failed, queueing for retry",
			zap.String("gym_id", data.GymID),
			zap.Error(err))
		payload, _ := json.Marshal(map[string]string{"gym_id": data.GymID})
		if qErr := s.stores.Outbox.Enqueue(ctx, models.OutboxKindGymIncrement, string(payload)); qErr != nil {
			s.logger.Error("failed to enqueue gym counter event", zap.Error(qErr))
		}
	}

	return &Result{
		OrderType:   models.OrderTypeGymMembership,
		OrderID:     membership.ID,
		RedirectURL: s.membershipRedirect(membership.ID),
	}, nil
}

// membershipRedirect points the payer to the success page with the new
// membership id and order-type tag.
func (s *Service) membershipRedirect(membershipID string) string {
	if s.successURL == "" {
		return ""
	}
	return fmt.Sprintf("%s?membership_id=%s&order_type=%s", s.successURL, membershipID, models.OrderTypeGymMembership)
}
