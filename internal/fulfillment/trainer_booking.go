package fulfillment

import (
	"context"
	"fmt"

	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

func (s *Service) fulfillTrainerBooking(ctx context.Context, data *TrainerBookingData, res *payment.VerificationResult) (*Result, error) {
	existing, err := s.stores.Orders.FindTrainerBookingByUpstreamID(ctx, res.TransactionID)
	if err != nil {
		return nil, &Error{OrderType: models.OrderTypeTrainerBooking, Err: err}
	}
	if existing != nil {
		return &Result{
			OrderType: models.OrderTypeTrainerBooking,
			OrderID:   existing.ID,
			Duplicate: true,
		}, nil
	}

	packageType := data.PackageType
	if packageType == "" {
		packageType = "basic"
	}

	booking := &models.TrainerBooking{
		ID:            s.newID(),
		UserID:        data.UserID,
		TrainerID:     data.TrainerID,
		TrainerName:   data.TrainerName,
		Title:         data.Title,
		Description:   data.Description,
		ScheduledDate: data.ScheduledDate,
		ScheduledTime: data.ScheduledTime,
		Mode:          data.Mode,
		SessionCount:  data.SessionCount,
		PackageType:   packageType,
		Amount:        res.Amount,
		Status:        "confirmed",
		PaymentStatus: "completed",
		PaymentMethod: "gateway",
		UpstreamTxnID: res.TransactionID,
	}
	if err := s.stores.Orders.CreateTrainerBooking(ctx, booking); err != nil {
		return nil, &Error{OrderType: models.OrderTypeTrainerBooking, Err: err}
	}

	s.recordTransaction(ctx, booking.ID, models.OrderTypeTrainerBooking, data.UserID, res,
		fmt.Sprintf("Trainer booking payment: %s", data.TrainerName))

	s.notify(ctx, data.UserID, "booking_confirmed",
		"Booking Confirmed",
		fmt.Sprintf("Your session with %s on %s %s is confirmed.", data.TrainerName, data.ScheduledDate, data.ScheduledTime),
		booking.ID)
	s.notify(ctx, data.TrainerID, "new_booking",
		"New Booking",
		fmt.Sprintf("You have a new booking on %s %s.", data.ScheduledDate, data.ScheduledTime),
		booking.ID)

	return &Result{
		OrderType: models.OrderTypeTrainerBooking,
		OrderID:   booking.ID,
	}, nil
}
