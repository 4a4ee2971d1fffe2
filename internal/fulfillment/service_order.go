package fulfillment

import (
	"context"
	"fmt"

	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

// Session duration shown downstream is the delivery window in minutes.
const minutesPerDay = 24 * 60

func (s *Service) fulfillServiceOrder(ctx context.Context, data *ServiceOrderData, res *payment.VerificationResult) (*Result, error) {
	existing, err := s.stores.Orders.FindServiceOrderByUpstreamID(ctx, res.TransactionID)
	if err != nil {
		return nil, &Error{OrderType: models.OrderTypeServiceOrder, Err: err}
	}
	if existing != nil {
		return &Result{
			OrderType: models.OrderTypeServiceOrder,
			OrderID:   existing.ID,
			Duplicate: true,
		}, nil
	}

	order := &models.ServiceOrder{
		ID:              s.newID(),
		UserID:          data.UserID,
		TrainerID:       data.TrainerID,
		ServiceTitle:    data.ServiceTitle,
		PackageType:     data.PackageType,
		Quantity:        data.Quantity,
		DeliveryDays:    data.DeliveryDays,
		SessionDuration: data.DeliveryDays * minutesPerDay,
		BookingType:     "online",
		Requirements:    data.Requirements,
		AdditionalNotes: data.AdditionalNotes,
		UrgentDelivery:  data.UrgentDelivery,
		Amount:          res.Amount,
		Status:          "pending", // awaits trainer acceptance
		PaymentStatus:   "completed",
		PaymentMethod:   "gateway",
		UpstreamTxnID:   res.TransactionID,
	}
	if err := s.stores.Orders.CreateServiceOrder(ctx, order); err != nil {
		return nil, &Error{OrderType: models.OrderTypeServiceOrder, Err: err}
	}

	s.recordTransaction(ctx, order.ID, models.OrderTypeServiceOrder, data.UserID, res,
		fmt.Sprintf("Service order payment: %s", data.ServiceTitle))

	s.notify(ctx, data.UserID, "service_order_placed",
		"Payment Successful",
		fmt.Sprintf("Your payment for %q was received. The trainer will review your order shortly.", data.ServiceTitle),
		order.ID)
	s.notify(ctx, data.TrainerID, "new_service_order",
		"New Service Order",
		fmt.Sprintf("You received a new order for %q.", data.ServiceTitle),
		order.ID)

	return &Result{
		OrderType: models.OrderTypeServiceOrder,
		OrderID:   order.ID,
	}, nil
}
