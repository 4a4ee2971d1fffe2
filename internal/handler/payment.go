package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fitmarket/internal/config"
	"fitmarket/internal/fulfillment"
	"fitmarket/internal/metrics"
	"fitmarket/internal/models"
	"fitmarket/internal/payment"
)

// InvoiceCreator registers new payments with the gateway.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, req *payment.CreateInvoiceRequest) (*payment.CreateInvoiceResult, error)
}

// Fulfiller turns a completed verification into durable records.
type Fulfiller interface {
	Fulfill(ctx context.Context, res *payment.VerificationResult) (*fulfillment.Result, error)
}

// PaymentHandler owns the payment verification endpoint: the single entry
// point for both the gateway webhook and a client's manual confirm call.
type PaymentHandler struct {
	verifier  payment.Verifier
	creator   InvoiceCreator
	fulfiller Fulfiller
	cfg       *config.PaymentConfig
	logger    *zap.Logger
}

func NewPaymentHandler(verifier payment.Verifier, creator InvoiceCreator, fulfiller Fulfiller, cfg *config.PaymentConfig, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		verifier:  verifier,
		creator:   creator,
		fulfiller: fulfiller,
		cfg:       cfg,
		logger:    logger,
	}
}

type verifyResponse struct {
	Success           bool                   `json:"success"`
	Status            string                 `json:"status,omitempty"`
	TransactionID     string                 `json:"transaction_id,omitempty"`
	Amount            int64                  `json:"amount,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	RedirectURL       string                 `json:"redirect_url,omitempty"`
	OrderID           string                 `json:"order_id,omitempty"`
	OrderType         string                 `json:"order_type,omitempty"`
	Duplicate         bool                   `json:"duplicate,omitempty"`
	FulfillmentFailed bool                   `json:"fulfillment_failed,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// Verify handles both callback shapes: the gateway webhook ({order_id, ...})
// and a manual confirmation ({invoice_id}). It verifies the invoice upstream
// and, only for a completed payment, runs fulfillment.
func (h *PaymentHandler) Verify(c echo.Context) error {
	timer := prometheus.NewTimer(metrics.VerifyLatency)
	defer timer.ObserveDuration()

	body := make(map[string]interface{})
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "invalid request body"})
	}

	invoiceID, err := payment.ExtractInvoiceID(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: err.Error()})
	}

	ctx := c.Request().Context()
	result, err := h.verifier.Verify(ctx, invoiceID)
	if err != nil {
		return h.verificationFailure(c, invoiceID, err)
	}

	metrics.VerificationsTotal.WithLabelValues(string(result.Status)).Inc()

	if result.Status != payment.StatusCompleted {
		h.logger.Info("payment not completed, skipping fulfillment",
			zap.String("invoice_id", invoiceID),
			zap.String("status", result.RawStatus))
		return c.JSON(http.StatusOK, verifyResponse{
			Success:       true,
			Status:        result.RawStatus,
			TransactionID: result.TransactionID,
			Amount:        result.Amount,
			Metadata:      result.Metadata,
		})
	}

	fulfilled, err := h.fulfiller.Fulfill(ctx, result)
	if err != nil {
		return h.fulfillmentFailure(c, invoiceID, result, err)
	}

	metrics.FulfillmentsTotal.WithLabelValues(fulfilled.OrderType, "success").Inc()
	if fulfilled.Duplicate {
		h.logger.Info("duplicate delivery for fulfilled invoice",
			zap.String("invoice_id", invoiceID),
			zap.String("order_id", fulfilled.OrderID))
	}

	redirectURL := fulfilled.RedirectURL
	if redirectURL == "" {
		redirectURL = result.RedirectURL
	}

	return c.JSON(http.StatusOK, verifyResponse{
		Success:       true,
		Status:        result.RawStatus,
		TransactionID: result.TransactionID,
		Amount:        result.Amount,
		Metadata:      result.Metadata,
		RedirectURL:   redirectURL,
		OrderID:       fulfilled.OrderID,
		OrderType:     fulfilled.OrderType,
		Duplicate:     fulfilled.Duplicate,
	})
}

// verificationFailure maps verify-call errors onto the 4xx/5xx surface. No
// local records have been touched at this point.
func (h *PaymentHandler) verificationFailure(c echo.Context, invoiceID string, err error) error {
	metrics.VerificationsTotal.WithLabelValues("error").Inc()

	if errors.Is(err, payment.ErrConfiguration) {
		h.logger.Error("payment gateway not configured")
		return c.JSON(http.StatusInternalServerError, verifyResponse{
			Success: false,
			Error:   "payment gateway is not configured",
		})
	}

	var upstream *payment.UpstreamError
	if errors.As(err, &upstream) {
		h.logger.Warn("gateway verification failed",
			zap.String("invoice_id", invoiceID),
			zap.Int("upstream_status", upstream.StatusCode),
			zap.String("message", upstream.Message))
		return c.JSON(http.StatusPaymentRequired, verifyResponse{
			Success: false,
			Error:   upstream.Error(),
		})
	}

	h.logger.Error("verification error", zap.String("invoice_id", invoiceID), zap.Error(err))
	return c.JSON(http.StatusBadGateway, verifyResponse{
		Success: false,
		Error:   "payment verification failed",
	})
}

// fulfillmentFailure reports a confirmed payment whose local records could
// not be created. The verified status is reported truthfully so the payment
// is never mistaken for a failed one; operators reconcile from here.
func (h *PaymentHandler) fulfillmentFailure(c echo.Context, invoiceID string, result *payment.VerificationResult, err error) error {
	var metaErr *fulfillment.MetadataError
	var fErr *fulfillment.Error

	switch {
	case errors.As(err, &metaErr):
		metrics.FulfillmentsTotal.WithLabelValues("unclassified", "invalid_metadata").Inc()
		h.logger.Error("completed payment with unusable metadata",
			zap.String("invoice_id", invoiceID),
			zap.Error(err))
	case errors.As(err, &fErr):
		metrics.FulfillmentsTotal.WithLabelValues(fErr.OrderType, "failed").Inc()
		h.logger.Error("order record creation failed for completed payment",
			zap.String("invoice_id", invoiceID),
			zap.String("order_type", fErr.OrderType),
			zap.Error(err))
	default:
		metrics.FulfillmentsTotal.WithLabelValues("unclassified", "failed").Inc()
		h.logger.Error("fulfillment failed for completed payment",
			zap.String("invoice_id", invoiceID),
			zap.Error(err))
	}

	return c.JSON(http.StatusInternalServerError, verifyResponse{
		Success:           false,
		Status:            result.RawStatus,
		TransactionID:     result.TransactionID,
		Amount:            result.Amount,
		FulfillmentFailed: true,
		Error:             err.Error(),
	})
}

type createRequest struct {
	OrderType   string                 `json:"order_type"`
	Amount      int64                  `json:"amount"`
	Description string                 `json:"description"`
	Payload     map[string]interface{} `json:"payload"`
}

// Create registers a payment with the gateway. The order_type discriminator
// and the variant payload go into the invoice metadata, which the gateway
// echoes back on verification.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "invalid request body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "amount must be positive"})
	}

	var payloadKey string
	switch req.OrderType {
	case models.OrderTypeServiceOrder:
		payloadKey = "service_order_data"
	case models.OrderTypeGymMembership:
		payloadKey = "gym_membership_data"
	case models.OrderTypeTrainerBooking:
		payloadKey = "trainer_booking_data"
	default:
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "unknown order_type"})
	}
	if len(req.Payload) == 0 {
		return c.JSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "payload is required"})
	}

	invoice := &payment.CreateInvoiceRequest{
		Amount:      req.Amount,
		OrderID:     uuid.NewString(),
		Description: req.Description,
		CallbackURL: h.cfg.CallbackURL,
		SuccessURL:  h.cfg.SuccessURL,
		Metadata: map[string]interface{}{
			"order_type": req.OrderType,
			payloadKey:   req.Payload,
		},
	}

	created, err := h.creator.CreateInvoice(c.Request().Context(), invoice)
	if err != nil {
		if errors.Is(err, payment.ErrConfiguration) {
			return c.JSON(http.StatusInternalServerError, verifyResponse{Success: false, Error: "payment gateway is not configured"})
		}
		h.logger.Error("invoice creation failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, verifyResponse{Success: false, Error: "could not create payment"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"invoice_id":  created.InvoiceID,
		"payment_url": created.PaymentURL,
	})
}
