package controller

import (
	"github.com/gofiber/fiber/v2"

	"subpay_backend/internal/service"
	"subpay_backend/pkg/apperror"
	"subpay_backend/pkg/payment"
	"subpay_backend/pkg/utils/jwt"
)

type CheckoutInput struct {
	PlanID        uint   `json:"plan_id" validate:"required"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
}

// SubscriptionController translates HTTP to the checkout and webhook
// services; all business rules live behind it.
type SubscriptionController struct {
	catalog   service.PlanCatalog
	checkout  *service.CheckoutService
	webhooks  *service.WebhookService
	clientKey string
}

func NewSubscriptionController(catalog service.PlanCatalog, checkout *service.CheckoutService, webhooks *service.WebhookService, clientKey string) *SubscriptionController {
	return &SubscriptionController{
		catalog:   catalog,
		checkout:  checkout,
		webhooks:  webhooks,
		clientKey: clientKey,
	}
}

func (ctl *SubscriptionController) ListPlans(c *fiber.Ctx) error {
	plans, err := ctl.catalog.ListActivePlans(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(plans)
}

func (ctl *SubscriptionController) CreateCheckout(c *fiber.Ctx) error {
	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	claims := c.Locals("user").(*jwt.Claims)

	email := input.CustomerEmail
	if email == "" {
		email = claims.Email
	}

	result, err := ctl.checkout.CreateCheckout(c.Context(), service.CheckoutInput{
		UserID:        claims.UserID,
		PlanID:        input.PlanID,
		CustomerName:  input.CustomerName,
		CustomerEmail: email,
	})
	if err != nil {
		return respondError(c, err)
	}

	// client_key lets the frontend embed the gateway's checkout widget with
	// the returned token.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subscription": result.Subscription,
		"payment":      result.Payment,
		"client_key":   ctl.clientKey,
	})
}

func (ctl *SubscriptionController) GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	sub, err := ctl.checkout.MySubscription(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}

// HandleGatewayWebhook receives the gateway's payment notifications. The
// gateway redelivers on non-2xx, which reconciliation idempotency makes safe.
func (ctl *SubscriptionController) HandleGatewayWebhook(c *fiber.Ctx) error {
	notification := new(payment.Notification)
	if err := c.BodyParser(notification); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification payload",
		})
	}

	result, err := ctl.webhooks.ProcessNotification(c.Context(), notification, c.Get("X-Callback-Token"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		status = fiber.StatusBadRequest
	case apperror.KindNotFound:
		status = fiber.StatusNotFound
	case apperror.KindConflict:
		status = fiber.StatusConflict
	case apperror.KindUnauthorized:
		status = fiber.StatusUnauthorized
	case apperror.KindUpstream:
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
