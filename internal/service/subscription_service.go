package service

import (
	"context"
	"errors"
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"
	"inr99_academy_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	Repo    *repository.SubscriptionRepository
	Gateway PaymentGateway
}

func NewSubscriptionService(repo *repository.SubscriptionRepository, gateway PaymentGateway) *SubscriptionService {
	return &SubscriptionService{Repo: repo, Gateway: gateway}
}

func (s *SubscriptionService) ListPlans() ([]model.SubscriptionPlan, error) {
	return s.Repo.ListPlans(true)
}

type SubscribeResult struct {
	Subscription *model.Subscription `json:"subscription"`
	Payment      *model.Payment      `json:"payment"`
}

// Subscribe creates a pending subscription plus its gateway order. The
// subscription activates only when polling sees the payment settle.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID uint) (*SubscribeResult, error) {
	plan, err := s.Repo.FindPlanByID(planID)
	if err != nil || !plan.Active {
		return nil, util.ErrPlanNotFound
	}

	if current, err := s.Repo.CurrentByUser(userID); err == nil && current.Usable(time.Now()) {
		// Already subscribed; a new purchase would only shorten their money.
		return &SubscribeResult{Subscription: current}, nil
	}

	sub := &model.Subscription{
		UserID: userID,
		PlanID: plan.ID,
		Status: model.SubscriptionPending,
	}
	if err := s.Repo.CreateSubscription(sub); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		UserID:         userID,
		SubscriptionID: sub.ID,
		AmountPaise:    plan.PricePaise,
		Currency:       "INR",
		Status:         model.PaymentCreated,
	}
	payment.ID = model.GenerateUUID()

	ref, err := s.Gateway.CreateOrder(ctx, payment.ID, payment.AmountPaise, payment.Currency)
	if err != nil {
		return nil, err
	}
	payment.GatewayRef = ref

	if err := s.Repo.CreatePayment(payment); err != nil {
		return nil, err
	}

	return &SubscribeResult{Subscription: sub, Payment: payment}, nil
}

// PollPayment refreshes one order from the gateway and, on settlement,
// activates the subscription. Safe to call repeatedly; a settled payment is
// returned as-is.
func (s *SubscriptionService) PollPayment(ctx context.Context, orderID string) (*model.Payment, error) {
	payment, err := s.Repo.FindPaymentByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status == model.PaymentPaid || payment.Status == model.PaymentFailed {
		return payment, nil
	}

	status, err := s.Gateway.FetchStatus(ctx, payment.GatewayRef)
	if err != nil {
		return nil, err
	}

	switch status {
	case GatewayOrderPaid:
		payment.Status = model.PaymentPaid
		if err := s.Repo.UpdatePayment(payment); err != nil {
			return nil, err
		}
		if err := s.activate(payment); err != nil {
			return nil, err
		}
	case GatewayOrderFailed:
		payment.Status = model.PaymentFailed
		if err := s.Repo.UpdatePayment(payment); err != nil {
			return nil, err
		}
	case GatewayOrderPending:
		if payment.Status != model.PaymentPending {
			payment.Status = model.PaymentPending
			if err := s.Repo.UpdatePayment(payment); err != nil {
				return nil, err
			}
		}
	}

	return payment, nil
}

func (s *SubscriptionService) activate(payment *model.Payment) error {
	sub, err := s.Repo.FindSubscriptionByID(payment.SubscriptionID)
	if err != nil {
		return err
	}
	if sub.Status == model.SubscriptionActive {
		return nil
	}

	plan, err := s.Repo.FindPlanByID(sub.PlanID)
	if err != nil {
		return err
	}

	now := time.Now()
	expires := now.AddDate(0, 0, plan.DurationDays)
	sub.Status = model.SubscriptionActive
	sub.StartsAt = &now
	sub.ExpiresAt = &expires

	return s.Repo.UpdateSubscription(sub)
}

// Cancel stops renewal intent. Access runs until the paid period lapses;
// the expiry sweeper flips the row later.
func (s *SubscriptionService) Cancel(userID uint) (*model.Subscription, error) {
	sub, err := s.Repo.CurrentByUser(userID)
	if err != nil {
		return nil, util.ErrNoActiveSubscription
	}
	if sub.Status != model.SubscriptionActive {
		return nil, util.ErrNoActiveSubscription
	}

	sub.Status = model.SubscriptionCancelled
	if err := s.Repo.UpdateSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) Current(userID uint) (*model.Subscription, error) {
	sub, err := s.Repo.CurrentByUser(userID)
	if err != nil {
		return nil, util.ErrNoActiveSubscription
	}
	return sub, nil
}

// HasActiveSubscription implements the middleware gate.
func (s *SubscriptionService) HasActiveSubscription(userID uint) bool {
	sub, err := s.Repo.CurrentByUser(userID)
	return err == nil && sub.Usable(time.Now())
}

// PollPendingPayments is the background sweep: it re-polls unsettled orders
// and expires lapsed subscriptions. Called from a ticker.
func (s *SubscriptionService) PollPendingPayments(ctx context.Context) error {
	if _, err := s.Repo.ExpireLapsed(time.Now()); err != nil {
		return err
	}

	payments, err := s.Repo.ListUnsettledPayments(100)
	if err != nil {
		return err
	}

	for i := range payments {
		if _, err := s.PollPayment(ctx, payments[i].ID); err != nil {
			logger.Log.Warn("payment poll failed",
				zap.String("orderID", payments[i].ID),
				zap.Error(err))
		}
	}
	return nil
}

// Admin plan management.

type PlanRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	PricePaise   int64  `json:"pricePaise" binding:"required"`
	DurationDays int    `json:"durationDays" binding:"required"`
	Active       *bool  `json:"active"`
}

func (s *SubscriptionService) CreatePlan(req PlanRequest) (*model.SubscriptionPlan, error) {
	plan := &model.SubscriptionPlan{
		Code:         req.Code,
		Name:         req.Name,
		PricePaise:   req.PricePaise,
		DurationDays: req.DurationDays,
		Active:       true,
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if err := s.Repo.CreatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *SubscriptionService) UpdatePlan(id uint, req PlanRequest) (*model.SubscriptionPlan, error) {
	plan, err := s.Repo.FindPlanByID(id)
	if err != nil {
		return nil, util.ErrPlanNotFound
	}

	plan.Code = req.Code
	plan.Name = req.Name
	plan.PricePaise = req.PricePaise
	plan.DurationDays = req.DurationDays
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := s.Repo.UpdatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}
