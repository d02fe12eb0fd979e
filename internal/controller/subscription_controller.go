package controller

import (
	"errors"
	"strconv"

	"inr99_academy_backend/internal/service"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
}

func NewSubscriptionController(subscriptionService *service.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{SubscriptionService: subscriptionService}
}

// ListPlans godoc
// @Summary Active subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/plans [get]
func (c *SubscriptionController) ListPlans(ctx *gin.Context) {
	plans, err := c.SubscriptionService.ListPlans()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// swagger:model SubscribeRequest
type SubscribeRequest struct {
	PlanID uint `json:"planId" binding:"required"`
}

// Subscribe godoc
// @Summary Start a subscription purchase
// @Description Creates a pending subscription and a payment order; poll the order until it settles.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubscribeRequest true "plan to buy"
// @Success 201 {object} util.Response{data=service.SubscribeResult}
// @Failure 404 {object} util.Response
// @Router /api/subscriptions [post]
func (c *SubscriptionController) Subscribe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubscriptionService.Subscribe(ctx.Request.Context(), claims.UserID, req.PlanID)
	if err != nil {
		if errors.Is(err, util.ErrPlanNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// PollPayment godoc
// @Summary Refresh a payment order from the gateway
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "payment order id"
// @Success 200 {object} util.Response{data=model.Payment}
// @Failure 404 {object} util.Response
// @Router /api/payments/{orderId} [get]
func (c *SubscriptionController) PollPayment(ctx *gin.Context) {
	payment, err := c.SubscriptionService.PollPayment(ctx.Request.Context(), ctx.Param("orderId"))
	if err != nil {
		if errors.Is(err, util.ErrPaymentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, payment)
}

// Current godoc
// @Summary Current subscription
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Subscription}
// @Failure 404 {object} util.Response
// @Router /api/subscriptions/current [get]
func (c *SubscriptionController) Current(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.SubscriptionService.Current(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, sub)
}

// Cancel godoc
// @Summary Cancel the active subscription
// @Description Access continues until the paid period ends.
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Subscription}
// @Failure 404 {object} util.Response
// @Router /api/subscriptions/cancel [post]
func (c *SubscriptionController) Cancel(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.SubscriptionService.Cancel(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNoActiveSubscription) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, sub)
}

// CreatePlan godoc
// @Summary Create a subscription plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.PlanRequest true "plan details"
// @Success 201 {object} util.Response{data=model.SubscriptionPlan}
// @Router /api/admin/plans [post]
func (c *SubscriptionController) CreatePlan(ctx *gin.Context) {
	var req service.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.SubscriptionService.CreatePlan(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, plan)
}

// UpdatePlan godoc
// @Summary Update a subscription plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "plan id"
// @Param body body service.PlanRequest true "plan details"
// @Success 200 {object} util.Response{data=model.SubscriptionPlan}
// @Failure 404 {object} util.Response
// @Router /api/admin/plans/{id} [put]
func (c *SubscriptionController) UpdatePlan(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid plan id")
		return
	}

	var req service.PlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.SubscriptionService.UpdatePlan(uint(id), req)
	if err != nil {
		if errors.Is(err, util.ErrPlanNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, plan)
}
