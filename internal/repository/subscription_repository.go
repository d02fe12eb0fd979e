package repository

import (
	"time"

	"inr99_academy_backend/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

// Plans

func (r *SubscriptionRepository) ListPlans(activeOnly bool) ([]model.SubscriptionPlan, error) {
	var plans []model.SubscriptionPlan
	query := r.DB.Model(&model.SubscriptionPlan{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("price_paise asc").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepository) FindPlanByID(id uint) (*model.SubscriptionPlan, error) {
	var plan model.SubscriptionPlan
	err := r.DB.First(&plan, id).Error
	return &plan, err
}

func (r *SubscriptionRepository) CreatePlan(plan *model.SubscriptionPlan) error {
	return r.DB.Create(plan).Error
}

func (r *SubscriptionRepository) UpdatePlan(plan *model.SubscriptionPlan) error {
	return r.DB.Save(plan).Error
}

// Subscriptions

func (r *SubscriptionRepository) CreateSubscription(s *model.Subscription) error {
	return r.DB.Create(s).Error
}

func (r *SubscriptionRepository) UpdateSubscription(s *model.Subscription) error {
	return r.DB.Save(s).Error
}

func (r *SubscriptionRepository) FindSubscriptionByID(id uint) (*model.Subscription, error) {
	var s model.Subscription
	err := r.DB.Preload("Plan").First(&s, id).Error
	return &s, err
}

// CurrentByUser returns the user's newest non-expired subscription record,
// pending included, or gorm.ErrRecordNotFound.
func (r *SubscriptionRepository) CurrentByUser(userID uint) (*model.Subscription, error) {
	var s model.Subscription
	err := r.DB.Preload("Plan").
		Where("user_id = ? AND status <> ?", userID, model.SubscriptionExpired).
		Order("created_at desc, id desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ExpireLapsed flips active/cancelled subscriptions whose period ended.
func (r *SubscriptionRepository) ExpireLapsed(now time.Time) (int64, error) {
	res := r.DB.Model(&model.Subscription{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?",
			[]model.SubscriptionStatus{model.SubscriptionActive, model.SubscriptionCancelled}, now).
		Update("status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}

func (r *SubscriptionRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.DB.Model(&model.Subscription{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// Payments

func (r *SubscriptionRepository) CreatePayment(p *model.Payment) error {
	return r.DB.Create(p).Error
}

func (r *SubscriptionRepository) UpdatePayment(p *model.Payment) error {
	return r.DB.Save(p).Error
}

func (r *SubscriptionRepository) FindPaymentByOrderID(orderID string) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.First(&p, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SubscriptionRepository) ListUnsettledPayments(limit int) ([]model.Payment, error) {
	var ps []model.Payment
	err := r.DB.Where("status IN ?", []model.PaymentStatus{model.PaymentCreated, model.PaymentPending}).
		Order("created_at asc").
		Limit(limit).
		Find(&ps).Error
	return ps, err
}

func (r *SubscriptionRepository) TotalRevenuePaise() (int64, error) {
	var total *int64
	err := r.DB.Model(&model.Payment{}).
		Where("status = ?", model.PaymentPaid).
		Select("SUM(amount_paise)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}
