package repository

import (
	"context"
	"errors"

	"tableservice/internal/domain/model"
	repo "tableservice/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) FindByGatewayOrderRef(ctx context.Context, ref string) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where("gateway_order_ref = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (r *PaymentGormRepository) MarkPaid(ctx context.Context, paymentID int64, orderID int64, gatewayPaymentRef string, signature string) error {
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"order_id":            orderID,
			"status":              model.PaymentStatusPaid,
			"verified":            true,
			"gateway_payment_ref": gatewayPaymentRef,
			"signature":           signature,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PaymentGormRepository) MarkFailed(ctx context.Context, paymentID int64, gatewayPaymentRef string, signature string) error {
	// 監査用：失敗の事実と提出された署名を残す
	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":              model.PaymentStatusFailed,
			"verified":            false,
			"gateway_payment_ref": gatewayPaymentRef,
			"signature":           signature,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *PaymentGormRepository) ExistsPaidByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ? AND status = ? AND verified = ?", orderID, model.PaymentStatusPaid, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PaymentGormRepository) ExistsPendingByOrderID(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentStatusCreated).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
