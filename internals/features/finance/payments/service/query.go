package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/payments/model"
	helper "collegefee_backend/internals/helpers"
)

func withAllocations(q *gorm.DB) *gorm.DB {
	return q.Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("payment_component_created_at ASC, payment_component_id ASC")
	})
}

func GetPayment(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.PaymentModel, error) {
	var p model.PaymentModel
	err := withAllocations(db.WithContext(ctx)).Where("payment_id = ?", id).Take(&p).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("payment not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load payment")
	}
	return &p, nil
}

// GetPaymentForStudent is GetPayment limited to the owner.
func GetPaymentForStudent(ctx context.Context, db *gorm.DB, id, studentID uuid.UUID) (*model.PaymentModel, error) {
	p, err := GetPayment(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if p.PaymentStudentID != studentID {
		return nil, helper.Forbidden("payment does not belong to this student")
	}
	return p, nil
}

type ListFilter struct {
	StudentID  *uuid.UUID
	InvoiceID  *uuid.UUID
	Status     string
	Mode       string
	Department string
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

func ListPayments(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.PaymentModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.PaymentModel{})
	if f.StudentID != nil {
		q = q.Where("payment_student_id = ?", *f.StudentID)
	}
	if f.InvoiceID != nil {
		q = q.Where("payment_invoice_id = ?", *f.InvoiceID)
	}
	if f.Status != "" {
		q = q.Where("payment_status = ?", f.Status)
	}
	if f.Mode != "" {
		q = q.Where("payment_mode = ?", f.Mode)
	}
	if f.Department != "" {
		q = q.Where("payment_student_id IN (?)",
			db.Table("students").Select("student_id").Where("student_department = ?", f.Department))
	}
	if f.From != nil {
		q = q.Where("payment_created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_created_at < ?", *f.To)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count payments")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var rows []model.PaymentModel
	if err := withAllocations(q).
		Order("payment_created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list payments")
	}
	return rows, total, nil
}

// ListGatewayEvents returns webhook deliveries, newest first.
func ListGatewayEvents(ctx context.Context, db *gorm.DB, paymentID *uuid.UUID, offset, limit int) ([]model.PaymentGatewayEventModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.PaymentGatewayEventModel{})
	if paymentID != nil {
		q = q.Where("gateway_event_payment_id = ?", *paymentID)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count gateway events")
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []model.PaymentGatewayEventModel
	if err := q.Order("gateway_event_received_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list gateway events")
	}
	return rows, total, nil
}
