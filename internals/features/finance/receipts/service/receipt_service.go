// file: internals/features/finance/receipts/service/receipt_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	paymentModel "collegefee_backend/internals/features/finance/payments/model"
	"collegefee_backend/internals/features/finance/receipts/model"
	"collegefee_backend/internals/features/finance/receipts/render"
	"collegefee_backend/internals/features/finance/receipts/store"
	studentModel "collegefee_backend/internals/features/users/students/model"
	helper "collegefee_backend/internals/helpers"
)

// NumberFor is stable per payment: RCPT- and the first 16 hex digits of its id.
func NumberFor(paymentID uuid.UUID) string {
	return "RCPT-" + strings.ToUpper(strings.ReplaceAll(paymentID.String(), "-", "")[:16])
}

// Emitter creates receipts. Renderer and Store may be nil; the row is still written.
type Emitter struct {
	DB       *gorm.DB
	Renderer render.Renderer
	Store    store.Store
	Currency string
	Log      *zap.Logger
	Now      func() time.Time
}

func NewEmitter(db *gorm.DB, r render.Renderer, s store.Store, currency string, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{DB: db, Renderer: r, Store: s, Currency: currency, Log: log.Named("receipts"), Now: time.Now}
}

// Emit writes the receipt for paymentID unless one exists. created reports
// whether this call wrote it.
func (e *Emitter) Emit(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal) (string, bool, error) {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	rc := model.ReceiptModel{
		ReceiptPaymentID:   paymentID,
		ReceiptNumber:      NumberFor(paymentID),
		ReceiptAmount:      amount,
		ReceiptGeneratedAt: now,
	}
	res := e.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "receipt_payment_id"}}, DoNothing: true}).
		Create(&rc)
	if res.Error != nil {
		return "", false, helper.Internal(res.Error, "create receipt")
	}
	if res.RowsAffected == 0 {
		return rc.ReceiptNumber, false, nil
	}

	if e.Renderer != nil && e.Store != nil {
		if err := e.persist(ctx, &rc); err != nil {
			e.Log.Warn("receipt document not stored",
				zap.String("receipt", rc.ReceiptNumber), zap.Error(err))
		}
	}
	return rc.ReceiptNumber, true, nil
}

func (e *Emitter) persist(ctx context.Context, rc *model.ReceiptModel) error {
	data, err := e.Render(ctx, rc)
	if err != nil {
		return err
	}
	key := rc.ReceiptGeneratedAt.Format("2006/01/") + rc.ReceiptNumber + e.Renderer.Ext()
	loc, err := e.Store.Put(ctx, key, data, e.Renderer.ContentType())
	if err != nil {
		return err
	}
	return e.DB.WithContext(ctx).Model(&model.ReceiptModel{}).
		Where("receipt_id = ?", rc.ReceiptID).
		Update("receipt_document_key", loc).Error
}

// Render builds the document for a stored receipt.
func (e *Emitter) Render(ctx context.Context, rc *model.ReceiptModel) ([]byte, error) {
	if e.Renderer == nil {
		return nil, helper.Internal(nil, "no receipt renderer configured")
	}
	doc, err := e.document(ctx, rc)
	if err != nil {
		return nil, err
	}
	return e.Renderer.Render(ctx, *doc)
}

func (e *Emitter) document(ctx context.Context, rc *model.ReceiptModel) (*render.Document, error) {
	db := e.DB.WithContext(ctx)
	var p paymentModel.PaymentModel
	if err := db.Preload("Components").Where("payment_id = ?", rc.ReceiptPaymentID).Take(&p).Error; err != nil {
		return nil, helper.Internal(err, "load payment for receipt")
	}
	var inv invoiceModel.InvoiceModel
	if err := db.Where("invoice_id = ?", p.PaymentInvoiceID).Take(&inv).Error; err != nil {
		return nil, helper.Internal(err, "load invoice for receipt")
	}
	var st studentModel.StudentModel
	if err := db.Where("student_id = ?", p.PaymentStudentID).Take(&st).Error; err != nil {
		return nil, helper.Internal(err, "load student for receipt")
	}

	doc := &render.Document{
		ReceiptNumber:    rc.ReceiptNumber,
		GeneratedAt:      rc.ReceiptGeneratedAt,
		PaymentReference: p.PaymentReference,
		Mode:             string(p.PaymentMode),
		Amount:           rc.ReceiptAmount,
		Currency:         e.Currency,
		InvoiceNumber:    inv.InvoiceNumber,
		AcademicYear:     inv.InvoiceAcademicYear,
		Semester:         inv.InvoiceSemester,
		InvoiceTotal:     inv.InvoiceTotalAmount,
		InvoicePaid:      inv.InvoicePaidAmount,
		InvoiceBalance:   inv.InvoiceBalance,
		StudentName:      st.StudentName,
		USN:              st.StudentUSN,
		Department:       st.StudentDepartment,
	}
	if doc.Currency == "" {
		doc.Currency = "INR"
	}
	if p.PaymentTransactionID != nil {
		doc.TransactionID = *p.PaymentTransactionID
	}
	if p.PaymentPaidAt != nil {
		doc.PaidAt = *p.PaymentPaidAt
	}
	for _, c := range p.Components {
		doc.Lines = append(doc.Lines, render.Line{Name: c.PaymentComponentName, Amount: c.PaymentComponentAmount})
	}
	return doc, nil
}

/* ===================== Queries ===================== */

func GetByPayment(ctx context.Context, db *gorm.DB, paymentID uuid.UUID) (*model.ReceiptModel, error) {
	var rc model.ReceiptModel
	err := db.WithContext(ctx).Where("receipt_payment_id = ?", paymentID).Take(&rc).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("receipt not found for this payment")
	}
	if err != nil {
		return nil, helper.Internal(err, "load receipt")
	}
	return &rc, nil
}

// ListForStudent returns the student's receipts, newest first.
func ListForStudent(ctx context.Context, db *gorm.DB, studentID uuid.UUID) ([]model.ReceiptModel, error) {
	var rows []model.ReceiptModel
	err := db.WithContext(ctx).
		Where("receipt_payment_id IN (?)",
			db.Model(&paymentModel.PaymentModel{}).Select("payment_id").Where("payment_student_id = ?", studentID)).
		Order("receipt_generated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, helper.Internal(err, "list receipts")
	}
	return rows, nil
}
