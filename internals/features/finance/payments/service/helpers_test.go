package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/configs"
	"collegefee_backend/internals/constants"
	"collegefee_backend/internals/databases/testdb"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	"collegefee_backend/internals/features/finance/payments/gateway"
	"collegefee_backend/internals/features/finance/payments/model"
	studentModel "collegefee_backend/internals/features/users/students/model"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

const webhookSecret = "whsec_test"

var t0 = time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	gw      *gateway.Fake
	rec     *Reconciler
	student *studentModel.StudentModel
	invoice *invoiceModel.InvoiceModel
	clock   time.Time
}

// newFixture builds a student with one invoice of Tuition 1000 and Library 500.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	gw := gateway.NewFake(webhookSecret)
	f := &fixture{db: db, gw: gw, clock: t0}
	f.rec = NewReconciler(db, gw, configs.DefaultPaymentPolicy(), zap.NewNop())
	f.rec.Now = func() time.Time { return f.clock }
	f.student = testdb.Student(t, db, testdb.StudentOpts{})
	f.invoice = testdb.Invoice(t, db, f.student.StudentID,
		testdb.Line{Name: "Tuition", Amount: "1000"},
		testdb.Line{Name: "Library", Amount: "500"},
	)
	return f
}

func (f *fixture) caller() helperAuth.Caller {
	return helperAuth.Caller{UserID: f.student.StudentUserID, Role: constants.RoleStudent}
}

func (f *fixture) admin() helperAuth.Caller {
	return helperAuth.Caller{UserID: uuid.New(), Role: constants.RoleAdmin}
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func (f *fixture) payment(t *testing.T, id uuid.UUID) model.PaymentModel {
	t.Helper()
	var p model.PaymentModel
	if err := f.db.Preload("Components").Where("payment_id = ?", id).Take(&p).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	return p
}

func (f *fixture) pending(t *testing.T, amount string) model.PaymentModel {
	t.Helper()
	amt := testdb.Dec(amount)
	res, err := f.rec.CreateCheckoutSession(context.Background(), f.caller(), f.invoice.InvoiceID, &amt)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return f.payment(t, res.PaymentID)
}

func dec(s string) *decimal.Decimal {
	d := testdb.Dec(s)
	return &d
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, message string, tags ...string) error {
	args := m.Called(ctx, userID, message, tags)
	return args.Error(0)
}

// stubReceipts fails the first failFirst calls.
type stubReceipts struct {
	issued    map[uuid.UUID]string
	calls     int
	failFirst int
}

func (s *stubReceipts) Emit(ctx context.Context, paymentID uuid.UUID, amount decimal.Decimal) (string, bool, error) {
	s.calls++
	if s.calls <= s.failFirst {
		return "", false, errors.New("receipt store unavailable")
	}
	if s.issued == nil {
		s.issued = map[uuid.UUID]string{}
	}
	if n, ok := s.issued[paymentID]; ok {
		return n, false, nil
	}
	n := "RCPT-" + paymentID.String()[:8]
	s.issued[paymentID] = n
	return n, true, nil
}
