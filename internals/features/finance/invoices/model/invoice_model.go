// file: internals/features/finance/invoices/model/invoice_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	studentModel "collegefee_backend/internals/features/users/students/model"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPartial   InvoiceStatus = "partial"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

const (
	InvoiceTypeAnnual   = "annual"
	InvoiceTypeSemester = "semester"
	InvoiceTypeOneTime  = "one-time"
	InvoiceTypeCustom   = "custom"
)

/* ===================== Invoice ===================== */

type InvoiceModel struct {
	InvoiceID           uuid.UUID       `gorm:"column:invoice_id;type:uuid;primaryKey" json:"invoice_id"`
	InvoiceNumber       string          `gorm:"column:invoice_number;size:20;not null;uniqueIndex" json:"invoice_number"`
	InvoiceStudentID    uuid.UUID       `gorm:"column:invoice_student_id;type:uuid;not null;uniqueIndex:uq_invoice_student_period,priority:1" json:"invoice_student_id"`
	InvoiceAcademicYear string          `gorm:"column:invoice_academic_year;size:16;not null;uniqueIndex:uq_invoice_student_period,priority:2" json:"invoice_academic_year"`
	InvoiceSemester     int             `gorm:"column:invoice_semester;not null;default:0;uniqueIndex:uq_invoice_student_period,priority:3" json:"invoice_semester"`
	InvoiceAssignmentID *uuid.UUID      `gorm:"column:invoice_assignment_id;type:uuid;index" json:"invoice_assignment_id,omitempty"`
	InvoiceType         string          `gorm:"column:invoice_type;size:16;not null" json:"invoice_type"`
	InvoiceTotalAmount  decimal.Decimal `gorm:"column:invoice_total_amount;type:numeric(12,2);not null;default:0" json:"invoice_total_amount"`
	InvoicePaidAmount   decimal.Decimal `gorm:"column:invoice_paid_amount;type:numeric(12,2);not null;default:0" json:"invoice_paid_amount"`
	InvoiceBalance      decimal.Decimal `gorm:"column:invoice_balance_amount;type:numeric(12,2);not null;default:0" json:"invoice_balance_amount"`
	InvoiceStatus       InvoiceStatus   `gorm:"column:invoice_status;type:varchar(16);not null;default:'pending';index" json:"invoice_status"`
	InvoiceDueDate      time.Time       `gorm:"column:invoice_due_date;type:date;not null" json:"invoice_due_date"`

	InvoiceCreatedAt time.Time `gorm:"column:invoice_created_at;autoCreateTime" json:"invoice_created_at"`
	InvoiceUpdatedAt time.Time `gorm:"column:invoice_updated_at;autoUpdateTime" json:"invoice_updated_at"`

	Components []InvoiceComponentModel    `gorm:"foreignKey:InvoiceComponentInvoiceID;references:InvoiceID" json:"components,omitempty"`
	Student    *studentModel.StudentModel `gorm:"foreignKey:InvoiceStudentID;references:StudentID" json:"student,omitempty"`
}

func (InvoiceModel) TableName() string { return "invoices" }

func (m *InvoiceModel) BeforeCreate(tx *gorm.DB) error {
	if m.InvoiceID == uuid.Nil {
		m.InvoiceID = uuid.New()
	}
	return nil
}

// IsPayable: cancelled and fully paid invoices take no more money.
func (m *InvoiceModel) IsPayable() bool {
	return m.InvoiceStatus != InvoiceStatusCancelled && m.InvoiceBalance.IsPositive()
}

/* ===================== Invoice component ===================== */

type InvoiceComponentModel struct {
	InvoiceComponentID        uuid.UUID       `gorm:"column:invoice_component_id;type:uuid;primaryKey" json:"invoice_component_id"`
	InvoiceComponentInvoiceID uuid.UUID       `gorm:"column:invoice_component_invoice_id;type:uuid;not null;index" json:"invoice_component_invoice_id"`
	InvoiceComponentName      string          `gorm:"column:invoice_component_name;size:120;not null" json:"invoice_component_name"`
	InvoiceComponentAmount    decimal.Decimal `gorm:"column:invoice_component_amount;type:numeric(12,2);not null" json:"invoice_component_amount"`
	InvoiceComponentPaid      decimal.Decimal `gorm:"column:invoice_component_paid_amount;type:numeric(12,2);not null;default:0" json:"invoice_component_paid_amount"`
	InvoiceComponentBalance   decimal.Decimal `gorm:"column:invoice_component_balance_amount;type:numeric(12,2);not null;default:0" json:"invoice_component_balance_amount"`
	InvoiceComponentPosition  int             `gorm:"column:invoice_component_position;not null;default:0" json:"invoice_component_position"`

	InvoiceComponentCreatedAt time.Time `gorm:"column:invoice_component_created_at;autoCreateTime" json:"invoice_component_created_at"`
	InvoiceComponentUpdatedAt time.Time `gorm:"column:invoice_component_updated_at;autoUpdateTime" json:"invoice_component_updated_at"`
}

func (InvoiceComponentModel) TableName() string { return "invoice_components" }

func (m *InvoiceComponentModel) BeforeCreate(tx *gorm.DB) error {
	if m.InvoiceComponentID == uuid.Nil {
		m.InvoiceComponentID = uuid.New()
	}
	return nil
}
