// file: internals/features/finance/assignments/model/fee_assignment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssignmentType string

const (
	AssignmentBulk       AssignmentType = "bulk"
	AssignmentIndividual AssignmentType = "individual"
	AssignmentAuto       AssignmentType = "auto"
)

// Overrides maps a template component id to the amount that replaces its price.
type Overrides map[string]decimal.Decimal

type FeeAssignmentModel struct {
	FeeAssignmentID           uuid.UUID                     `gorm:"column:fee_assignment_id;type:uuid;primaryKey" json:"fee_assignment_id"`
	FeeAssignmentStudentID    uuid.UUID                     `gorm:"column:fee_assignment_student_id;type:uuid;not null;uniqueIndex:uq_assignment_student_year,priority:1" json:"fee_assignment_student_id"`
	FeeAssignmentAcademicYear string                        `gorm:"column:fee_assignment_academic_year;size:16;not null;uniqueIndex:uq_assignment_student_year,priority:2" json:"fee_assignment_academic_year"`
	FeeAssignmentTemplateID   uuid.UUID                     `gorm:"column:fee_assignment_template_id;type:uuid;not null;index" json:"fee_assignment_template_id"`
	FeeAssignmentType         AssignmentType                `gorm:"column:fee_assignment_type;type:varchar(16);not null;default:'individual'" json:"fee_assignment_type"`
	FeeAssignmentSemester     int                           `gorm:"column:fee_assignment_semester;not null;default:0" json:"fee_assignment_semester"`
	FeeAssignmentOverrides    datatypes.JSONType[Overrides] `gorm:"column:fee_assignment_overrides" json:"fee_assignment_overrides"`
	FeeAssignmentAssignedBy   *uuid.UUID                    `gorm:"column:fee_assignment_assigned_by;type:uuid" json:"fee_assignment_assigned_by,omitempty"`
	FeeAssignmentAssignedAt   time.Time                     `gorm:"column:fee_assignment_assigned_at;not null" json:"fee_assignment_assigned_at"`
	FeeAssignmentIsActive     bool                          `gorm:"column:fee_assignment_is_active;not null;default:true" json:"fee_assignment_is_active"`

	FeeAssignmentCreatedAt time.Time `gorm:"column:fee_assignment_created_at;autoCreateTime" json:"fee_assignment_created_at"`
	FeeAssignmentUpdatedAt time.Time `gorm:"column:fee_assignment_updated_at;autoUpdateTime" json:"fee_assignment_updated_at"`
}

func (FeeAssignmentModel) TableName() string { return "fee_assignments" }

func (m *FeeAssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.FeeAssignmentID == uuid.Nil {
		m.FeeAssignmentID = uuid.New()
	}
	if m.FeeAssignmentAssignedAt.IsZero() {
		m.FeeAssignmentAssignedAt = time.Now()
	}
	return nil
}
