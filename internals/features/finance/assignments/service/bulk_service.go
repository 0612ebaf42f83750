// file: internals/features/finance/assignments/service/bulk_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/finance/assignments/model"
	feeSvc "collegefee_backend/internals/features/finance/fees/service"
	studentSvc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
)

type BulkInput struct {
	TemplateID    uuid.UUID
	AcademicYear  string
	Semester      int
	AdmissionMode string // empty: the template's scope
	Department    string // empty: the template's scope
	DryRun        bool
	AssignedBy    *uuid.UUID
	DueDate       *time.Time
}

type BulkFailure struct {
	StudentID uuid.UUID `json:"student_id"`
	Reason    string    `json:"reason"`
}

type BulkResult struct {
	DryRun     bool          `json:"dry_run"`
	Matched    int           `json:"matched"`
	Assigned   int           `json:"assigned"`
	Skipped    int           `json:"skipped"`
	Failed     []BulkFailure `json:"failed,omitempty"`
	StudentIDs []uuid.UUID   `json:"student_ids,omitempty"`
}

// BulkAssign assigns a template to every matching student that has no
// assignment for the academic year. Each student is its own transaction.
func BulkAssign(ctx context.Context, db *gorm.DB, in BulkInput) (*BulkResult, error) {
	tpl, err := feeSvc.GetTemplate(ctx, db, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.FeeTemplateIsActive {
		return nil, helper.Validation("fee template %q is inactive", tpl.FeeTemplateName)
	}
	year := in.AcademicYear
	if year == "" {
		year = tpl.FeeTemplateAcademicYear
	}
	mode, dept := in.AdmissionMode, in.Department
	if mode == "" && tpl.FeeTemplateAdmissionMode != nil {
		mode = *tpl.FeeTemplateAdmissionMode
	}
	if dept == "" && tpl.FeeTemplateDepartment != nil {
		dept = *tpl.FeeTemplateDepartment
	}

	assigned := db.Model(&model.FeeAssignmentModel{}).
		Select("fee_assignment_student_id").
		Where("fee_assignment_academic_year = ?", year)

	var ids []uuid.UUID
	if err := studentSvc.Cohort(db.WithContext(ctx), dept, mode).
		Where("student_id NOT IN (?)", assigned).
		Order("student_usn ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, helper.Internal(err, "select cohort")
	}

	res := &BulkResult{DryRun: in.DryRun, Matched: len(ids)}
	if in.DryRun {
		res.StudentIDs = ids
		return res, nil
	}

	for _, id := range ids {
		_, err := Assign(ctx, db, AssignInput{
			StudentID:    id,
			TemplateID:   tpl.FeeTemplateID,
			AcademicYear: year,
			Semester:     in.Semester,
			Type:         model.AssignmentBulk,
			AssignedBy:   in.AssignedBy,
			DueDate:      in.DueDate,
		})
		switch {
		case err == nil:
			res.Assigned++
		case errors.Is(err, ErrDuplicateAssignment):
			res.Skipped++
		default:
			res.Failed = append(res.Failed, BulkFailure{StudentID: id, Reason: err.Error()})
		}
	}
	return res, nil
}
