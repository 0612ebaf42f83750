package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/users/students/model"
	helper "collegefee_backend/internals/helpers"
)

type ListFilter struct {
	Query         string
	Department    string
	AdmissionMode string
	Semester      int
	Offset        int
	Limit         int
}

// FindByUserID resolves the student profile behind a login.
func FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*model.StudentModel, error) {
	var s model.StudentModel
	err := db.WithContext(ctx).Preload("User").Where("student_user_id = ?", userID).Take(&s).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("student profile not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load student")
	}
	return &s, nil
}

func FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.StudentModel, error) {
	var s model.StudentModel
	err := db.WithContext(ctx).Preload("User").Where("student_id = ?", id).Take(&s).Error
	if helper.IsNotFound(err) {
		return nil, helper.NotFound("student not found")
	}
	if err != nil {
		return nil, helper.Internal(err, "load student")
	}
	return &s, nil
}

// Cohort scopes students by department and admission mode; empty means any.
func Cohort(db *gorm.DB, department, admissionMode string) *gorm.DB {
	q := db.Model(&model.StudentModel{}).Where("student_status <> ?", model.StudentStatusDropout)
	if d := strings.TrimSpace(department); d != "" {
		q = q.Where("student_department = ?", d)
	}
	if m := strings.TrimSpace(admissionMode); m != "" {
		q = q.Where("student_admission_mode = ?", m)
	}
	return q
}

func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.StudentModel, int64, error) {
	q := Cohort(db.WithContext(ctx), f.Department, f.AdmissionMode)
	if f.Semester > 0 {
		q = q.Where("student_semester = ?", f.Semester)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(student_name) LIKE ? OR LOWER(student_usn) LIKE ?", like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.Internal(err, "count students")
	}
	var rows []model.StudentModel
	if err := q.Preload("User").Order("student_usn ASC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.Internal(err, "list students")
	}
	return rows, total, nil
}
