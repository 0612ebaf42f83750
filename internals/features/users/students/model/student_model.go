package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusBacklog  StudentStatus = "backlog"
	StudentStatusYearback StudentStatus = "yearback"
	StudentStatusDropout  StudentStatus = "dropout"
)

const (
	AdmissionKCET       = "kcet"
	AdmissionCOMEDK     = "comedk"
	AdmissionManagement = "management"
)

type StudentModel struct {
	StudentID            uuid.UUID     `gorm:"column:student_id;type:uuid;primaryKey" json:"student_id"`
	StudentUserID        uuid.UUID     `gorm:"column:student_user_id;type:uuid;not null;uniqueIndex" json:"student_user_id"`
	StudentName          string        `gorm:"column:student_name;size:150;not null" json:"student_name"`
	StudentUSN           string        `gorm:"column:student_usn;size:32;not null;uniqueIndex" json:"student_usn"`
	StudentDepartment    string        `gorm:"column:student_department;size:64;index" json:"student_department"`
	StudentAdmissionMode string        `gorm:"column:student_admission_mode;size:32;index" json:"student_admission_mode"`
	StudentSemester      int           `gorm:"column:student_semester;not null;default:1" json:"student_semester"`
	StudentAdmissionYear int           `gorm:"column:student_admission_year" json:"student_admission_year"`
	StudentStatus        StudentStatus `gorm:"column:student_status;type:varchar(16);not null;default:'active'" json:"student_status"`

	StudentCreatedAt time.Time `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`

	User *UserModel `gorm:"foreignKey:StudentUserID;references:UserID" json:"user,omitempty"`
}

func (StudentModel) TableName() string { return "students" }

func (s *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if s.StudentID == uuid.Nil {
		s.StudentID = uuid.New()
	}
	if s.StudentStatus == "" {
		s.StudentStatus = StudentStatusActive
	}
	return nil
}

func (s *StudentModel) IsActive() bool {
	return s.StudentStatus != StudentStatusDropout
}
