package dto

import (
	"github.com/google/uuid"

	"collegefee_backend/internals/features/users/students/model"
)

type StudentResponse struct {
	StudentID     uuid.UUID `json:"student_id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	USN           string    `json:"usn"`
	Email         string    `json:"email,omitempty"`
	Department    string    `json:"department"`
	AdmissionMode string    `json:"admission_mode"`
	Semester      int       `json:"semester"`
	Status        string    `json:"status"`
}

func ToStudentResponse(m model.StudentModel) StudentResponse {
	out := StudentResponse{
		StudentID:     m.StudentID,
		UserID:        m.StudentUserID,
		Name:          m.StudentName,
		USN:           m.StudentUSN,
		Department:    m.StudentDepartment,
		AdmissionMode: m.StudentAdmissionMode,
		Semester:      m.StudentSemester,
		Status:        string(m.StudentStatus),
	}
	if m.User != nil {
		out.Email = m.User.UserEmail
	}
	return out
}

func ToStudentResponses(rows []model.StudentModel) []StudentResponse {
	out := make([]StudentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToStudentResponse(r))
	}
	return out
}
