package constants

import "fmt"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleHOD     = "hod"
)

const (
	ErrOnlyAdminsCanAccess = "❌ Only admins may access %s."
	ErrOnlyHODCanAccess    = "❌ Only heads of department or admins may access %s."
	ErrOnlyStudentsAccess  = "❌ Only students may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorHOD(feature string) string {
	return fmt.Sprintf(ErrOnlyHODCanAccess, feature)
}

func RoleErrorStudent(feature string) string {
	return fmt.Sprintf(ErrOnlyStudentsAccess, feature)
}

var (
	AllRoles       = []string{RoleStudent, RoleAdmin, RoleHOD}
	StaffRoles     = []string{RoleAdmin, RoleHOD}
	AdminOnlyRoles = []string{RoleAdmin}
)
