// Package seeds loads demo fee data from a JSON file. Rows that already
// exist are skipped, so a seed file can be applied more than once.
package seeds

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/constants"
	feeModel "collegefee_backend/internals/features/finance/fees/model"
	feeSvc "collegefee_backend/internals/features/finance/fees/service"
	studentModel "collegefee_backend/internals/features/users/students/model"
)

type ComponentSeed struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description"`
}

type TemplateLineSeed struct {
	Component string              `json:"component"`
	Override  decimal.NullDecimal `json:"override"`
}

type TemplateSeed struct {
	Name          string             `json:"name"`
	AcademicYear  string             `json:"academic_year"`
	Department    *string            `json:"department"`
	AdmissionMode *string            `json:"admission_mode"`
	FeeType       feeModel.FeeType   `json:"fee_type"`
	Lines         []TemplateLineSeed `json:"lines"`
}

type StudentSeed struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	USN           string  `json:"usn"`
	Department    string  `json:"department"`
	AdmissionMode string  `json:"admission_mode"`
	Semester      int     `json:"semester"`
	AdmissionYear int     `json:"admission_year"`
	Phone         *string `json:"phone"`
}

type StaffSeed struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Phone *string `json:"phone"`
}

type File struct {
	Components []ComponentSeed `json:"components"`
	Templates  []TemplateSeed  `json:"templates"`
	Students   []StudentSeed   `json:"students"`
	Staff      []StaffSeed     `json:"staff"`
}

// Summary counts inserted and skipped rows per kind.
type Summary struct {
	Components int `json:"components"`
	Templates  int `json:"templates"`
	Students   int `json:"students"`
	Staff      int `json:"staff"`
	Skipped    int `json:"skipped"`
}

func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return &f, nil
}

// SeedFromJSON reads path and applies it.
func SeedFromJSON(ctx context.Context, db *gorm.DB, path string, log *zap.Logger) (*Summary, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Apply(ctx, db, f, log)
}

func Apply(ctx context.Context, db *gorm.DB, f *File, log *zap.Logger) (*Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("seeds")
	sum := &Summary{}

	ids := map[string]feeModel.FeeComponentModel{}
	for _, c := range f.Components {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		var existing feeModel.FeeComponentModel
		err := db.WithContext(ctx).Where("LOWER(fee_component_name) = ?", key).Take(&existing).Error
		if err == nil {
			ids[key] = existing
			sum.Skipped++
			log.Debug("component exists, skipped", zap.String("name", c.Name))
			continue
		}
		created, err := feeSvc.CreateComponent(ctx, db, feeSvc.ComponentInput{Name: c.Name, Amount: c.Amount, Description: c.Description})
		if err != nil {
			return sum, fmt.Errorf("component %q: %w", c.Name, err)
		}
		ids[key] = *created
		sum.Components++
		log.Info("component inserted", zap.String("name", c.Name), zap.String("amount", c.Amount.StringFixed(2)))
	}

	for _, t := range f.Templates {
		var n int64
		if err := db.WithContext(ctx).Model(&feeModel.FeeTemplateModel{}).
			Where("fee_template_name = ? AND fee_template_academic_year = ?", t.Name, t.AcademicYear).
			Count(&n).Error; err != nil {
			return sum, err
		}
		if n > 0 {
			sum.Skipped++
			continue
		}
		in := feeSvc.TemplateInput{
			Name:          t.Name,
			AcademicYear:  t.AcademicYear,
			Department:    t.Department,
			AdmissionMode: t.AdmissionMode,
			FeeType:       t.FeeType,
		}
		for _, l := range t.Lines {
			comp, ok := ids[strings.ToLower(strings.TrimSpace(l.Component))]
			if !ok {
				return sum, fmt.Errorf("template %q: unknown component %q", t.Name, l.Component)
			}
			in.Lines = append(in.Lines, feeSvc.TemplateLineInput{ComponentID: comp.FeeComponentID, Override: l.Override})
		}
		if _, err := feeSvc.CreateTemplate(ctx, db, in); err != nil {
			return sum, fmt.Errorf("template %q: %w", t.Name, err)
		}
		sum.Templates++
		log.Info("template inserted", zap.String("name", t.Name))
	}

	for _, s := range f.Staff {
		valid := false
		for _, r := range constants.StaffRoles {
			valid = valid || r == s.Role
		}
		if !valid {
			return sum, fmt.Errorf("staff %s: role must be one of %v", s.Email, constants.StaffRoles)
		}
		created, err := insertUser(ctx, db, s.Email, s.Name, s.Role, s.Phone)
		if err != nil {
			return sum, err
		}
		if created == nil {
			sum.Skipped++
			continue
		}
		sum.Staff++
	}

	for _, s := range f.Students {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			u, err := insertUser(ctx, tx, s.Email, s.Name, constants.RoleStudent, s.Phone)
			if err != nil || u == nil {
				return err
			}
			st := studentModel.StudentModel{
				StudentUserID:        u.UserID,
				StudentName:          s.Name,
				StudentUSN:           strings.ToUpper(strings.TrimSpace(s.USN)),
				StudentDepartment:    s.Department,
				StudentAdmissionMode: s.AdmissionMode,
				StudentSemester:      s.Semester,
				StudentAdmissionYear: s.AdmissionYear,
			}
			if st.StudentSemester <= 0 {
				st.StudentSemester = 1
			}
			if err := tx.Create(&st).Error; err != nil {
				return fmt.Errorf("student %s: %w", s.USN, err)
			}
			sum.Students++
			return nil
		})
		if err != nil {
			return sum, err
		}
	}
	sum.Skipped += len(f.Students) - sum.Students

	log.Info("seed applied",
		zap.Int("components", sum.Components),
		zap.Int("templates", sum.Templates),
		zap.Int("students", sum.Students),
		zap.Int("staff", sum.Staff),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

// insertUser returns nil when the email is already taken.
func insertUser(ctx context.Context, db *gorm.DB, email, name, role string, phone *string) (*studentModel.UserModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int64
	if err := db.WithContext(ctx).Model(&studentModel.UserModel{}).Where("user_email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	u := &studentModel.UserModel{UserEmail: email, UserFullName: name, UserRole: role, UserPhone: phone, UserIsActive: true}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", email, err)
	}
	return u, nil
}
