package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"collegefee_backend/internals/constants"
	svc "collegefee_backend/internals/features/finance/reports/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

func dayParam(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, helper.Validation("%s must be YYYY-MM-DD", key)
	}
	return &t, nil
}

// GET /api/a/reports/outstanding?department=&semester=&academic_year=&overdue=
func (h *ReportController) Outstanding(c *fiber.Ctx) error {
	f := svc.OutstandingFilter{
		Department:   strings.TrimSpace(c.Query("department")),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		OverdueOnly:  c.QueryBool("overdue", false),
	}
	if v := strings.TrimSpace(c.Query("semester")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "semester must be a number")
		}
		f.Semester = &n
	}
	p := helper.ResolvePaging(c, 50, 500)
	f.Offset, f.Limit = p.Offset, p.Limit

	rows, totals, err := svc.Outstanding(c.Context(), h.DB, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"items":      rows,
		"totals":     totals,
		"pagination": helper.BuildPagination(totals.Invoices, p, len(rows)),
	})
}

// GET /api/a/reports/collections?from=&to=&department=
func (h *ReportController) Collections(c *fiber.Ctx) error {
	from, err := dayParam(c, "from")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	to, err := dayParam(c, "to")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	out, err := svc.Collections(c.Context(), h.DB, svc.CollectionFilter{
		Department: strings.TrimSpace(c.Query("department")),
		From:       from,
		To:         to,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/h/reports/department?academic_year=
// HODs see their own department; admins pass ?department=.
func (h *ReportController) Department(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	dept := caller.Department
	if caller.Is(constants.RoleAdmin) {
		if q := strings.TrimSpace(c.Query("department")); q != "" {
			dept = q
		}
	}
	if dept == "" {
		return helper.JsonFromError(c, helper.Forbidden("no department bound to this account"))
	}
	out, err := svc.Department(c.Context(), h.DB, dept, strings.TrimSpace(c.Query("academic_year")))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
