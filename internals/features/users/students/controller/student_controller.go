package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/users/students/dto"
	svc "collegefee_backend/internals/features/users/students/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type StudentController struct {
	DB *gorm.DB
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db}
}

// GET /api/a/students?q=&department=&admission_mode=&semester=
func (h *StudentController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 200)
	rows, total, err := svc.List(c.Context(), h.DB, svc.ListFilter{
		Query:         c.Query("q"),
		Department:    c.Query("department"),
		AdmissionMode: c.Query("admission_mode"),
		Semester:      c.QueryInt("semester"),
		Offset:        p.Offset,
		Limit:         p.Limit,
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToStudentResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// GET /api/a/students/:id
func (h *StudentController) Detail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	s, err := svc.FindByID(c.Context(), h.DB, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToStudentResponse(*s))
}

// GET /api/u/me
func (h *StudentController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	s, err := svc.FindByUserID(c.Context(), h.DB, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToStudentResponse(*s))
}
