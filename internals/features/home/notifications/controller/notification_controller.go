package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"collegefee_backend/internals/features/home/notifications/dto"
	svc "collegefee_backend/internals/features/home/notifications/service"
	helper "collegefee_backend/internals/helpers"
	helperAuth "collegefee_backend/internals/helpers/auth"
)

type NotificationController struct {
	DB        *gorm.DB
	Notifier  *svc.Notifier
	Validator *validator.Validate
}

func NewNotificationController(db *gorm.DB, n *svc.Notifier) *NotificationController {
	return &NotificationController{DB: db, Notifier: n, Validator: validator.New()}
}

// 🟢 POST /api/a/notifications
func (ctrl *NotificationController) CreateNotification(c *fiber.Ctx) error {
	var req dto.NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json body")
	}
	if err := ctrl.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}
	if err := ctrl.Notifier.Notify(c.Context(), req.UserID, req.Message, req.Tags...); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "notification sent", fiber.Map{"user_id": req.UserID})
}

// 🟢 GET /api/u/notifications?unread=true
func (ctrl *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := svc.ListForUser(c.Context(), ctrl.DB, uid, c.QueryBool("unread", false), p.Offset, p.Limit)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToNotificationResponses(rows), helper.BuildPagination(total, p, len(rows)))
}

// 🟢 PATCH /api/u/notifications/:id/read
func (ctrl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid notification id")
	}
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := svc.MarkRead(c.Context(), ctrl.DB, uid, id); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "notification marked as read", fiber.Map{"notification_id": id})
}

// 🟢 PATCH /api/u/notifications/read-all
func (ctrl *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	uid, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	n, err := svc.MarkAllRead(c.Context(), ctrl.DB, uid)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "notifications marked as read", fiber.Map{"updated": n})
}
