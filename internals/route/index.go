// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/constants"
	PaymentService "collegefee_backend/internals/features/finance/payments/service"
	ReceiptService "collegefee_backend/internals/features/finance/receipts/service"
	NotificationService "collegefee_backend/internals/features/home/notifications/service"
	authMiddleware "collegefee_backend/internals/middlewares/auth"
	routeDetails "collegefee_backend/internals/route/details"
)

var startTime time.Time

// Deps are the long-lived services built in main.
type Deps struct {
	DB         *gorm.DB
	Log        *zap.Logger
	JWTSecret  string
	Env        string
	Reconciler *PaymentService.Reconciler
	Receipts   *ReceiptService.Emitter
	Notifier   *NotificationService.Notifier
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB, d.Env)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              d.JWTSecret,
		AllowCookieFallback: true,
	})

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api")
	routeDetails.FinanceWebhookRoutes(public, d.DB, d.Reconciler)

	// ===================== STUDENT =====================
	log.Println("[INFO] Setting up STUDENT group...")
	user := app.Group("/api/u", jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorStudent("this area"), constants.RoleStudent))
	routeDetails.UserRoutes(user, d.DB)
	routeDetails.FinanceUserRoutes(user, d.DB, d.Reconciler, d.Receipts)
	routeDetails.HomeUserRoutes(user, d.DB, d.Notifier)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("the fee office"), constants.AdminOnlyRoles...))
	routeDetails.UserAdminRoutes(admin, d.DB)
	routeDetails.FinanceAdminRoutes(admin, d.DB, d.Log, d.Reconciler, d.Receipts)
	routeDetails.HomeAdminRoutes(admin, d.DB, d.Notifier)

	// ===================== HOD =====================
	log.Println("[INFO] Setting up HOD group...")
	hod := app.Group("/api/h", jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorHOD("department reports"), constants.StaffRoles...))
	routeDetails.FinanceHODRoutes(hod, d.DB)
}
