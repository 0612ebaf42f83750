// Package bootstrap builds the long-lived services shared by the HTTP server and feectl.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"collegefee_backend/internals/configs"
	"collegefee_backend/internals/features/finance/payments/gateway"
	paymentService "collegefee_backend/internals/features/finance/payments/service"
	"collegefee_backend/internals/features/finance/receipts/render"
	receiptService "collegefee_backend/internals/features/finance/receipts/service"
	"collegefee_backend/internals/features/finance/receipts/store"
	notificationService "collegefee_backend/internals/features/home/notifications/service"
)

type Services struct {
	Reconciler *paymentService.Reconciler
	Receipts   *receiptService.Emitter
	Notifier   *notificationService.Notifier
}

func Build(cfg configs.AppConfig, db *gorm.DB, log *zap.Logger) (*Services, error) {
	var sms notificationService.SMSSender
	if tw := notificationService.NewTwilioSender(cfg.Twilio); tw != nil {
		sms = tw
		log.Info("sms notifications enabled", zap.String("provider", "twilio"))
	}
	notifier := notificationService.NewNotifier(db, sms, log)

	renderer, err := render.New(cfg.Receipt.Format)
	if err != nil {
		return nil, fmt.Errorf("receipt renderer: %w", err)
	}
	docs, err := store.New(cfg.Receipt, log)
	if err != nil {
		return nil, fmt.Errorf("receipt store: %w", err)
	}
	emitter := receiptService.NewEmitter(db, renderer, docs, cfg.Payment.Currency, log)

	gw := gateway.NewMidtrans(cfg.Midtrans.ServerKey, cfg.Midtrans.UseProduction)
	rec := paymentService.NewReconciler(db, gw, cfg.Payment, log)
	rec.Receipts = emitter
	rec.Notifier = notifier

	return &Services{Reconciler: rec, Receipts: emitter, Notifier: notifier}, nil
}
