package database

import (
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"collegefee_backend/internals/configs"
	assignmentModel "collegefee_backend/internals/features/finance/assignments/model"
	feeModel "collegefee_backend/internals/features/finance/fees/model"
	invoiceModel "collegefee_backend/internals/features/finance/invoices/model"
	paymentModel "collegefee_backend/internals/features/finance/payments/model"
	receiptModel "collegefee_backend/internals/features/finance/receipts/model"
	notificationModel "collegefee_backend/internals/features/home/notifications/model"
	studentModel "collegefee_backend/internals/features/users/students/model"
)

var DB *gorm.DB

// ConnectDB opens the postgres pool. Unique violations come back as
// gorm.ErrDuplicatedKey because TranslateError is on.
func ConnectDB(cfg configs.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	log.Println("🔌 Connecting to PostgreSQL...")

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=collegefee&options=-c statement_timeout=5000",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // PgBouncer transaction pooling
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(logger),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	DB = db
	log.Println("✅ DB connected.")
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&studentModel.UserModel{},
		&studentModel.StudentModel{},
		&feeModel.FeeComponentModel{},
		&feeModel.FeeTemplateModel{},
		&feeModel.FeeTemplateComponentModel{},
		&assignmentModel.FeeAssignmentModel{},
		&invoiceModel.InvoiceModel{},
		&invoiceModel.InvoiceComponentModel{},
		&invoiceModel.CustomFeeStructureModel{},
		&paymentModel.PaymentModel{},
		&paymentModel.PaymentComponentModel{},
		&paymentModel.PaymentGatewayEventModel{},
		&receiptModel.ReceiptModel{},
		&notificationModel.NotificationModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
