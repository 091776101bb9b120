package app

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/workbasehq/workbase/internal/app/schedule"
	"github.com/workbasehq/workbase/internal/database"
	"github.com/workbasehq/workbase/internal/services"
	"github.com/workbasehq/workbase/pkg/mail"
)

// Engine bundles the wired service graph behind a single constructor so the
// CLI entrypoints stay thin.
type Engine struct {
	Config *Config
	DB     *gorm.DB
	Queue  *mail.Queue

	Automations   *services.AutomationService
	Logs          *services.LogService
	Records       *services.RecordService
	Directory     *services.DirectoryService
	Notifications *services.NotificationService
	Scheduler     *services.Scheduler
	Runner        *schedule.Runner
}

// NewEngine opens the database, applies migrations and seed data, and wires
// every service the automation engine needs.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Options:  cfg.Database.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("app: open database: %w", err)
	}
	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("app: migrate database: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(mail.Config{
		Enabled:  cfg.Email.SMTP.Enabled,
		Host:     cfg.Email.SMTP.Host,
		Port:     cfg.Email.SMTP.Port,
		Username: cfg.Email.SMTP.Username,
		Password: cfg.Email.SMTP.Password,
		From:     cfg.Email.SMTP.From,
		UseTLS:   cfg.Email.SMTP.UseTLS,
		Timeout:  cfg.Email.SMTP.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("app: build mailer: %w", err)
	}
	queue, err := mail.NewQueue(mailer, mail.WithQueueSize(cfg.Email.SMTP.QueueSize))
	if err != nil {
		return nil, fmt.Errorf("app: build mail queue: %w", err)
	}

	logs, err := services.NewLogService(db)
	if err != nil {
		return nil, err
	}
	records, err := services.NewRecordService(db)
	if err != nil {
		return nil, err
	}
	directory, err := services.NewDirectoryService(db)
	if err != nil {
		return nil, err
	}
	notifications, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}
	executor, err := services.NewActionExecutor(directory, records, notifications, queue,
		services.WithBaseURL(cfg.App.BaseURL))
	if err != nil {
		return nil, err
	}
	evaluator, err := services.NewEvaluator(logs, executor)
	if err != nil {
		return nil, err
	}
	scheduler, err := services.NewScheduler(db, evaluator, records, logs)
	if err != nil {
		return nil, err
	}
	automations, err := services.NewAutomationService(db)
	if err != nil {
		return nil, err
	}

	runner, err := schedule.NewRunner(scheduler, logs,
		schedule.WithBatchSchedule(cfg.Scheduler.Spec),
		schedule.WithLogRetentionDays(cfg.Scheduler.LogRetentionDays))
	if err != nil {
		return nil, err
	}

	return &Engine{
		Config:        cfg,
		DB:            db,
		Queue:         queue,
		Automations:   automations,
		Logs:          logs,
		Records:       records,
		Directory:     directory,
		Notifications: notifications,
		Scheduler:     scheduler,
		Runner:        runner,
	}, nil
}

// Close drains the mail queue and releases the database connection.
func (e *Engine) Close() error {
	if e.Queue != nil {
		e.Queue.Close()
	}

	if e.DB != nil {
		sqlDB, err := e.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
