// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"campus_care_backend/internal/app"
	"campus_care_backend/internal/auth"
	"campus_care_backend/internal/classifier"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/jobs"
	"campus_care_backend/internal/mailer"
	"campus_care_backend/internal/notification"
	"campus_care_backend/internal/platform/metrics"
	"campus_care_backend/internal/report"
	"campus_care_backend/internal/settings"
	"campus_care_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		provideDatabase,
		metrics.NewDefault,
		provideImageStore,
		provideSettingsCache,

		// Auth
		auth.NewJWTService,
		provideBlocklist,
		wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
		auth.NewHandler,

		// Users
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Settings
		settings.NewGORMRepository,
		settings.NewService,
		wire.Bind(new(settings.Service), new(*settings.ServiceImplementation)),
		settings.NewHandler,

		// Notifications
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,

		// Complaints
		classifier.NewHTTPClient,
		wire.Bind(new(classifier.Classifier), new(*classifier.HTTPClient)),
		complaint.NewGORMRepository,
		complaint.NewService,
		wire.Bind(new(complaint.Service), new(*complaint.ServiceImplementation)),
		wire.Bind(new(complaint.Notifier), new(*notification.ServiceImplementation)),
		wire.Bind(new(complaint.UserDirectory), new(user.Repository)),
		complaint.NewHandler,

		// Reports
		report.NewChromeRenderer,
		wire.Bind(new(report.Renderer), new(*report.ChromeRenderer)),
		mailer.NewSMTPMailer,
		wire.Bind(new(mailer.Mailer), new(*mailer.SMTPMailer)),
		report.NewService,
		wire.Bind(new(report.Service), new(*report.ServiceImplementation)),
		wire.Bind(new(report.Aggregator), new(complaint.Repository)),
		wire.Bind(new(report.Recipients), new(user.Repository)),
		wire.Bind(new(report.SettingsReader), new(*settings.ServiceImplementation)),
		report.NewHandler,

		// Jobs
		jobs.NewEscalationJob,
		wire.Bind(new(jobs.Escalator), new(*complaint.ServiceImplementation)),
		wire.Bind(new(jobs.SettingsReader), new(*settings.ServiceImplementation)),

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
