//go:build wireinject
// +build wireinject

package di

import (
	"PulseGateway/internal/handler/api"
	"PulseGateway/internal/service/ratelimit"
	"PulseGateway/internal/usecase"
	"PulseGateway/pkg/config"
	"PulseGateway/pkg/scheduler"
	"PulseGateway/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisCache,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaConsumer,

		// Upstreams and repositories
		ProvideSession,
		ProvidePulseAPI,
		ProvideCareAPI,
		ProvideWeatherProvider,
		ProvideAgentResultsSource,
		ProvideAlertPublisher,
		ProvideAlertStore,
		ProvideOutbox,
		ProvideOutboxConsumer,

		// Alert event path
		ProvideAlertEventProcessor,
		ProvideAlertPipeline,
		ProvideAlertBoard,
		ProvideAlertSynthesizer,

		// Use cases
		usecase.NewSequencer,
		ratelimit.New,
		usecase.NewApprovalsUseCase,
		ProvideDashboardUseCase,
		usecase.NewAlertsUseCase,
		usecase.NewAlertHistoryUseCase,
		usecase.NewResourcesUseCase,
		usecase.NewForecastLabUseCase,
		usecase.NewExportUseCase,
		ProvideScenarioUseCase,
		ProvideWeatherUseCase,
		ProvideAgentResultsUseCase,
		ProvideChatUseCase,
		ProvideHospitalUseCase,
		ProvidePollJobs,

		// HTTP
		api.NewDashboardHandler,
		api.NewAlertsHandler,
		api.NewForecastHandler,
		api.NewInsightsHandler,
		api.NewCareHandler,
		ProvideRouter,

		// Application server
		scheduler.New,
		ProvideApp,
	)
	return &server.App{}, nil
}
