//go:build wireinject
// +build wireinject

package di

import (
	"FinPulse/pkg/config"
	"FinPulse/pkg/server"

	"github.com/google/wire"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
)

var storeSet = wire.NewSet(
	ProvideConnector,
	ProvideKafkaProducer,
	ProvideEventPublisher,
)

// InitializeHarvester wires the harvest process.
func InitializeHarvester(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		storeSet,
		ProvideYahooClient,
		ProvideSourceAdapters,
		ProvideHarvestCycle,
		ProvideMetricsServer,
		ProvideHarvestApp,
	)
	return nil, nil, nil
}

// InitializeAnalyzer wires the analysis process.
func InitializeAnalyzer(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		storeSet,
		ProvideYahooClient,
		ProvideForecaster,
		ProvideSentimentScorer,
		ProvideAnalysisCycle,
		ProvideMetricsServer,
		ProvideAnalyzeApp,
	)
	return nil, nil, nil
}

// InitializeDashboard wires the dashboard API process.
func InitializeDashboard(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideConnector,
		ProvideForecaster,
		ProvideForecastCache,
		ProvideDashboard,
		ProvideDashboardApp,
	)
	return nil, nil, nil
}

// InitializeArchiver wires the Kafka to ClickHouse archive process.
func InitializeArchiver(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		baseSet,
		ProvideClickHouseClient,
		ProvideTickArchive,
		ProvideKafkaConsumer,
		ProvideArchiveHandler,
		ProvideMetricsServer,
		ProvideArchiveApp,
	)
	return nil, nil, nil
}
