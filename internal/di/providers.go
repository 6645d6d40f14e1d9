package di

import (
	"context"
	"fmt"

	domrepo "FinPulse/internal/domain/repository"
	domsvc "FinPulse/internal/domain/service"
	"FinPulse/internal/handler/api"
	internalrepo "FinPulse/internal/repository"
	"FinPulse/internal/service/cache"
	"FinPulse/internal/service/coindcx"
	"FinPulse/internal/service/newsapi"
	"FinPulse/internal/service/ratelimit"
	"FinPulse/internal/service/wazirx"
	"FinPulse/internal/service/yahoo"
	"FinPulse/internal/services/analytics"
	"FinPulse/internal/usecase"
	pkgch "FinPulse/pkg/clickhouse"
	"FinPulse/pkg/config"
	xhttp "FinPulse/pkg/http"
	pkgkafka "FinPulse/pkg/kafka"
	applogger "FinPulse/pkg/logger"
	"FinPulse/pkg/metrics"
	"FinPulse/pkg/server"
)

const archiveTable = "price_ticks"

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideConnector creates the lazy Postgres connector.
func ProvideConnector(cfg *config.Config, l *applogger.Logger) (domrepo.Connector, func()) {
	c := internalrepo.NewPostgresConnector(cfg, l)
	return c, func() {
		if err := c.Close(); err != nil {
			l.Warn("postgres close error", applogger.Error(err))
		}
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes to Kafka when a producer exists and drops
// events otherwise.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) (domrepo.EventPublisher, func()) {
	if producer == nil {
		return internalrepo.NopPublisher{}, func() {}
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.PriceTopic, cfg.Kafka.OpportunityTopic)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
}

func ProvideYahooClient(cfg *config.Config) *yahoo.Client {
	return yahoo.NewClient(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Timeout)
}

// ProvideSourceAdapters returns the adapters in harvest order.
func ProvideSourceAdapters(cfg *config.Config, y *yahoo.Client, l *applogger.Logger) []domrepo.SourceAdapter {
	p := cfg.Providers
	return []domrepo.SourceAdapter{
		usecase.NewEquityAdapter(y, cfg.Harvest.StockTickers, l),
		usecase.NewWazirXAdapter(wazirx.NewClient(p.WazirX.BaseURL, p.Timeout), cfg.Harvest.CryptoPairs, l),
		usecase.NewCoinDCXAdapter(coindcx.NewClient(p.CoinDCX.BaseURL, p.Timeout), cfg.Harvest.CryptoPairs, l),
		usecase.NewNewsAdapter(newsapi.NewClient(p.NewsAPI.BaseURL, p.NewsAPI.APIKey, p.Timeout), cfg.Harvest.NewsTerms, cfg.Harvest.NewsPageSize, l),
	}
}

func ProvideHarvestCycle(connector domrepo.Connector, adapters []domrepo.SourceAdapter, pub domrepo.EventPublisher, m domrepo.Metrics, l *applogger.Logger) *usecase.HarvestCycle {
	return usecase.NewHarvestCycle(connector, adapters, pub, m, l)
}

// ProvideForecaster uses the model service when configured, falling back to
// the in-process model.
func ProvideForecaster(cfg *config.Config, l *applogger.Logger) domsvc.Forecaster {
	local := analytics.NewHoltForecaster()
	if cfg.Analytics.ServiceURL == "" {
		return local
	}
	base := analytics.NewHTTPServiceBase(cfg.Analytics.ServiceURL, cfg.Analytics.Timeout, cfg.Analytics.Retries)
	return analytics.NewFallbackForecaster(analytics.NewHTTPForecaster(base), local, l)
}

func ProvideSentimentScorer(cfg *config.Config, l *applogger.Logger) domsvc.SentimentScorer {
	local := analytics.NewVaderScorer()
	if cfg.Analytics.ServiceURL == "" {
		return local
	}
	base := analytics.NewHTTPServiceBase(cfg.Analytics.ServiceURL, cfg.Analytics.Timeout, cfg.Analytics.Retries)
	return analytics.NewFallbackScorer(analytics.NewHTTPSentimentScorer(base), local, l)
}

func ProvideAnalysisCycle(
	cfg *config.Config,
	connector domrepo.Connector,
	pub domrepo.EventPublisher,
	y *yahoo.Client,
	forecaster domsvc.Forecaster,
	scorer domsvc.SentimentScorer,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisCycle {
	a := cfg.Analysis
	clock := usecase.SystemClock()
	return usecase.NewAnalysisCycle(
		connector,
		usecase.NewArbitrageDetector(a.ArbitragePairs, a.ArbitrageWindow, a.ArbitrageThreshold, clock, pub, m, l),
		usecase.NewSentimentJob(scorer, m, l),
		usecase.NewForecastJob(y, forecaster, a.ForecastTickers, a.ForecastHorizon, a.MinHistory, m, l),
		usecase.NewDailyGate(clock),
		m, l,
	)
}

// ProvideMetricsServer exposes /metrics and /healthz for the loop processes.
func ProvideMetricsServer(cfg *config.Config, l *applogger.Logger) *xhttp.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return xhttp.NewServer(nil,
		xhttp.WithPort(cfg.Metrics.Port),
		xhttp.WithCORS(false),
		xhttp.WithMetrics(true),
		xhttp.WithLogger(l),
	)
}

func ProvideHarvestApp(cfg *config.Config, cycle *usecase.HarvestCycle, srv *xhttp.Server, m domrepo.Metrics, l *applogger.Logger) *server.App {
	loop := usecase.NewLoop("harvest", cfg.Harvest.Interval, func(ctx context.Context) error {
		_, err := cycle.Run(ctx)
		return err
	}, m, l)
	return server.New(cfg, l, server.NewLoopRunner("harvest", loop), srv)
}

func ProvideAnalyzeApp(cfg *config.Config, cycle *usecase.AnalysisCycle, srv *xhttp.Server, m domrepo.Metrics, l *applogger.Logger) *server.App {
	loop := usecase.NewLoop("analyze", cfg.Analysis.Interval, func(ctx context.Context) error {
		_, err := cycle.Run(ctx)
		return err
	}, m, l)
	return server.New(cfg, l, server.NewLoopRunner("analyze", loop), srv)
}

// ProvideForecastCache uses Redis when enabled and process memory otherwise.
func ProvideForecastCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewTTLCache(), func() {}, nil
	}
	rc, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}, nil
}

func ProvideDashboard(cfg *config.Config, connector domrepo.Connector, forecaster domsvc.Forecaster, c cache.BytesCache, l *applogger.Logger) *usecase.Dashboard {
	d := cfg.Dashboard
	return usecase.NewDashboard(connector, forecaster, c,
		ratelimit.New(d.RecomputeBurst, d.RecomputeRefill),
		usecase.DashboardOptions{
			Assets:     d.Assets,
			Horizon:    cfg.Analysis.ForecastHorizon,
			MinHistory: cfg.Analysis.MinHistory,
			CacheTTL:   d.ForecastTTL,
			Timeout:    cfg.Server.WriteTimeout,
		}, l)
}

func ProvideDashboardApp(cfg *config.Config, dash *usecase.Dashboard, l *applogger.Logger) *server.App {
	handler := xhttp.Handlers{
		api.NewDashboardHandler(l, dash),
		api.NewOpportunityStream(l, dash, cfg.Dashboard.StreamPoll),
	}
	srv := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(cfg.Metrics.Enabled),
		xhttp.WithLogger(l),
	)
	return server.New(cfg, l, server.NewServeRunner("dashboard"), srv)
}

// ProvideClickHouseClient creates a ClickHouse client for the archive process.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil, fmt.Errorf("archive needs clickhouse.enabled")
	}
	c := cfg.ClickHouse
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithAddress(c.Host, c.Port),
		pkgch.WithDatabase(c.Database),
		pkgch.WithCredentials(c.User, c.Password),
		pkgch.WithHTTP(c.UseHTTP),
		pkgch.WithAsyncInsert(c.AsyncInsert, c.WaitForAsync),
		pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout),
		pkgch.WithMaxExecutionTime(c.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

func ProvideTickArchive(cfg *config.Config, client *pkgch.Client) domrepo.TickArchive {
	return internalrepo.NewClickHouseArchive(client.DB(), cfg.ClickHouse.Database, archiveTable)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, fmt.Errorf("archive needs kafka.enabled")
	}
	k := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(k.GroupID),
		pkgkafka.WithConsumerWorkers(k.Workers),
		pkgkafka.WithConsumerBufferSize(k.BufferSize),
		pkgkafka.WithConsumerRetry(k.RetryMax, k.BackoffMin, k.BackoffMax),
		pkgkafka.WithConsumerDLQ(k.DLQTopic),
		pkgkafka.WithConsumerFetch(k.MinBytes, k.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideArchiveHandler(cfg *config.Config, archive domrepo.TickArchive, m domrepo.Metrics) *usecase.ArchiveHandler {
	return usecase.NewArchiveHandler(cfg.Kafka.PriceTopic, archive, m)
}

func ProvideArchiveApp(cfg *config.Config, archive domrepo.TickArchive, consumer *pkgkafka.Consumer, h *usecase.ArchiveHandler, srv *xhttp.Server, l *applogger.Logger) *server.App {
	runner := server.NewArchiveRunner(archive, consumer, h, cfg.Server.ShutdownTimeout, l)
	return server.New(cfg, l, runner, srv)
}
