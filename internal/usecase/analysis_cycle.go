package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"
	applogger "FinPulse/pkg/logger"

	"github.com/google/uuid"
)

// AnalysisReport summarizes one analysis cycle.
type AnalysisReport struct {
	CycleID       string
	Opportunities int
	Scored        int
	Forecasted    int
	ForecastRan   bool
	Errors        map[string]error
}

// AnalysisCycle runs arbitrage detection, then sentiment scoring, then the
// forecast job when the daily gate is open.
type AnalysisCycle struct {
	connector domrepo.Connector
	arbitrage *ArbitrageDetector
	sentiment *SentimentJob
	forecast  *ForecastJob
	gate      *DailyGate
	metrics   domrepo.Metrics
	log       *applogger.Logger
}

func NewAnalysisCycle(connector domrepo.Connector, arbitrage *ArbitrageDetector, sentiment *SentimentJob, forecast *ForecastJob, gate *DailyGate, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisCycle {
	return &AnalysisCycle{
		connector: connector,
		arbitrage: arbitrage,
		sentiment: sentiment,
		forecast:  forecast,
		gate:      gate,
		metrics:   metrics,
		log:       l,
	}
}

// Run executes one cycle. Job failures are isolated; a store failure ends
// the cycle early and leaves the daily gate closed for retry.
func (a *AnalysisCycle) Run(ctx context.Context) (AnalysisReport, error) {
	report := AnalysisReport{CycleID: uuid.NewString(), Errors: map[string]error{}}
	log := a.log.With(applogger.String("cycle_id", report.CycleID), applogger.String("loop", "analyze"))
	log.Info("analysis cycle started")
	start := time.Now()

	store, err := a.connector.Connect(ctx)
	if err != nil {
		a.metrics.RecordError("store_connect")
		return report, fmt.Errorf("analyze: %w", err)
	}

	sigs, err := a.arbitrage.Run(ctx, store)
	report.Opportunities = len(sigs)
	if err != nil {
		if stop := a.jobFailed(log, &report, "arbitrage", err); stop {
			return report, err
		}
	}

	n, err := a.sentiment.ScorePending(ctx, store)
	report.Scored = n
	if err != nil {
		if stop := a.jobFailed(log, &report, "sentiment", err); stop {
			return report, err
		}
	}

	if a.forecast != nil && a.gate.Due() {
		report.ForecastRan = true
		n, err := a.forecast.RunAll(ctx, store)
		report.Forecasted = n
		if err != nil {
			if stop := a.jobFailed(log, &report, "forecast", err); stop {
				return report, err
			}
		}
		a.gate.MarkRun()
	} else if a.forecast != nil {
		log.Debug("forecast already run today", applogger.Any("last_run", a.gate.LastRun()))
	}

	log.Info("analysis cycle finished",
		applogger.Duration("duration", time.Since(start)),
		applogger.Int("opportunities", report.Opportunities),
		applogger.Int("scored", report.Scored),
		applogger.Bool("forecast_ran", report.ForecastRan),
	)
	return report, nil
}

// jobFailed records err and reports whether the cycle must stop.
func (a *AnalysisCycle) jobFailed(log *applogger.Logger, report *AnalysisReport, job string, err error) bool {
	report.Errors[job] = err
	a.metrics.RecordError(job)
	log.Error("job failed", applogger.String("job", job), applogger.Error(err))
	return errors.Is(err, models.ErrStoreUnavailable) || errors.Is(err, context.Canceled)
}
