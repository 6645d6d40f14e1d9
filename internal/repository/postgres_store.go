package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"FinPulse/internal/domain/models"
	"FinPulse/internal/domain/repository"
	"FinPulse/pkg/config"
	applogger "FinPulse/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

// GormStore implements repository.Store on any gorm dialect. Production uses
// Postgres; tests use SQLite.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates every table and index.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return unavailable(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) InsertPrices(ctx context.Context, obs []models.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&obs, 500).Error
	})
	if err != nil {
		return classify("insert prices", err)
	}
	return nil
}

func (s *GormStore) RecentPrices(ctx context.Context, ticker string, since time.Time) ([]models.PriceObservation, error) {
	var rows []models.PriceObservation
	err := s.db.WithContext(ctx).
		Where("asset_ticker = ? AND timestamp > ?", ticker, since.UTC()).
		Order("timestamp DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, classify("recent prices", err)
	}
	return rows, nil
}

func (s *GormStore) PriceHistory(ctx context.Context, ticker string, from, to time.Time, limit int) ([]models.PriceObservation, error) {
	var rows []models.PriceObservation
	q := s.db.WithContext(ctx).
		Where("asset_ticker = ? AND timestamp >= ? AND timestamp <= ?", ticker, from.UTC(), to.UTC()).
		Order("timestamp ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	if err != nil {
		return nil, classify("price history", err)
	}
	return rows, nil
}

// InsertNewsIfAbsent keeps the exact-headline existence check and also relies
// on the unique index, so concurrent harvesters cannot both insert a headline.
func (s *GormStore) InsertNewsIfAbsent(ctx context.Context, news []models.NewsHeadline) (int, error) {
	if len(news) == 0 {
		return 0, nil
	}
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted = 0
		seen := make(map[string]struct{}, len(news))
		for i := range news {
			h := news[i]
			if h.Headline == "" {
				continue
			}
			if _, dup := seen[h.Headline]; dup {
				continue
			}
			seen[h.Headline] = struct{}{}

			var n int64
			if err := tx.Model(&models.NewsHeadline{}).Where("headline = ?", h.Headline).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			h.ID = 0
			h.SentimentScore = nil
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "headline"}},
				DoNothing: true,
			}).Create(&h)
			if res.Error != nil {
				return res.Error
			}
			inserted += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, classify("insert news", err)
	}
	return inserted, nil
}

func (s *GormStore) UnscoredNews(ctx context.Context, afterID uint64, limit int) ([]models.NewsHeadline, error) {
	var rows []models.NewsHeadline
	q := s.db.WithContext(ctx).Where("sentiment_score IS NULL AND id > ?", afterID).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify("unscored news", err)
	}
	return rows, nil
}

func (s *GormStore) SetSentiment(ctx context.Context, id uint64, score float64) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.NewsHeadline{}).
		Where("id = ? AND sentiment_score IS NULL", id).
		Update("sentiment_score", score)
	if res.Error != nil {
		return false, classify("set sentiment", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) LatestNews(ctx context.Context, limit int, scored *bool) ([]models.NewsHeadline, error) {
	var rows []models.NewsHeadline
	q := s.db.WithContext(ctx).Order("published_at DESC").Order("id DESC").Limit(limit)
	if scored != nil {
		if *scored {
			q = q.Where("sentiment_score IS NOT NULL")
		} else {
			q = q.Where("sentiment_score IS NULL")
		}
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify("latest news", err)
	}
	return rows, nil
}

func (s *GormStore) InsertOpportunity(ctx context.Context, o *models.Opportunity) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return classify("insert opportunity", err)
	}
	return nil
}

func (s *GormStore) LatestOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	var rows []models.Opportunity
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, classify("latest opportunities", err)
	}
	return rows, nil
}

func (s *GormStore) OpportunitiesAfter(ctx context.Context, afterID uint64, limit int) ([]models.Opportunity, error) {
	var rows []models.Opportunity
	err := s.db.WithContext(ctx).Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, classify("opportunities after", err)
	}
	return rows, nil
}

func (s *GormStore) ReplacePredictions(ctx context.Context, ticker string, preds []models.PricePrediction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_ticker = ?", ticker).Delete(&models.PricePrediction{}).Error; err != nil {
			return err
		}
		if len(preds) == 0 {
			return nil
		}
		rows := make([]models.PricePrediction, len(preds))
		for i, p := range preds {
			p.ID = 0
			p.AssetTicker = ticker
			rows[i] = p
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return classify("replace predictions", err)
	}
	return nil
}

func (s *GormStore) Predictions(ctx context.Context, ticker string) ([]models.PricePrediction, error) {
	var rows []models.PricePrediction
	err := s.db.WithContext(ctx).Where("asset_ticker = ?", ticker).Order("prediction_date ASC").Find(&rows).Error
	if err != nil {
		return nil, classify("predictions", err)
	}
	return rows, nil
}

// PostgresConnector opens the Postgres store lazily and re-pings it on every
// Connect, so a process started while the database is down recovers on a
// later cycle.
type PostgresConnector struct {
	cfg *config.Config
	log *applogger.Logger

	mu    sync.Mutex
	store *GormStore
}

func NewPostgresConnector(cfg *config.Config, l *applogger.Logger) *PostgresConnector {
	return &PostgresConnector{cfg: cfg, log: l}
}

func (c *PostgresConnector) Connect(ctx context.Context) (repository.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		db, err := openPostgres(c.cfg)
		if err != nil {
			return nil, unavailable(err)
		}
		store := NewGormStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, classify("migrate", err)
		}
		c.store = store
		c.log.Info("connected to postgres")
	}

	if err := c.store.Ping(ctx); err != nil {
		return nil, err
	}
	return c.store, nil
}

func (c *PostgresConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func openPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.Database.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogLevel(cfg.Database.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	return db, nil
}

func gormLogLevel(s string) gormLogger.LogLevel {
	switch s {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}

// StaticConnector always hands out the same store. Used by tests and by
// callers that manage the connection themselves.
type StaticConnector struct {
	Store repository.Store
	Err   error
}

func (c *StaticConnector) Connect(ctx context.Context) (repository.Store, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if err := c.Store.Ping(ctx); err != nil {
		return nil, err
	}
	return c.Store, nil
}

func (c *StaticConnector) Close() error { return nil }

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}

// classify marks connection-level failures as ErrStoreUnavailable and wraps
// everything else with the operation name.
func classify(op string, err error) error {
	if IsConnectionError(err) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsConnectionError reports whether err means the database could not be reached.
func IsConnectionError(err error) bool {
	if errors.Is(err, models.ErrStoreUnavailable) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
