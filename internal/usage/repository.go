package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// ErrDisabled 는 사용량 DB 가 비활성화된 상태에서 조회할 때 반환된다.
var ErrDisabled = errors.New("usage db disabled")

// Repository 는 usage DB 접근을 담당한다. 연결은 첫 사용 시 연다.
type Repository struct {
	cfg    *config.Config
	logger *slog.Logger
	loc    *time.Location
	mu     sync.Mutex
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewRepository 는 usage 저장소를 생성한다.
func NewRepository(cfg *config.Config, logger *slog.Logger) *Repository {
	loc := time.Local
	if cfg != nil {
		loc = cfg.Admission.Location()
	}
	return &Repository{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
	}
}

// Enabled 는 설정상 DB 사용 여부다.
func (r *Repository) Enabled() bool {
	return r != nil && r.cfg != nil && r.cfg.Database.UsageEnabled
}

// RecordUsage 는 지정한 날짜(또는 오늘)의 집계에 증가분을 누적 저장한다.
func (r *Repository) RecordUsage(ctx context.Context, delta Delta, usageDate time.Time) error {
	if delta.IsZero() {
		return nil
	}

	db, err := r.getDB(ctx)
	if err != nil {
		return err
	}

	targetDate := usageDate
	if targetDate.IsZero() {
		targetDate = dateOf(time.Now(), r.loc)
	}

	row := ChatUsage{
		UsageDate:    targetDate,
		RequestCount: delta.Requests,
		InputChars:   delta.InputChars,
		OutputChars:  delta.OutputChars,
		Version:      0,
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "usage_date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"request_count": gorm.Expr("chat_usage.request_count + EXCLUDED.request_count"),
			"input_chars":   gorm.Expr("chat_usage.input_chars + EXCLUDED.input_chars"),
			"output_chars":  gorm.Expr("chat_usage.output_chars + EXCLUDED.output_chars"),
			"version":       gorm.Expr("chat_usage.version + 1"),
		}),
	}).Create(&row).Error
}

// GetRecentUsage 는 최근 N일 사용량을 최신순으로 조회한다.
func (r *Repository) GetRecentUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	var rows []ChatUsage
	if err := db.WithContext(ctx).Order("usage_date desc").Limit(days).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query recent usage: %w", err)
	}

	usages := make([]DailyUsage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, DailyUsage{
			UsageDate:    row.UsageDate,
			RequestCount: row.RequestCount,
			InputChars:   row.InputChars,
			OutputChars:  row.OutputChars,
		})
	}
	return usages, nil
}

// Ping 은 DB 연결을 확인한다.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.getDB(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	sqlDB := r.sqlDB
	r.mu.Unlock()
	if sqlDB == nil {
		return ErrDisabled
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping usage db: %w", err)
	}
	return nil
}

// Close 는 DB 연결을 닫는다.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sqlDB == nil {
		return
	}
	_ = r.sqlDB.Close()
	r.sqlDB = nil
	r.db = nil
}

func (r *Repository) getDB(_ context.Context) (*gorm.DB, error) {
	if !r.Enabled() {
		return nil, ErrDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	db, err := gorm.Open(postgres.Open(r.cfg.Database.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if schemaErr := ensureUsageSchema(db); schemaErr != nil {
		return nil, fmt.Errorf("prepare usage db: %w", schemaErr)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get usage db handle: %w", err)
	}

	if r.cfg.Database.MaxPool > 0 {
		sqlDB.SetMaxOpenConns(r.cfg.Database.MaxPool)
		sqlDB.SetMaxIdleConns(r.cfg.Database.MaxPool)
	}
	if r.cfg.Database.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(r.cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	}
	if r.cfg.Database.ConnMaxIdleTimeMinutes > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(r.cfg.Database.ConnMaxIdleTimeMinutes) * time.Minute)
	}

	if r.logger != nil {
		r.logger.Info("usage_db_connected", "host", r.cfg.Database.Host, "name", r.cfg.Database.Name)
	}

	r.db = db
	r.sqlDB = sqlDB
	return db, nil
}

func ensureUsageSchema(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}

	if err := db.Exec(`
			CREATE TABLE IF NOT EXISTS chat_usage (
				id BIGSERIAL PRIMARY KEY,
				usage_date DATE NOT NULL,
				request_count BIGINT NOT NULL DEFAULT 0,
				input_chars BIGINT NOT NULL DEFAULT 0,
				output_chars BIGINT NOT NULL DEFAULT 0,
				version BIGINT NOT NULL DEFAULT 0
			)
		`).Error; err != nil {
		return fmt.Errorf("create chat_usage table: %w", err)
	}

	if err := db.Exec(`
			CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_usage_usage_date
			ON chat_usage (usage_date)
		`).Error; err != nil {
		return fmt.Errorf("create chat_usage usage_date unique index: %w", err)
	}

	return nil
}

// dateOf 는 loc 기준 자정 시각을 반환한다.
func dateOf(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
