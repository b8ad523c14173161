package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/slickwilli/neoview/models"
	"github.com/slickwilli/neoview/pkg/glucose"
)

const createReadingsTable = `
CREATE TABLE IF NOT EXISTS glucose_readings (
	ID String,
	GlucoseValue Float64,
	Category LowCardinality(String),
	Color String,
	Timestamp String,
	DeviceID String,
	CreatedAt DateTime64(6, 'UTC')
)
ENGINE = MergeTree
ORDER BY (CreatedAt, ID)
`

const selectReadings = `SELECT ID, GlucoseValue, Category, Color, Timestamp, DeviceID, CreatedAt FROM glucose_readings`

type ClickHouseOptions struct {
	Addresses []string
	Database  string
	Username  string
	Password  string
}

type ClickHouseStore struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

type readingRow struct {
	ID           string    `ch:"ID"`
	GlucoseValue float64   `ch:"GlucoseValue"`
	Category     string    `ch:"Category"`
	Color        string    `ch:"Color"`
	Timestamp    string    `ch:"Timestamp"`
	DeviceID     string    `ch:"DeviceID"`
	CreatedAt    time.Time `ch:"CreatedAt"`
}

type categoryRow struct {
	Category string  `ch:"Category"`
	Count    uint64  `ch:"Count"`
	Sum      float64 `ch:"Sum"`
}

// NewClickHouseStore connects and makes sure the readings table exists.
func NewClickHouseStore(ctx context.Context, logger *zap.Logger, opts ClickHouseOptions) (*ClickHouseStore, error) {
	logger = logger.Named("clickhouse")
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: opts.Addresses,
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, err
	}
	v, err := conn.ServerVersion()
	if err != nil {
		return nil, err
	}
	logger.Info("connected to clickhouse server", zap.String("version", v.Version.String()), zap.Uint64("revision", v.Revision))
	if err := conn.Exec(ctx, createReadingsTable); err != nil {
		return nil, fmt.Errorf("create glucose_readings: %w", err)
	}
	return &ClickHouseStore{conn: conn, logger: logger}, nil
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

func (s *ClickHouseStore) Insert(ctx context.Context, r models.Reading) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO glucose_readings")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	if err := batch.AppendStruct(&readingRow{
		ID:           r.ID,
		GlucoseValue: r.GlucoseValue,
		Category:     string(r.Category),
		Color:        r.Color,
		Timestamp:    r.Timestamp,
		DeviceID:     r.DeviceID,
		CreatedAt:    r.CreatedAt.UTC(),
	}); err != nil {
		return fmt.Errorf("append reading: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send insert: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Latest(ctx context.Context) (*models.Reading, error) {
	readings, err := s.History(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

func (s *ClickHouseStore) History(ctx context.Context, limit int) ([]models.Reading, error) {
	if limit <= 0 {
		return []models.Reading{}, nil
	}
	var rows []readingRow
	if err := s.conn.Select(ctx, &rows, selectReadings+" ORDER BY CreatedAt DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("select readings: %w", err)
	}
	out := make([]models.Reading, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Reading{
			ID:           row.ID,
			GlucoseValue: row.GlucoseValue,
			Category:     models.Category(row.Category),
			Color:        row.Color,
			Timestamp:    row.Timestamp,
			DeviceID:     row.DeviceID,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, nil
}

// Stats reads every figure from one grouped query so the distribution always
// adds up to the total, even with inserts running alongside.
func (s *ClickHouseStore) Stats(ctx context.Context) (models.Stats, error) {
	var rows []categoryRow
	if err := s.conn.Select(ctx, &rows, "SELECT Category, count() AS Count, sum(GlucoseValue) AS Sum FROM glucose_readings GROUP BY Category"); err != nil {
		return models.Stats{CategoryDistribution: models.Distribution{}}, fmt.Errorf("select category totals: %w", err)
	}
	return statsFromCategoryRows(rows), nil
}

func statsFromCategoryRows(rows []categoryRow) models.Stats {
	stats := models.Stats{CategoryDistribution: models.Distribution{}}
	var sum float64
	for _, row := range rows {
		if row.Count == 0 {
			continue
		}
		stats.CategoryDistribution[models.Category(row.Category)] += int(row.Count)
		stats.TotalReadings += int(row.Count)
		sum += row.Sum
	}
	if stats.TotalReadings > 0 {
		stats.AverageGlucose = glucose.RoundAverage(sum / float64(stats.TotalReadings))
	}
	return stats
}

// Clear truncates the table. ClickHouse has no transaction around the count
// and the TRUNCATE, so a reading inserted between the two is removed without
// being counted in the returned total.
func (s *ClickHouseStore) Clear(ctx context.Context) (int, error) {
	var total uint64
	if err := s.conn.QueryRow(ctx, "SELECT count() FROM glucose_readings").Scan(&total); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	if err := s.conn.Exec(ctx, "TRUNCATE TABLE glucose_readings"); err != nil {
		return 0, fmt.Errorf("truncate readings: %w", err)
	}
	s.logger.Info("cleared glucose readings", zap.Uint64("deleted", total))
	return int(total), nil
}
