package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"omtours/models"
)

var ErrNotFound = errors.New("itinerary not found")

// ─── Models ──────────────────────────────────────────────────────────────────

// ArchivedItinerary is one generated itinerary together with the form values that produced it.
type ArchivedItinerary struct {
	ID          string                    `json:"id"`
	Destination string                    `json:"destination"`
	Origin      string                    `json:"origin"`
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	Request     models.TripRequest        `json:"request"`
	Response    *models.ItineraryResponse `json:"response"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// Archive stores generated itineraries in Postgres.
type Archive struct {
	db     *sql.DB
	logger *zap.Logger
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// Open connects to Postgres, waiting for the database to come up, and runs migrations.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn("waiting for database", zap.Int("attempt", i+1), zap.Error(err))
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database after retries: %w", err)
	}

	archive := NewArchive(db, logger)
	if err := archive.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("itinerary archive connected and migrated")
	return archive, nil
}

func NewArchive(db *sql.DB, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{db: db, logger: logger}
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// The documents are stored as JSON rather than JSONB so budget categories keep their order.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS itineraries (
		id            TEXT PRIMARY KEY,
		destination   TEXT NOT NULL,
		origin        TEXT NOT NULL,
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		request_json  JSON NOT NULL,
		response_json JSON NOT NULL,
		created_at    TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_itineraries_created_at
		ON itineraries(created_at DESC)`,
}

func (a *Archive) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := a.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

// Save archives an itinerary and returns its new id.
func (a *Archive) Save(ctx context.Context, req models.TripRequest, resp *models.ItineraryResponse) (string, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("encode itinerary: %w", err)
	}

	id := uuid.New().String()
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO itineraries (id, destination, origin, start_date, end_date, request_json, response_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, req.Destination, req.OriginLocation, req.StartDate, req.EndDate, reqJSON, respJSON)
	if err != nil {
		return "", fmt.Errorf("insert itinerary: %w", err)
	}
	return id, nil
}

const selectColumns = `id, destination, origin, start_date, end_date, request_json, response_json, created_at`

func (a *Archive) Get(ctx context.Context, id string) (*ArchivedItinerary, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM itineraries WHERE id = $1`, id)
	it, err := scanItinerary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return it, err
}

// Recent lists the newest itineraries first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]ArchivedItinerary, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM itineraries ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	out := []ArchivedItinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItinerary(s scanner) (*ArchivedItinerary, error) {
	var (
		it       ArchivedItinerary
		reqJSON  []byte
		respJSON []byte
	)
	if err := s.Scan(&it.ID, &it.Destination, &it.Origin, &it.StartDate, &it.EndDate,
		&reqJSON, &respJSON, &it.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reqJSON, &it.Request); err != nil {
		return nil, fmt.Errorf("decode archived request: %w", err)
	}
	it.Response = &models.ItineraryResponse{}
	if err := json.Unmarshal(respJSON, it.Response); err != nil {
		return nil, fmt.Errorf("decode archived itinerary: %w", err)
	}
	return &it, nil
}
