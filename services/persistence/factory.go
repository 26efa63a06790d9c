package persistence

import (
	"context"
	"fmt"

	"moveline/config"
	"moveline/database"
	recordsRepo "moveline/database/repository/records"
	"moveline/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Backend names accepted by PERSISTENCE_BACKEND.
const (
	BackendSheets = "sheets"
	BackendMongo  = "mongo"
	BackendBoth   = "both"
)

// NewFromConfig builds the configured backend. With "both" the spreadsheet is
// primary and Mongo mirrors it. A non-nil cache wraps the result with the
// bookings-by-day cache.
func NewFromConfig(ctx context.Context, cfg config.Config, cache *redis.Client, logger *zap.Logger) (Recorder, error) {
	var rec Recorder
	switch cfg.PersistenceBackend {
	case BackendSheets:
		s, err := newSheets(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rec = s
	case BackendMongo:
		rec = newMongo(logger)
	case BackendBoth:
		s, err := newSheets(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rec = NewFanout(logger, s, newMongo(logger))
	default:
		return nil, fmt.Errorf("NewFromConfig: unknown persistence backend %q", cfg.PersistenceBackend)
	}

	if cache != nil {
		rec = NewCachedRecorder(rec, cache, utils.BookingsDayTTL, logger)
	}
	return rec, nil
}

func newSheets(ctx context.Context, cfg config.Config) (*SheetsRecorder, error) {
	if cfg.BookingSheetID == "" {
		return nil, fmt.Errorf("NewFromConfig: BOOKING_SHEET_ID is required for the sheets backend")
	}
	srv, err := NewSheetsService(ctx, cfg.GoogleSheetsCreds)
	if err != nil {
		return nil, err
	}
	rec := NewSheetsRecorder(srv, cfg.BookingSheetID)
	if err := rec.EnsureHeaders(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func newMongo(logger *zap.Logger) *MongoRecorder {
	repo, err := recordsRepo.NewMongoRecordRepo(database.Database())
	if err != nil {
		// Queries still work without indexes.
		logger.Warn("Mongo index creation failed", zap.Error(err))
	}
	return NewMongoRecorder(repo)
}
