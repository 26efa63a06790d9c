package recordsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moveline/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// RecordRepository stores booking/lead rows, customers and call logs.
type RecordRepository interface {
	InsertRecord(ctx context.Context, record models.Record) error
	InsertCallLog(ctx context.Context, entry models.CallLog) error
	UpsertCustomer(ctx context.Context, customer models.Customer) error
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindBookingsByDate(ctx context.Context, date string) ([]models.Record, error)
	CountBookingsBetween(ctx context.Context, from, to string) (int64, error)
	LatestBookingByPhone(ctx context.Context, phone string) (*models.Record, error)
	SetAddresses(ctx context.Context, id, pickup, dropoff string) error
}

type mongoRecordRepo struct {
	records   *mongo.Collection
	customers *mongo.Collection
	calls     *mongo.Collection
}

// NewMongoRecordRepo returns a RecordRepository backed by db. Index creation
// failures are returned; the caller decides whether they are fatal.
func NewMongoRecordRepo(db *mongo.Database) (RecordRepository, error) {
	repo := &mongoRecordRepo{
		records:   db.Collection("records"),
		customers: db.Collection("customers"),
		calls:     db.Collection("call_logs"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return repo, fmt.Errorf("NewMongoRecordRepo: %w", err)
	}
	return repo, nil
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
