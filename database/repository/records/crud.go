package recordsRepo

import (
	"context"
	"errors"

	"moveline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertRecord stores a booking or partial-lead row.
func (r *mongoRecordRepo) InsertRecord(ctx context.Context, record models.Record) error {
	_, err := r.records.InsertOne(ctx, record)
	return err
}

func (r *mongoRecordRepo) InsertCallLog(ctx context.Context, entry models.CallLog) error {
	_, err := r.calls.InsertOne(ctx, entry)
	return err
}

// UpsertCustomer inserts a customer or replaces the mutable fields of the one
// with the same phone. The original id and creation time are kept.
func (r *mongoRecordRepo) UpsertCustomer(ctx context.Context, customer models.Customer) error {
	set := bson.M{"name": customer.Name}
	if customer.Email != "" {
		set["email"] = customer.Email
	}
	if customer.LastBookingID != "" {
		set["lastBookingId"] = customer.LastBookingID
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":       customer.ID,
			"createdAt": customer.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.customers.UpdateOne(ctx, bson.M{"phone": customer.Phone}, update, opts)
	return err
}

func (r *mongoRecordRepo) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.customers.FindOne(ctx, bson.M{"phone": phone}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindBookingsByDate returns confirmed bookings whose move date equals date (YYYY-MM-DD).
func (r *mongoRecordRepo) FindBookingsByDate(ctx context.Context, date string) ([]models.Record, error) {
	filter := bson.M{"status": models.StatusBooking, "moveDate": date}
	cursor, err := r.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CountBookingsBetween counts bookings with from <= moveDate < to. Dates are
// YYYY-MM-DD so lexical order matches calendar order.
func (r *mongoRecordRepo) CountBookingsBetween(ctx context.Context, from, to string) (int64, error) {
	filter := bson.M{
		"status":   models.StatusBooking,
		"moveDate": bson.M{"$gte": from, "$lt": to},
	}
	return r.records.CountDocuments(ctx, filter)
}

func (r *mongoRecordRepo) LatestBookingByPhone(ctx context.Context, phone string) (*models.Record, error) {
	filter := bson.M{"status": models.StatusBooking, "phone": phone}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var record models.Record
	err := r.records.FindOne(ctx, filter, opts).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SetAddresses overwrites the non-empty address fields of record id.
func (r *mongoRecordRepo) SetAddresses(ctx context.Context, id, pickup, dropoff string) error {
	set := bson.M{}
	if pickup != "" {
		set["pickupAddress"] = pickup
	}
	if dropoff != "" {
		set["dropoffAddress"] = dropoff
	}
	if len(set) == 0 {
		return nil
	}
	res, err := r.records.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
