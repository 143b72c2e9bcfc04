package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

const (
	loadingsCollection  = "loadings"
	paymentsCollection  = "payments"
	varietiesCollection = "varieties"
	snapshotsCollection = "ledger_snapshots"
)

// MongoDBRepository implements repository.Store on MongoDB. A loading record
// and its lines are one document, so every write of a record is atomic.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository connects, pings and ensures the indexes the ledger relies on.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, db: client.Database(dbName)}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(loadingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "bill_no", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_category_bill_no"),
		},
		{Keys: bson.D{{Key: "party_name", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "lines.variety_code", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create loading indexes: %w", err)
	}

	_, err = r.db.Collection(paymentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "party_name", Value: 1}, {Key: "party_kind", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return nil
}

// InsertLoading inserts a record with all its lines.
func (r *MongoDBRepository) InsertLoading(ctx context.Context, record *models.LoadingRecord) error {
	_, err := r.db.Collection(loadingsCollection).InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateBillNo
	}
	if err != nil {
		return fmt.Errorf("failed to insert loading: %w", err)
	}
	return nil
}

// UpdateLoading replaces the record guarded by its version.
func (r *MongoDBRepository) UpdateLoading(ctx context.Context, record *models.LoadingRecord, expectedVersion int64) error {
	next := *record
	next.Version = expectedVersion + 1

	res, err := r.db.Collection(loadingsCollection).ReplaceOne(ctx,
		bson.M{"_id": record.ID, "version": expectedVersion}, &next)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateBillNo
	}
	if err != nil {
		return fmt.Errorf("failed to update loading: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, record.ID)
	}

	record.Version = next.Version
	return nil
}

// DeleteLoading removes the record guarded by its version.
func (r *MongoDBRepository) DeleteLoading(ctx context.Context, id string, expectedVersion int64) error {
	res, err := r.db.Collection(loadingsCollection).DeleteOne(ctx, bson.M{"_id": id, "version": expectedVersion})
	if err != nil {
		return fmt.Errorf("failed to delete loading: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *MongoDBRepository) missOrConflict(ctx context.Context, id string) error {
	n, err := r.db.Collection(loadingsCollection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check loading %s: %w", id, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrVersionConflict
}

// GetLoading fetches a record by id.
func (r *MongoDBRepository) GetLoading(ctx context.Context, id string) (*models.LoadingRecord, error) {
	var record models.LoadingRecord
	err := r.db.Collection(loadingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loading: %w", err)
	}
	return &record, nil
}

// ListLoadings scans records matching filter in date order.
func (r *MongoDBRepository) ListLoadings(ctx context.Context, filter models.LoadingFilter) ([]models.LoadingRecord, error) {
	query := bson.M{}
	if len(filter.Categories) > 0 {
		query["category"] = bson.M{"$in": filter.Categories}
	}
	if filter.PartyName != "" {
		query["party_name"] = strings.TrimSpace(filter.PartyName)
	}
	if filter.Variety != "" {
		query["lines.variety_code"] = filter.Variety
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.db.Collection(loadingsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list loadings: %w", err)
	}

	var records []models.LoadingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode loadings: %w", err)
	}
	return records, nil
}

// InsertPayment stores a payment.
func (r *MongoDBRepository) InsertPayment(ctx context.Context, payment *models.Payment) error {
	if _, err := r.db.Collection(paymentsCollection).InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPayments scans payments matching filter in date order.
func (r *MongoDBRepository) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	query := bson.M{}
	if filter.PartyName != "" {
		query["party_name"] = strings.TrimSpace(filter.PartyName)
	}
	if filter.PartyKind != "" {
		query["party_kind"] = filter.PartyKind
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := r.db.Collection(paymentsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

// InsertVariety stores a variety keyed by its code.
func (r *MongoDBRepository) InsertVariety(ctx context.Context, variety models.Variety) error {
	_, err := r.db.Collection(varietiesCollection).InsertOne(ctx, variety)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateVariety
	}
	if err != nil {
		return fmt.Errorf("failed to insert variety: %w", err)
	}
	return nil
}

// GetVariety fetches a variety by code.
func (r *MongoDBRepository) GetVariety(ctx context.Context, code string) (models.Variety, error) {
	var variety models.Variety
	err := r.db.Collection(varietiesCollection).FindOne(ctx, bson.M{"_id": code}).Decode(&variety)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Variety{}, models.ErrNotFound
	}
	if err != nil {
		return models.Variety{}, fmt.Errorf("failed to get variety: %w", err)
	}
	return variety, nil
}

// ListVarieties returns the catalogue ordered by code.
func (r *MongoDBRepository) ListVarieties(ctx context.Context) ([]models.Variety, error) {
	cursor, err := r.db.Collection(varietiesCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list varieties: %w", err)
	}

	var varieties []models.Variety
	if err := cursor.All(ctx, &varieties); err != nil {
		return nil, fmt.Errorf("failed to decode varieties: %w", err)
	}
	return varieties, nil
}

// SaveSnapshot saves a ledger snapshot to the database.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error {
	if _, err := r.db.Collection(snapshotsCollection).InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert ledger snapshot: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
