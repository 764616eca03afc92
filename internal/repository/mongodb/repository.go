package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/config"
	"github.com/mamadbah2/eggledger/internal/domain/models"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = models.ErrRecordNotFound

const (
	transactionsCollection = "transactions"
	settingsCollection     = "settings"
	reportsCollection      = "daily_reports"
	settingsID             = "settings"
)

// MongoDBRepository stores the transaction log, the settings document and daily reports.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client: client,
		db:     client.Database(cfg.DBName),
		logger: logger,
		now:    time.Now,
	}

	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(transactionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create transactions index: %w", err)
	}
	return nil
}

// InsertTransaction assigns an id and creation time and appends rec to the log.
func (r *MongoDBRepository) InsertTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	oid := primitive.NewObjectID()
	rec.ID = oid.Hex()
	// Mongo dates carry millisecond precision.
	rec.CreatedAt = r.now().UTC().Truncate(time.Millisecond)

	doc := toTransactionDocument(rec)
	doc.ID = oid

	if _, err := r.db.Collection(transactionsCollection).InsertOne(ctx, doc); err != nil {
		return models.TransactionRecord{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return rec, nil
}

// ListTransactions returns the full log, most recent first.
func (r *MongoDBRepository) ListTransactions(ctx context.Context) ([]models.TransactionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.db.Collection(transactionsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.TransactionRecord
	for cursor.Next(ctx) {
		var doc transactionDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Warn("skip undecodable transaction", zap.Error(err))
			continue
		}
		rec, skewed := doc.toRecord()
		if len(skewed) > 0 {
			r.logger.Debug("transaction has unparseable numbers, treated as zero",
				zap.String("id", rec.ID), zap.Strings("fields", skewed))
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

// DeleteTransaction removes one record by id.
func (r *MongoDBRepository) DeleteTransaction(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.db.Collection(transactionsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadSettings returns the settings document, empty when never saved.
func (r *MongoDBRepository) LoadSettings(ctx context.Context) (models.Settings, error) {
	var doc settingsDocument
	err := r.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": settingsID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{Rates: models.NewRateTable()}, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return doc.toSettings(), nil
}

// SaveRates replaces the stored rate table.
func (r *MongoDBRepository) SaveRates(ctx context.Context, rates models.RateTable) error {
	return r.setSettingsField(ctx, "rates", toRatesDocument(rates))
}

// SetAdminPassword updates the admin secret without touching the rest.
func (r *MongoDBRepository) SetAdminPassword(ctx context.Context, stored string) error {
	return r.setSettingsField(ctx, "admin_password", stored)
}

// SetSubAdminPassword updates the subadmin secret without touching the rest.
func (r *MongoDBRepository) SetSubAdminPassword(ctx context.Context, stored string) error {
	return r.setSettingsField(ctx, "subadmin_password", stored)
}

func (r *MongoDBRepository) setSettingsField(ctx context.Context, field string, value interface{}) error {
	_, err := r.db.Collection(settingsCollection).UpdateOne(ctx,
		bson.M{"_id": settingsID},
		bson.M{"$set": bson.M{field: value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update settings %s: %w", field, err)
	}
	return nil
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	_, err := r.db.Collection(reportsCollection).InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
