package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/assetflow/assetflow/internal/domain/models"
)

const reportsCollection = "import_reports"

// ReportArchive keeps the full per-row report of every import.
type ReportArchive interface {
	SaveImportReport(ctx context.Context, report *models.ImportReport) error
	FindImportReport(ctx context.Context, batchID uint64) (*models.ImportReport, error)
	DeleteImportReport(ctx context.Context, batchID uint64) error
}

// MongoDBRepository implements ReportArchive for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

var _ ReportArchive = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: reportsCollection,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

type reportDocument struct {
	BatchID    uint64               `bson:"_id"`
	ArchivedAt time.Time            `bson:"archived_at"`
	Report     *models.ImportReport `bson:"report"`
}

// SaveImportReport stores the report keyed by its batch, replacing an earlier
// copy.
func (r *MongoDBRepository) SaveImportReport(ctx context.Context, report *models.ImportReport) error {
	doc := reportDocument{BatchID: report.BatchID, ArchivedAt: time.Now().UTC(), Report: report}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": report.BatchID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to archive import report %d: %w", report.BatchID, err)
	}
	return nil
}

// FindImportReport returns models.ErrNotFound when the batch was never
// archived.
func (r *MongoDBRepository) FindImportReport(ctx context.Context, batchID uint64) (*models.ImportReport, error) {
	var doc reportDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": batchID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import report %d: %w", batchID, err)
	}
	return doc.Report, nil
}

func (r *MongoDBRepository) DeleteImportReport(ctx context.Context, batchID uint64) error {
	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": batchID}); err != nil {
		return fmt.Errorf("failed to delete import report %d: %w", batchID, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
