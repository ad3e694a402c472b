// Package mongostore keeps records as documents in MongoDB. Sequences come from
// a counters document incremented with $inc.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"seqtrack/internal/errors"
	"seqtrack/models"
	"seqtrack/ports"
)

const (
	recordsCollection  = "records"
	countersCollection = "counters"
	recordsCounterID   = "records"
)

// recordDocument is the stored shape of a record
type recordDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	models.Record `bson:",inline"`
}

func (d recordDocument) toRecord() *models.Record {
	rec := d.Record
	rec.ID = d.ID.Hex()
	return &rec
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// recordRepository implements the RecordRepository interface
type recordRepository struct {
	db       *mongo.Database
	records  *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// Connect opens a client for uri and verifies it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.StoreError("failed to connect to mongo", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.StoreError("failed to ping mongo", err)
	}
	return client, nil
}

// NewRecordRepository creates a new record repository on db
func NewRecordRepository(db *mongo.Database) ports.RecordRepository {
	return &recordRepository{
		db:       db,
		records:  db.Collection(recordsCollection),
		counters: db.Collection(countersCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the unique sequence index
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(recordsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sequence", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.StoreError("failed to create sequence index", err)
	}
	return nil
}

func (r *recordRepository) nextSequence(ctx context.Context) (int64, error) {
	var counter counterDocument
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": recordsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *recordRepository) Create(ctx context.Context, rec *models.Record) error {
	oid := primitive.NewObjectID()
	if rec.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(rec.ID)
		if err != nil {
			return errors.StoreError("record id is not an object id", err)
		}
		oid = parsed
	}

	seq, err := r.nextSequence(ctx)
	if err != nil {
		return errors.StoreError("failed to allocate record sequence", err)
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := recordDocument{ID: oid, Record: *rec}
	doc.Sequence = seq
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.records.InsertOne(ctx, doc); err != nil {
		return errors.StoreError("failed to create record", err)
	}

	*rec = *doc.toRecord()
	return nil
}

func (r *recordRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.NotFound("record " + id)
	}

	var doc recordDocument
	if err := r.records.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("record " + id)
		}
		return nil, errors.StoreError("failed to get record", err)
	}
	return doc.toRecord(), nil
}

func (r *recordRepository) List(ctx context.Context) ([]*models.Record, error) {
	cursor, err := r.records.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}}))
	if err != nil {
		return nil, errors.StoreError("failed to list records", err)
	}
	defer cursor.Close(ctx)

	records := make([]*models.Record, 0)
	for cursor.Next(ctx) {
		var doc recordDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.StoreError("failed to decode record", err)
		}
		records = append(records, doc.toRecord())
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.StoreError("failed to list records", err)
	}
	return records, nil
}

func (r *recordRepository) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.Record, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return r.Get(ctx, id)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.NotFound("record " + id)
	}

	set := bson.D{}
	for _, f := range fields {
		set = append(set, bson.E{Key: f.Key, Value: f.Value})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)})

	var doc recordDocument
	err = r.records.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("record " + id)
		}
		return nil, errors.StoreError("failed to update record", err)
	}
	return doc.toRecord(), nil
}

func (r *recordRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.NotFound("record " + id)
	}

	result, err := r.records.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.StoreError("failed to delete record", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFound("record " + id)
	}
	return nil
}

func (r *recordRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return errors.StoreError("mongo unreachable", err)
	}
	return nil
}

func (r *recordRepository) Close() error {
	return r.db.Client().Disconnect(context.Background())
}
