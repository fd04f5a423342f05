package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type logDocument struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	UserID    string               `bson:"userId"`
	Operation string               `bson:"operation"`
	Item      string               `bson:"item"`
	Brand     string               `bson:"brand"`
	Quantity  int64                `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Amount    primitive.Decimal128 `bson:"amount"`
	PartyName string               `bson:"partyName"`
	Timestamp time.Time            `bson:"timestamp"`
	Seq       int64                `bson:"seq"`
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

func toLogDocument(e models.LogEntry) (logDocument, error) {
	price, err := primitive.ParseDecimal128(e.Price.String())
	if err != nil {
		return logDocument{}, fmt.Errorf("encode price %s: %w", e.Price, err)
	}
	amount, err := primitive.ParseDecimal128(e.Amount.String())
	if err != nil {
		return logDocument{}, fmt.Errorf("encode amount %s: %w", e.Amount, err)
	}

	return logDocument{
		UserID:    e.UserID,
		Operation: string(e.Operation),
		Item:      e.Item,
		Brand:     e.Brand,
		Quantity:  e.Quantity,
		Price:     price,
		Amount:    amount,
		PartyName: e.PartyName,
		Timestamp: e.Timestamp,
		Seq:       e.Seq,
	}, nil
}

func (d logDocument) entry() (models.LogEntry, error) {
	price, err := decimal.NewFromString(d.Price.String())
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("decode price of log %s: %w", d.ID.Hex(), err)
	}
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("decode amount of log %s: %w", d.ID.Hex(), err)
	}

	return models.LogEntry{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Operation: models.Operation(d.Operation),
		Item:      d.Item,
		Brand:     d.Brand,
		Quantity:  d.Quantity,
		Price:     price,
		Amount:    amount,
		PartyName: d.PartyName,
		Timestamp: d.Timestamp.UTC(),
		Seq:       d.Seq,
	}, nil
}

// nextSeq increments the logs counter and returns the new value.
func (r *MongoDBRepository) nextSeq(ctx context.Context) (int64, error) {
	var doc counterDocument
	err := r.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": logsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("advance log sequence: %w", wrap(err))
	}
	return doc.Seq, nil
}

// AppendLog inserts a new log document with a server-side sequence and timestamp.
func (r *MongoDBRepository) AppendLog(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return models.LogEntry{}, err
	}

	entry.Seq = seq
	// BSON dates carry millisecond precision.
	entry.Timestamp = r.now().UTC().Truncate(time.Millisecond)

	doc, err := toLogDocument(entry)
	if err != nil {
		return models.LogEntry{}, err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.db.Collection(logsCollection).InsertOne(ctx, doc); err != nil {
		return models.LogEntry{}, fmt.Errorf("failed to insert log entry: %w", wrap(err))
	}

	entry.ID = doc.ID.Hex()
	r.logger.Debug("log entry appended", zap.String("id", entry.ID), zap.Int64("seq", seq))
	return entry, nil
}

// GetLog loads logs/{id}. Ids that are not object ids are reported as not found.
func (r *MongoDBRepository) GetLog(ctx context.Context, id string) (models.LogEntry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("log %s: %w", id, models.ErrNotFound)
	}

	var doc logDocument
	if err := r.db.Collection(logsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.LogEntry{}, fmt.Errorf("log %s: %w", id, wrap(err))
	}
	return doc.entry()
}

// QueryLogs runs the ordered range scan (timestamp desc, seq desc).
func (r *MongoDBRepository) QueryLogs(ctx context.Context, after *models.LogCursor, limit int) ([]models.LogEntry, error) {
	filter := bson.M{}
	if after != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"timestamp": bson.M{"$lt": after.Timestamp}},
			bson.M{"timestamp": after.Timestamp, "seq": bson.M{"$lt": after.Seq}},
		}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.db.Collection(logsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", wrap(err))
	}

	var docs []logDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode logs: %w", wrap(err))
	}

	out := make([]models.LogEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := doc.entry()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}
