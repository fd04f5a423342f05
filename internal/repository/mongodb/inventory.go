package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type stockDocument struct {
	ID       string `bson:"_id"`
	ItemID   string `bson:"itemId"`
	BrandID  string `bson:"brandId"`
	Quantity int64  `bson:"quantity"`
}

func (d stockDocument) record() models.StockRecord {
	return models.StockRecord{ItemID: d.ItemID, BrandID: d.BrandID, Quantity: d.Quantity}
}

// GetStock loads inventory/{itemId}_{brandId}.
func (r *MongoDBRepository) GetStock(ctx context.Context, itemID, brandID string) (models.StockRecord, error) {
	key := models.StockKey(itemID, brandID)

	var doc stockDocument
	if err := r.db.Collection(inventoryCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		return models.StockRecord{}, fmt.Errorf("inventory %s: %w", key, wrap(err))
	}
	return doc.record(), nil
}

// PutStock replaces the inventory document. Last writer wins.
func (r *MongoDBRepository) PutStock(ctx context.Context, rec models.StockRecord) error {
	doc := stockDocument{ID: rec.Key(), ItemID: rec.ItemID, BrandID: rec.BrandID, Quantity: rec.Quantity}

	_, err := r.db.Collection(inventoryCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put inventory %s: %w", doc.ID, wrap(err))
	}
	return nil
}

// DeleteStock removes the inventory document without touching items or brands.
func (r *MongoDBRepository) DeleteStock(ctx context.Context, itemID, brandID string) (bool, error) {
	key := models.StockKey(itemID, brandID)

	res, err := r.db.Collection(inventoryCollection).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, fmt.Errorf("delete inventory %s: %w", key, wrap(err))
	}
	return res.DeletedCount > 0, nil
}

// ListStock returns inventory documents ordered by key.
func (r *MongoDBRepository) ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error) {
	query := bson.M{}
	switch {
	case strings.TrimSpace(filter.ItemID) != "":
		query["itemId"] = filter.ItemID
	case strings.TrimSpace(filter.BrandID) != "":
		query["brandId"] = filter.BrandID
	}

	cur, err := r.db.Collection(inventoryCollection).Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", wrap(err))
	}

	var docs []stockDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", wrap(err))
	}

	out := make([]models.StockRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.record())
	}
	return out, nil
}
