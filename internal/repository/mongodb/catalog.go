package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// GetItem loads items/{id}.
func (r *MongoDBRepository) GetItem(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := r.db.Collection(itemsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		return models.Item{}, fmt.Errorf("item %s: %w", id, wrap(err))
	}
	return item, nil
}

// CreateItemIfAbsent upserts with $setOnInsert so an existing item is never overwritten.
func (r *MongoDBRepository) CreateItemIfAbsent(ctx context.Context, item models.Item) (bool, error) {
	res, err := r.db.Collection(itemsCollection).UpdateOne(ctx,
		bson.M{"_id": item.ID},
		bson.M{"$setOnInsert": bson.M{"name": item.Name}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("create item %s: %w", item.ID, wrap(err))
	}
	return res.UpsertedCount > 0, nil
}

// ListItems returns every item ordered by id.
func (r *MongoDBRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	cur, err := r.db.Collection(itemsCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", wrap(err))
	}

	items := []models.Item{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", wrap(err))
	}
	return items, nil
}

// GetBrand loads brands/{id}.
func (r *MongoDBRepository) GetBrand(ctx context.Context, id string) (models.Brand, error) {
	var brand models.Brand
	err := r.db.Collection(brandsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&brand)
	if err != nil {
		return models.Brand{}, fmt.Errorf("brand %s: %w", id, wrap(err))
	}
	return brand, nil
}

// PutBrand replaces brands/{id}, creating it when missing.
func (r *MongoDBRepository) PutBrand(ctx context.Context, brand models.Brand) error {
	_, err := r.db.Collection(brandsCollection).ReplaceOne(ctx,
		bson.M{"_id": brand.ID}, brand, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put brand %s: %w", brand.ID, wrap(err))
	}
	return nil
}

// ListBrands returns brands ordered by id, optionally only those of one item.
func (r *MongoDBRepository) ListBrands(ctx context.Context, itemID string) ([]models.Brand, error) {
	filter := bson.M{}
	if itemID != "" {
		filter["itemId"] = itemID
	}

	cur, err := r.db.Collection(brandsCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", wrap(err))
	}

	brands := []models.Brand{}
	if err := cur.All(ctx, &brands); err != nil {
		return nil, fmt.Errorf("decode brands: %w", wrap(err))
	}
	return brands, nil
}
