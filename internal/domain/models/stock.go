package models

import "strings"

// Item is a stocked product, keyed by a caller-chosen id.
type Item struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Brand is a variant of an Item. Many brands may reference the same item.
type Brand struct {
	ID     string `bson:"_id" json:"id"`
	Name   string `bson:"name" json:"name"`
	ItemID string `bson:"itemId" json:"itemId"`
}

// StockRecord is the quantity on hand for one (item, brand) pair.
type StockRecord struct {
	ItemID   string `json:"itemId"`
	BrandID  string `json:"brandId"`
	Quantity int64  `json:"quantity"`
}

// Key returns the inventory document id of the record.
func (s StockRecord) Key() string {
	return StockKey(s.ItemID, s.BrandID)
}

// StockKey builds the deterministic inventory id "itemId_brandId".
func StockKey(itemID, brandID string) string {
	return itemID + "_" + brandID
}

// StockFilter narrows a stock listing. An item filter wins over a brand filter.
type StockFilter struct {
	ItemID  string
	BrandID string
}

// Match reports whether the record passes the filter.
func (f StockFilter) Match(rec StockRecord) bool {
	switch {
	case strings.TrimSpace(f.ItemID) != "":
		return rec.ItemID == f.ItemID
	case strings.TrimSpace(f.BrandID) != "":
		return rec.BrandID == f.BrandID
	default:
		return true
	}
}
