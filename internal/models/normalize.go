package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// rawLineItem covers both item encodings seen in stored orders: the flat
// {name, price, quantity} shape and the {menuItem: {name, price}, quantity}
// shape written by the ordering counterpart.
type rawLineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	MenuItem *struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"menuItem"`
}

func (r rawLineItem) canonical() OrderItem {
	item := OrderItem{Name: r.Name, Price: r.Price, Quantity: r.Quantity}
	if r.MenuItem != nil {
		item.Name = r.MenuItem.Name
		item.Price = r.MenuItem.Price
	}
	return item
}

// NormalizeItems turns the raw items column of an order into a canonical
// item slice. The stored value may be a JSON array, a JSON-encoded string
// holding one, a single object, null, or garbage; every shape resolves to
// a valid (possibly empty) slice and no input makes this fail.
func NormalizeItems(raw json.RawMessage) []OrderItem {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []OrderItem{}
	}

	switch trimmed[0] {
	case '[':
		var rows []rawLineItem
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return []OrderItem{}
		}
		items := make([]OrderItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, row.canonical())
		}
		return items
	case '{':
		var row rawLineItem
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return []OrderItem{}
		}
		return []OrderItem{row.canonical()}
	case '"':
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return []OrderItem{}
		}
		// String-encoded payloads carry the real encoding one level down
		return NormalizeItems(json.RawMessage(inner))
	default:
		// Numbers, booleans and malformed input carry no items
		return []OrderItem{}
	}
}
