package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MenuItem is a catalog entry as served by the API.
type MenuItem struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Available   *bool           `json:"available,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// CartLine is one distinct menu item in the cart.
type CartLine struct {
	ItemID      string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	// Extra keeps catalog fields the cart does not interpret.
	Extra map[string]json.RawMessage
}

// LineTotal is UnitPrice * Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func init() {
	// Process-wide: apiclient payloads, the persisted cart slot and every HTTP
	// response rely on prices being JSON numbers. Importing domain sets it.
	decimal.MarshalJSONWithoutQuotes = true
}

var lineKnownFields = []string{"id", "name", "description", "price", "quantity"}

// MarshalJSON writes the line as {id, name, description, price, quantity, ...extra}.
func (l CartLine) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(l.Extra)+len(lineKnownFields))
	for k, v := range l.Extra {
		out[k] = v
	}
	out["id"] = l.ItemID
	out["name"] = l.Name
	out["description"] = l.Description
	out["price"] = l.UnitPrice
	out["quantity"] = l.Quantity
	return json.Marshal(out)
}

// UnmarshalJSON reads the persisted line format, keeping unknown fields in Extra.
func (l *CartLine) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var known struct {
		ID          json.RawMessage `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	id, err := flexibleID(known.ID)
	if err != nil {
		return err
	}
	l.ItemID = id
	l.Name = known.Name
	l.Description = known.Description
	l.UnitPrice = known.Price
	l.Quantity = known.Quantity
	for _, k := range lineKnownFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		l.Extra = raw
	} else {
		l.Extra = nil
	}
	return nil
}

// LineFromMenuItem builds a quantity-1 line from a catalog entry.
func LineFromMenuItem(item MenuItem) CartLine {
	line := CartLine{
		ItemID:      string(item.ID),
		Name:        item.Name,
		Description: item.Description,
		UnitPrice:   item.Price,
		Quantity:    1,
	}
	extra := map[string]json.RawMessage{}
	if item.Category != "" {
		extra["category"], _ = json.Marshal(item.Category)
	}
	if item.ImageURL != "" {
		extra["imageUrl"], _ = json.Marshal(item.ImageURL)
	}
	if item.Available != nil {
		extra["available"], _ = json.Marshal(*item.Available)
	}
	if len(extra) > 0 {
		line.Extra = extra
	}
	return line
}

// flexibleID accepts ids serialized as JSON strings or numbers.
func flexibleID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
