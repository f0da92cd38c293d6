package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"restaurant-frontend/internal/domain"
)

// CartWriter receives imported lines. *cart.Store satisfies it.
type CartWriter interface {
	QuantityMap() map[string]int
	AddItem(ctx context.Context, item domain.MenuItem)
	SetQuantity(ctx context.Context, itemID string, quantity int)
}

// CSVImporter reads a cart export (one menu item per row) into a profile's cart.
type CSVImporter struct {
	reader *csv.Reader
	cart   CartWriter
}

func NewCSVImporter(r io.Reader, cart CartWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, cart: cart}
}

type csvRow struct {
	ID       string
	Name     string
	Desc     string
	Price    decimal.Decimal
	Quantity int
	Category string
	ImageURL string
}

// Run parses CSV rows and writes them to the cart. Imported quantities add to
// what the cart already holds, as do rows repeating an id. It returns the
// number of distinct items imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return 0, errors.New("missing id column")
	}

	var (
		order  []string
		rows   = map[string]*csvRow{}
		lineNo = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}
		lineNo++

		row, err := parseRow(record, index, lineNo)
		if err != nil {
			return 0, err
		}
		if row == nil {
			continue
		}
		if existing, ok := rows[row.ID]; ok {
			existing.Quantity += row.Quantity
			continue
		}
		rows[row.ID] = row
		order = append(order, row.ID)
	}

	current := i.cart.QuantityMap()
	for _, id := range order {
		i.save(ctx, rows[id], current[id])
	}
	return len(order), nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow, existing int) {
	i.cart.AddItem(ctx, domain.MenuItem{
		ID:          domain.ID(row.ID),
		Name:        row.Name,
		Description: row.Desc,
		Price:       row.Price,
		Category:    row.Category,
		ImageURL:    row.ImageURL,
	})
	if row.Quantity != 1 {
		i.cart.SetQuantity(ctx, row.ID, existing+row.Quantity)
	}
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, lineNo int) (*csvRow, error) {
	id := pick(record, index, "id")
	if id == "" {
		return nil, nil
	}
	row := &csvRow{
		ID:       id,
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		Category: pick(record, index, "category"),
		ImageURL: pick(record, index, "imageurl"),
	}
	if row.Name == "" {
		return nil, fmt.Errorf("line %d: missing name for item %q", lineNo, id)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("line %d: invalid price for item %q", lineNo, id)
	}
	row.Price = price

	row.Quantity = 1
	if raw := pick(record, index, "quantity"); raw != "" {
		q, err := strconv.Atoi(raw)
		if err != nil || q < 1 {
			return nil, fmt.Errorf("line %d: invalid quantity %q for item %q", lineNo, raw, id)
		}
		row.Quantity = q
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
