package wildberries

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wbscout/wbscout/internal/domain"
)

// Field names in a search API product record
const (
	FieldName       = "name"
	FieldSalePriceU = "salePriceU"
	FieldID         = "id"
)

// DecodeProduct converts one raw record into a Product.
// Missing, null or unreadable fields get their defaults; only a record that
// isn't an object is rejected with ErrMalformedRecord.
func DecodeProduct(record domain.ProductRecord) (domain.Product, error) {
	trimmed := bytes.TrimSpace(record)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Product{}, fmt.Errorf("%w: record is not an object", domain.ErrMalformedRecord)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	return domain.Product{
		Name:       textField(fields[FieldName], domain.DefaultProductName),
		SalePriceU: integerField(fields[FieldSalePriceU]),
		ID:         textField(fields[FieldID], ""),
	}, nil
}

// DecodeProducts decodes every record independently. Successfully decoded
// products keep their input order; failures are collected with their index.
func DecodeProducts(records []domain.ProductRecord) ([]domain.Product, []domain.DecodeFailure) {
	products := make([]domain.Product, 0, len(records))
	var failures []domain.DecodeFailure

	for i, record := range records {
		product, err := DecodeProduct(record)
		if err != nil {
			failures = append(failures, domain.DecodeFailure{Index: i, Err: err})
			continue
		}
		products = append(products, product)
	}

	return products, failures
}

// textField returns a string value as-is and any other non-null JSON value as
// its literal text
func textField(raw json.RawMessage, fallback string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return string(raw)
}

// integerField reads an integer from a JSON number or numeric string.
// Fractional numbers are truncated toward zero. Anything else, including
// values outside the int64 range, reads as 0.
func integerField(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	var n json.Number
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		n = json.Number(strings.TrimSpace(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0
		}
	default:
		return 0
	}

	if v, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return v
	}

	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0
	}
	return int64(f)
}
