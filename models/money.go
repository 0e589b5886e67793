package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and costs go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
