package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every amount column stores.
const MoneyScale = 4

// validateScale rejects amounts the database would have to round.
func validateScale(field string, d decimal.Decimal) string {
	if d.Exponent() < -MoneyScale && !d.Equal(d.Truncate(MoneyScale)) {
		return fmt.Sprintf("%s must have at most %d decimal places", field, MoneyScale)
	}
	return ""
}
