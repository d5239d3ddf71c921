package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Price is a non-negative amount in a three-letter currency.
type Price struct {
	amount   decimal.Decimal
	currency string
}

func NewPrice(amount decimal.Decimal, cur string) (Price, error) {
	if amount.IsNegative() {
		return Price{}, invalid("price", "must not be negative")
	}
	cur = strings.ToUpper(strings.TrimSpace(cur))
	if len(cur) != 3 {
		return Price{}, invalid("currency", "must be a 3-letter code")
	}
	return Price{amount: amount, currency: cur}, nil
}

func (p Price) Amount() decimal.Decimal { return p.amount }
func (p Price) Currency() string        { return p.currency }

func (p Price) Equals(o Price) bool {
	return p.currency == o.currency && p.amount.Equal(o.amount)
}

// Compare returns -1, 0 or 1. Prices in different currencies are not
// comparable; no conversion is attempted.
func (p Price) Compare(o Price) (int, error) {
	if p.currency != o.currency {
		return 0, fmt.Errorf("%s vs %s: %w", p.currency, o.currency, ErrCurrencyMismatch)
	}
	return p.amount.Cmp(o.amount), nil
}

// Format renders the price for a BCP 47 locale such as "en-US" or "es-ES".
func (p Price) Format(locale string) string {
	unit, err := currency.ParseISO(p.currency)
	if err != nil {
		return p.currency + " " + p.amount.StringFixed(2)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(p.amount.InexactFloat64())))
}

func (p Price) String() string { return p.currency + " " + p.amount.StringFixed(2) }
