package cart

import (
	"crypto/md5"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one cart row: a product selection and how many of it.
type LineItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	Price      decimal.Decimal   `json:"price"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Quantity   int               `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Same reports whether both items occupy the same cart line.
func (i LineItem) Same(other LineItem) bool {
	return i.ID == other.ID
}

func (i LineItem) clone() LineItem {
	c := i
	if i.Attributes != nil {
		c.Attributes = make(map[string]string, len(i.Attributes))
		for k, v := range i.Attributes {
			c.Attributes[k] = v
		}
	}
	return c
}

// LineID derives the cart line id for a selection. The variant id wins when
// present; otherwise the product id is used. Selected attributes are folded
// in as a short hash so that the same product in two sizes gets two lines.
func LineID(productID, variantID string, attributes map[string]string) string {
	base := productID
	if variantID != "" {
		base = variantID
	}
	if h := attributesHash(attributes); h != "" {
		return base + ":" + h
	}
	return base
}

// attributesHash creates a consistent hash from attribute pairs
func attributesHash(attributes map[string]string) string {
	if len(attributes) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = strings.ToLower(k) + "=" + attributes[k]
	}

	hash := md5.Sum([]byte(strings.Join(pairs, ",")))
	return fmt.Sprintf("%x", hash)[:12]
}

// NormalizePrice rounds a unit price to two decimal places and floors it at zero.
func NormalizePrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p.Round(2)
}
