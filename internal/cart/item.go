package cart

import (
	"github.com/seedstoroots/seeds-backend/internal/pricing"
	"github.com/seedstoroots/seeds-backend/pkg/cartapi"
)

const (
	// PlaceholderImageURL is shown for products without an image
	PlaceholderImageURL = "https://via.placeholder.com/100x100?text=Producto"

	// UnboundedStock stands in for "stock unknown, effectively unlimited"
	UnboundedStock = 999
)

// Product is the loosely shaped catalog object handed to AddItem.
// Catalog payloads are inconsistent across storefront iterations
// (image under two different keys, stock often absent), so all
// fallbacks happen once here at the boundary.
type Product struct {
	ProductID uint
	Name      string
	ImageRef  string
	PhotoRef  string // legacy image field some catalog payloads use
	UnitPrice float64
	Stock     int // 0 means unknown
}

// LineItem is the canonical in-cart line item. Once built, no code
// downstream re-checks optional fields.
type LineItem struct {
	ProductID uint
	Name      string
	ImageRef  string
	UnitPrice float64
	Quantity  int
	StockCap  int
	// serverSubtotal is the authoritative subtotal reported by the cart
	// service. It is dropped as soon as the item is mutated locally.
	serverSubtotal *float64
}

// Subtotal returns the line subtotal, preferring the server supplied
// value when the item came from a reconciled response.
func (li LineItem) Subtotal() float64 {
	if li.serverSubtotal != nil {
		return *li.serverSubtotal
	}
	return li.UnitPrice * float64(li.Quantity)
}

func newLineItem(p Product) LineItem {
	image := p.ImageRef
	if image == "" {
		image = p.PhotoRef
	}
	if image == "" {
		image = PlaceholderImageURL
	}

	stockCap := p.Stock
	if stockCap <= 0 {
		stockCap = UnboundedStock
	}

	return LineItem{
		ProductID: p.ProductID,
		Name:      p.Name,
		ImageRef:  image,
		UnitPrice: p.UnitPrice,
		Quantity:  1,
		StockCap:  stockCap,
	}
}

// itemsFromRemote normalizes a server item list into canonical line
// items. Server subtotals are kept verbatim.
func itemsFromRemote(payloads []cartapi.ItemPayload) []LineItem {
	items := make([]LineItem, 0, len(payloads))
	for _, p := range payloads {
		image := p.ImageURL
		if image == "" {
			image = PlaceholderImageURL
		}
		subtotal := p.Subtotal
		items = append(items, LineItem{
			ProductID:      p.ProductID,
			Name:           p.Name,
			ImageRef:       image,
			UnitPrice:      p.UnitPrice,
			Quantity:       p.Quantity,
			StockCap:       UnboundedStock,
			serverSubtotal: &subtotal,
		})
	}
	return items
}

func priceItems(items []LineItem) []pricing.Item {
	priced := make([]pricing.Item, 0, len(items))
	for _, li := range items {
		priced = append(priced, pricing.Item{
			UnitPrice:      li.UnitPrice,
			Quantity:       li.Quantity,
			ServerSubtotal: li.serverSubtotal,
		})
	}
	return priced
}
