package domain

// LowStockThreshold is the stock level at or below which a variant counts as
// low stock in search results. This is intentionally distinct from the
// threshold used by inventory history reports (see history package).
const LowStockThreshold = 5

type StockStatus string

const (
	StockStatusIn  StockStatus = "in-stock"
	StockStatusLow StockStatus = "low-stock"
	StockStatusOut StockStatus = "out-of-stock"
)

type ProductDetail struct {
	ProductID    string
	Title        string
	Status       string
	ImageURL     string
	ImageAltText string
	Variants     []VariantDetail
}

type VariantDetail struct {
	VariantID       string
	SKU             string
	Barcode         string
	Price           string
	CompareAtPrice  string
	Available       int
	InventoryItemID string
}

func (v VariantDetail) StockStatus() StockStatus {
	if v.Available == 0 {
		return StockStatusOut
	}
	if v.Available <= LowStockThreshold {
		return StockStatusLow
	}
	return StockStatusIn
}
