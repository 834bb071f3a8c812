package domain

// InventoryPage is one page of the cursor-paginated inventory listing. The
// same endpoint serves the summary pass and the detail pass; the caller
// decides which products to keep.
type InventoryPage struct {
	Products  []ProductDetail
	HasMore   bool
	EndCursor string
}
