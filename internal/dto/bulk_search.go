package dto

import "time"

type BulkSearchRequest struct {
	Input string `json:"input,omitempty"`
	CSV   string `json:"csv,omitempty"`
}

type BulkSearchAcceptedResponse struct {
	TraceID   string    `json:"traceId"`
	SessionID string    `json:"sessionId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ProgressResponse struct {
	Phase         string `json:"phase"`
	LocationIndex int    `json:"locationIndex"`
	Step          string `json:"step"`
	Percentage    int    `json:"percentage"`
	IsLoading     bool   `json:"isLoading"`
}

type StatsResponse struct {
	TotalSearched  int      `json:"totalSearched"`
	Found          int      `json:"found"`
	NotFound       int      `json:"notFound"`
	NotFoundKeys   []string `json:"notFoundKeys"`
	LocationErrors []string `json:"locationErrors"`
	ErrorSummary   string   `json:"errorSummary,omitempty"`
}

type SearchResultDTO struct {
	SKU     string      `json:"sku"`
	Status  string      `json:"status"`
	Product *ProductDTO `json:"product,omitempty"`
	Variant *VariantDTO `json:"variant,omitempty"`
}

type ProductDTO struct {
	ProductID    string `json:"productId"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ImageAltText string `json:"imageAltText,omitempty"`
}

type VariantDTO struct {
	VariantID       string `json:"variantId"`
	SKU             string `json:"sku"`
	Barcode         string `json:"barcode,omitempty"`
	Price           string `json:"price"`
	CompareAtPrice  string `json:"compareAtPrice,omitempty"`
	Available       int    `json:"available"`
	InventoryItemID string `json:"inventoryItemId"`
	StockStatus     string `json:"stockStatus"`
}

type ResultsResponse struct {
	LocationID    string            `json:"locationId"`
	StockFilter   string            `json:"stockFilter"`
	Results       []SearchResultDTO `json:"results"`
	LocationError string            `json:"locationError,omitempty"`
}

type HistoryRecordDTO struct {
	ID             string    `json:"id"`
	TotalSearched  int       `json:"totalSearched"`
	Found          int       `json:"found"`
	NotFound       int       `json:"notFound"`
	LowStockFound  int       `json:"lowStockFound"`
	Locations      int       `json:"locations"`
	LocationErrors int       `json:"locationErrors"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

type HistoryResponse struct {
	Records []HistoryRecordDTO `json:"records"`
}
