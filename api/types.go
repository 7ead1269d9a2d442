// Package api - API types for the quote service
// These types define the contract for the /pricing endpoints.
package api

// PricingVersionHeader carries the snapshot version a response was built from
const PricingVersionHeader = "X-Pricing-Version"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// VersionResponse is the body of GET /version
type VersionResponse struct {
	Version          string `json:"version"`
	Engine           string `json:"engine"`
	APIVersion       string `json:"api_version"`
	PricingVersion   uint64 `json:"pricing_version"`
	ContentHash      string `json:"content_hash"`
	PricingSource    string `json:"pricing_source"`
	PricingUpdatedAt string `json:"pricing_updated_at"`
}

// DeleteResponse acknowledges a deletion
type DeleteResponse struct {
	OK bool `json:"ok"`
}
