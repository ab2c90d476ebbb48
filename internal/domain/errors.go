package domain

import "errors"

var (
	// ErrInvalidBatchSize is returned when a run is requested with a non-positive batch size
	ErrInvalidBatchSize = errors.New("batch size must be a positive integer")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a product cannot be found in Shopify
	ErrProductNotFound = errors.New("product not found in Shopify")

	// ErrImageDecode is returned when an image payload is neither hex nor base64
	ErrImageDecode = errors.New("image payload is neither hex nor base64")

	// ErrUnknownWarrantyGroup is returned when a product references a warranty group
	// with no rules in the rule set
	ErrUnknownWarrantyGroup = errors.New("unknown warranty group")

	// ErrShopifyAPI is returned when a Shopify request fails after all retry attempts
	ErrShopifyAPI = errors.New("Shopify API request failed")

	// ErrShopifyValidation is returned for 4xx responses other than 429; these are
	// never retried
	ErrShopifyValidation = errors.New("Shopify rejected the request")

	// ErrSourceUnavailable is returned when the product database cannot be read;
	// fatal for a run since no reconciliation is possible without source data
	ErrSourceUnavailable = errors.New("product database unavailable")
)
