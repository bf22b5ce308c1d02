// Package aggregates declares the catalog write contracts and the error codes their
// implementations return. Nothing here knows about gorm or HTTP.
package aggregates
