// Package categories registers the dataset categories with the core registry.
// Import this package to ensure the default categories are registered.
package categories

// This file exists to provide a single import point.
// defaults.go registers the built-in set in init(); LoadFile replaces it.
