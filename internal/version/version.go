// ABOUTME: Version constants for the Tactus audio engine
// ABOUTME: Single source of truth for product identification
package version

const (
	// Version is the software version
	Version = "0.1.0"

	// Product is the product name
	Product = "Tactus"

	// Manufacturer is the manufacturer name
	Manufacturer = "Tactus Audio"
)
