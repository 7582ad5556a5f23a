// ABOUTME: Version information for notecast
// ABOUTME: Product identification sent in protocol device info
package version

const (
	// Version is the notecast release
	Version = "0.3.0"

	// Product names the software in client/hello device info
	Product = "notecast"

	// Manufacturer identifies the maintainers
	Manufacturer = "harperreed"
)
