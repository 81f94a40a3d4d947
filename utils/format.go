// api/utils/format.go
package utils

import "fmt"

// FormatPercent renders a rate fraction for human consumption, e.g. 0.333
// becomes "33.3%". Report files and API responses always carry the raw
// fraction; this formatting exists only for logs and display surfaces.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}
