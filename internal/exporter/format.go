package exporter

import (
	"fmt"
)

// formatFloat formats a float64 for CSV output with a fixed precision so
// columns stay aligned across rows.
func formatFloat(f float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, f)
}

// formatOptionalFloat formats a nullable float64; nil renders as an empty
// cell rather than a placeholder number.
func formatOptionalFloat(f *float64, prec int) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f, prec)
}

// formatInt formats an int for CSV output.
func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean for CSV output.
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
