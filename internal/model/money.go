package model

import "fmt"

// FormatCents renders an amount in cents as dollars, e.g. 23997 -> "$239.97".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
