package dbx

import (
	"strconv"
	"strings"
)

// Placeholders renders n PostgreSQL positional parameters starting at
// $start, e.g. Placeholders(2, 3) == "$2, $3, $4". It is used to build
// IN (...) lists.
func Placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}
