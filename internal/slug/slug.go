// Package slug derives URL and resource-name safe identifiers from display names.
package slug

import "strings"

// U+0130 lowercases to 'i' followed by a combining dot above, which then counts
// as a separator. strings.ToLower drops the dot.
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// Make lowercases name, collapses every run of characters outside [a-z0-9] into a
// single '-', and trims leading and trailing separators.
func Make(name string) string {
	lowered := strings.ToLower(dottedCapitalI.Replace(name))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingSeparator := false
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingSeparator && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSeparator = false
			b.WriteByte(c)
			continue
		}
		pendingSeparator = true
	}
	return b.String()
}
