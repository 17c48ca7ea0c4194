// Package challenges holds the fixed DVAPI challenge catalog, one entry per
// OWASP API Security Top 10 (2023) category.
package challenges

// Challenge is one catalog entry
type Challenge struct {
	ID   string
	Name string
}

var catalog = []Challenge{
	{ID: "0xa1", Name: "Broken Object Level Authorization"},
	{ID: "0xa2", Name: "Broken Authentication"},
	{ID: "0xa3", Name: "Broken Object Property Level Authorization"},
	{ID: "0xa4", Name: "Unrestricted Resource Consumption"},
	{ID: "0xa5", Name: "Broken Function Level Authorization"},
	{ID: "0xa6", Name: "Unrestricted Access to Sensitive Business Flows"},
	{ID: "0xa7", Name: "Server-Side Request Forgery"},
	{ID: "0xa8", Name: "Security Misconfiguration"},
	{ID: "0xa9", Name: "Improper Inventory Management"},
	{ID: "0xaa", Name: "Unsafe Consumption of APIs"},
}

// All returns the catalog in report order. The slice is a copy.
func All() []Challenge {
	out := make([]Challenge, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns the challenge identifiers in report order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, c := range catalog {
		ids[i] = c.ID
	}
	return ids
}

// Name returns the vulnerability name for id and whether id is known.
func Name(id string) (string, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

// Known reports whether id belongs to the catalog.
func Known(id string) bool {
	_, ok := Name(id)
	return ok
}
