// Package excluded carries the fixed, case-exact excluded-field set
// consulted by the KG assembler, rule generator, and SQL generator so no
// reconciliation column referencing product line / business unit
// classification leaks into a relationship, rule, or generated query.
package excluded

// Fields is the case-exact excluded-field set. Membership is literal
// string equality, not case-insensitive comparison — "Product_Line" and
// "product_line" are both listed separately because the source data
// carries both casings as distinct column names in the wild.
var Fields = map[string]struct{}{
	"Product_Line":       {},
	"product_line":       {},
	"PRODUCT_LINE":       {},
	"Product Line":       {},
	"Business_Unit":      {},
	"business_unit":      {},
	"BUSINESS_UNIT":      {},
	"Business Unit":      {},
	"[Business Unit]":    {},
	"BUSINESS_UNIT_CODE": {},
	"[Product Type]":     {},
	"Product Type":       {},
	"product_type":       {},
	"PRODUCT_TYPE":       {},
	"business unit":      {},
}

// IsExcluded reports whether field is one of the fixed excluded literals.
func IsExcluded(field string) bool {
	_, ok := Fields[field]
	return ok
}
