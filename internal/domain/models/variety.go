package models

import "strings"

// Variety is a fish type known to the ledger.
type Variety struct {
	Code string `bson:"_id" json:"code"`
	Name string `bson:"name" json:"name"`
}

// NormalizeVarietyCode trims and upper-cases a variety code.
func NormalizeVarietyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
