package models

import "time"

// LedgerSnapshot is a point-in-time export of stock and pending dues.
type LedgerSnapshot struct {
	TakenAt        time.Time       `bson:"taken_at" json:"taken_at"`
	Stock          []StockPosition `bson:"stock" json:"stock"`
	PendingClients []DueAccount    `bson:"pending_clients" json:"pending_clients"`
	PendingVendors []DueAccount    `bson:"pending_vendors" json:"pending_vendors"`
}
