package models

import "time"

// Entity kinds, also the logical storage keys of each collection
const (
	EntityMaterials    = "materials"
	EntityCenters      = "centers"
	EntityTransactions = "transactions"
	EntityInvoices     = "invoices"
)

// Change actions
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionRestored = "restored"
)

// ChangeEvent describes a single Entity Store mutation
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Id        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type, e.g. "materials.created"
func (e ChangeEvent) Type() string {
	return e.Entity + "." + e.Action
}
