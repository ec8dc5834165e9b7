package domain

import "time"

// ResourceKind identifies one synchronized resource family.
type ResourceKind string

const (
	KindLocation  ResourceKind = "locations"
	KindProduct   ResourceKind = "products"
	KindCustomer  ResourceKind = "customers"
	KindOrder     ResourceKind = "orders"
	KindInventory ResourceKind = "inventory"
)

// SyncOrder is the dependency order of a bulk sync: orders reference
// customers, inventory levels reference locations and items.
var SyncOrder = []ResourceKind{
	KindLocation,
	KindProduct,
	KindCustomer,
	KindOrder,
	KindInventory,
}

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncLogEntry is one row of the sync ledger: the outcome of syncing a
// single resource kind within one sync invocation. An entry makes
// exactly one transition out of running and is never mutated after
// reaching a terminal status.
type SyncLogEntry struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	ShopID      string       `json:"shop_id" bson:"shop_id"`
	RunID       string       `json:"run_id" bson:"run_id"`
	Resource    ResourceKind `json:"resource" bson:"resource"`
	Status      SyncStatus   `json:"status" bson:"status"`
	RecordCount int          `json:"record_count" bson:"record_count"`
	Error       string       `json:"error,omitempty" bson:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at" bson:"started_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}
