// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// CatalogSyncTask asks the pipeline to copy catalog rows into the destination store.
// An empty City means the whole catalog.
type CatalogSyncTask struct {
	TaskID      string    `json:"task_id"`
	City        string    `json:"city"`
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}
