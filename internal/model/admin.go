package model

import "time"

// Admin introspection DTOs. These mirror parameterized reporting queries and
// carry no business logic.

type TableSize struct {
	TableName string `db:"table_name" json:"table_name"`
	TotalSize string `db:"total_size" json:"total_size"`
	DataSize  string `db:"data_size" json:"data_size"`
	IndexSize string `db:"index_size" json:"index_size"`
}

type TableRowCount struct {
	TableName string `json:"table_name"`
	RowCount  int64  `json:"row_count"`
	Error     string `json:"error,omitempty"`
}

type IndexUsage struct {
	TableName string `db:"table_name" json:"table_name"`
	IndexName string `db:"index_name" json:"index_name"`
	IdxScans  int64  `db:"idx_scans" json:"idx_scans"`
	IdxSize   string `db:"idx_size" json:"idx_size"`
}

type SessionInfo struct {
	PID           int        `db:"pid" json:"pid"`
	Username      *string    `db:"username" json:"username,omitempty"`
	ClientAddr    *string    `db:"client_addr" json:"client_addr,omitempty"`
	State         *string    `db:"state" json:"state,omitempty"`
	Query         *string    `db:"query" json:"query,omitempty"`
	BackendStart  *time.Time `db:"backend_start" json:"backend_start,omitempty"`
	WaitEventType *string    `db:"wait_event_type" json:"wait_event_type,omitempty"`
}

type AdhocQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

type QueryResult struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Count   int                      `json:"count"`
}
