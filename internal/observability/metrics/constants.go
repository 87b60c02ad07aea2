// Package metrics provides constants used across metric definitions.
package metrics

// Operation type constants used in switch statements across metrics.
const (
	// OpDbQuery represents database read operations.
	OpDbQuery = "db_query"
	// OpDbInsert represents database insert operations.
	OpDbInsert = "db_insert"
	// OpDbDelete represents database delete operations.
	OpDbDelete = "db_delete"
	// OpDbMigrate represents schema migration at open time.
	OpDbMigrate = "db_migrate"
	// OpDbCopy represents copying records between databases.
	OpDbCopy = "db_copy"
	// OpAnalytics represents aggregate statistics queries.
	OpAnalytics = "analytics"
)

// Recorder operation names, used as the operation label for storage failures.
const (
	OpSave   = "save"
	OpRecent = "recent"
	OpGet    = "get"
	OpDelete = "delete"
	OpStats  = "stats"
)

// Status and label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// StatusInvalidMethod and StatusInvalidInput are normalization outcomes
	StatusInvalidMethod = "invalid_method"
	StatusInvalidInput  = "invalid_input"

	// LabelRecords is the table label for the data_norm table.
	LabelRecords = "data_norm"
	// LabelUnknown is used when an operation carries no table.
	LabelUnknown = "unknown"
)

// Histogram bucket configuration constants.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1 is the starting bucket for count histograms.
	BucketStart1 = 1.0

	BucketFactor2 = 2

	BucketCount12 = 12
	BucketCount15 = 15
	BucketCount20 = 20
)
