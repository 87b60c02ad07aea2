// model.go this code defines the data model for the application
package datastore

import (
	"strconv"
	"strings"
	"time"
)

// previewCount is how many original values a history row shows
const previewCount = 3

// Record is one stored normalization: the parsed input, its normalized form
// and the method used. Records are immutable once saved.
type Record struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalData   []float64 `gorm:"column:original_data;type:text;serializer:json;not null" json:"original"`
	NormalizedData []float64 `gorm:"column:normalized_data;type:text;serializer:json;not null" json:"normalized"`
	Method         string    `gorm:"type:varchar(20);not null;index:idx_data_norm_method" json:"method"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_data_norm_created_at" json:"created_at"`
}

// TableName keeps the historical table name
func (Record) TableName() string {
	return "data_norm"
}

// PointCount is the number of values in the record
func (r Record) PointCount() int {
	return len(r.OriginalData)
}

// OriginalPreview renders the first three original values, followed by
// "..." when there are more.
func (r Record) OriginalPreview() string {
	n := min(len(r.OriginalData), previewCount)

	parts := make([]string, n)
	for i, v := range r.OriginalData[:n] {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	preview := strings.Join(parts, ", ")
	if len(r.OriginalData) > previewCount {
		preview += "..."
	}
	return preview
}

// Stats holds aggregate numbers over all stored records
type Stats struct {
	TotalRecords int64      `json:"total_records"`
	MinMaxCount  int64      `json:"minmax_count"`
	ZScoreCount  int64      `json:"zscore_count"`
	FirstRecord  *time.Time `json:"first_record,omitempty"`
	LastRecord   *time.Time `json:"last_record,omitempty"`
}
