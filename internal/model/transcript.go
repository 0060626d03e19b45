package model

import "time"

// Transcript records one completed pipeline run for offline inspection.
// Written asynchronously by the transcript persist worker.
type Transcript struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Query       string    `gorm:"type:text;not null" json:"query"`
	Answer      string    `gorm:"type:mediumtext;not null" json:"answer"`
	Model       string    `gorm:"size:64" json:"model"`
	Grounded    bool      `json:"grounded"`
	SourceCount int       `json:"source_count"`
	CreatedAt   time.Time `json:"created_at"`
}
