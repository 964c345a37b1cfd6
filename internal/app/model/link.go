package model

import "time"

// Link describes the core short-link entity stored in Postgres.
//
// Code is unique for the lifetime of the store: once a code has been issued
// it is never handed out again, even after the record is hard-deleted, so
// stale external references can never silently point at unrelated content.
type Link struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	Code          string     `json:"code" gorm:"size:16;uniqueIndex;not null"`
	URL           string     `json:"url" gorm:"type:text;not null"`
	Clicks        int64      `json:"clicks" gorm:"not null;default:0"`
	IsActive      bool       `json:"isActive" gorm:"not null;default:true"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
}

// DeleteMode selects between the two deletion contracts exposed by the API.
type DeleteMode int

const (
	// SoftDelete marks the record inactive. Reversible, keeps click stats,
	// hides the link from redirect resolution.
	SoftDelete DeleteMode = iota
	// HardDelete removes the record permanently.
	HardDelete
)

func (m DeleteMode) String() string {
	if m == HardDelete {
		return "hard"
	}
	return "soft"
}
