package database

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// CallRecord is one finished call on a slot
type CallRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Slot      int       `gorm:"not null" json:"slot"`
	Origin    string    `gorm:"size:8;not null" json:"origin"` // rf or net
	SrcID     uint32    `gorm:"index;not null" json:"src_id"`
	DstID     uint32    `gorm:"index;not null" json:"dst_id"`
	GroupCall bool      `json:"group"`
	CallType  string    `gorm:"size:8" json:"call_type"`
	EndReason string    `gorm:"size:16;index" json:"end_reason"`
	Duration  float64   `gorm:"not null" json:"duration"` // Duration in seconds
	Frames    uint32    `gorm:"default:0" json:"frames"`
	Errors    uint32    `gorm:"default:0" json:"errors"`
	RSSIMin   int       `json:"rssi_min"`
	RSSIMax   int       `json:"rssi_max"`
	RSSIAvg   int       `json:"rssi_avg"`
	StartTime time.Time `gorm:"index;not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for CallRecord
func (CallRecord) TableName() string {
	return "call_records"
}

// BeforeCreate hook to ensure StartTime and EndTime are set
func (c *CallRecord) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.EndTime.IsZero() {
		c.EndTime = time.Now()
	}
	if c.StartTime.IsZero() {
		c.StartTime = c.EndTime.Add(-time.Duration(c.Duration * float64(time.Second)))
	}
	return nil
}

// Radio is a subscriber radio id, as published by radioid.net or entered by
// the site operator
type Radio struct {
	RadioID   uint32    `gorm:"primarykey;not null" json:"radio_id"`
	Callsign  string    `gorm:"index;size:20" json:"callsign"`
	FirstName string    `gorm:"size:50" json:"first_name"`
	LastName  string    `gorm:"size:50" json:"last_name"`
	City      string    `gorm:"size:50" json:"city"`
	State     string    `gorm:"size:50" json:"state"`
	Country   string    `gorm:"size:50" json:"country"`
	Disabled  bool      `json:"disabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Radio
func (Radio) TableName() string {
	return "radios"
}

// FullName returns the full name of the user
func (r *Radio) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Location returns the formatted location string
func (r *Radio) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.City, r.State, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Talkgroup is a destination the site will carry
type Talkgroup struct {
	TalkgroupID uint32    `gorm:"primarykey;not null" json:"talkgroup_id"`
	Name        string    `gorm:"size:64" json:"name"`
	Slot        int       `json:"slot"` // 0 for either slot
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Talkgroup
func (Talkgroup) TableName() string {
	return "talkgroups"
}
