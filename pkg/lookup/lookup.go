// Package lookup holds the read-only tables the protocol core consults:
// radio ids, talkgroups, channel identities and the RSSI mapping. Tables
// are loaded before the core runs and may be swapped wholesale on reload.
package lookup

// maxID is the largest 24-bit DMR id.
const maxID = 0xFFFFFF

// RadioIDLookup answers whether a source radio may use the site.
type RadioIDLookup interface {
	IsValid(id uint32) bool
	Find(id uint32) (RadioID, bool)
}

// TalkgroupLookup answers whether a destination talkgroup is carried.
type TalkgroupLookup interface {
	IsValid(id uint32) bool
	// IsValidOnSlot also honours a talkgroup's slot binding.
	IsValidOnSlot(id uint32, slot uint8) bool
	Find(id uint32) (Talkgroup, bool)
}

// RSSIMapper converts a raw modem RSSI reading to dBm.
type RSSIMapper interface {
	Interpolate(raw uint16) int
}

// RadioID is one subscriber entry.
type RadioID struct {
	ID       uint32
	Callsign string
	Name     string
	Enabled  bool
}

// Talkgroup is one destination entry.
type Talkgroup struct {
	ID     uint32
	Name   string
	Slot   uint8 // 0 means either slot
	Active bool
}
