package lookup

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// IdenEntry describes one channel identity: the band plan a logical
// channel number is resolved against.
type IdenEntry struct {
	ChannelID     uint8
	BaseFrequency uint32  // Hz
	SpacingKHz    float64 // channel spacing
	TxOffsetMHz   float64 // receive = transmit + offset
	BandwidthKHz  float64
}

// TxFrequency returns the transmit frequency in Hz of channel number ch.
func (e IdenEntry) TxFrequency(ch uint32) uint32 {
	return e.BaseFrequency + uint32(math.Round(e.SpacingKHz*1000))*ch
}

// RxFrequency returns the receive frequency in Hz of channel number ch.
func (e IdenEntry) RxFrequency(ch uint32) uint32 {
	offset := int64(math.Round(e.TxOffsetMHz * 1e6))
	return uint32(int64(e.TxFrequency(ch)) + offset)
}

// Frequencies resolves channel number ch of channel identity id to transmit
// and receive frequencies in Hz.
func (t *IdenTable) Frequencies(id uint8, ch uint32) (tx, rx uint32, ok bool) {
	e, ok := t.Find(id)
	if !ok {
		return 0, 0, false
	}
	return e.TxFrequency(ch), e.RxFrequency(ch), true
}

// IdenTable maps channel identities (0 to 15) to band plans.
type IdenTable struct {
	mu      sync.RWMutex
	entries map[uint8]IdenEntry
}

// NewIdenTable creates an empty table.
func NewIdenTable() *IdenTable {
	return &IdenTable{entries: make(map[uint8]IdenEntry)}
}

// Find returns the band plan of channel identity id.
func (t *IdenTable) Find(id uint8) (IdenEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	return e, ok
}

// Len returns the number of entries.
func (t *IdenTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// LoadFile replaces the table with the contents of path.
func (t *IdenTable) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open iden table: %w", err)
	}
	defer f.Close()
	return t.Load(f)
}

// Load replaces the table with lines of the form
// ChId,BaseFrequencyHz,SpacingKHz,TxOffsetMHz,BandwidthKHz,
func (t *IdenTable) Load(r io.Reader) error {
	entries := make(map[uint8]IdenEntry)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(strings.TrimSuffix(line, ","), ",")
		if len(fields) < 5 {
			return fmt.Errorf("line %d: expected 5 fields, got %d", lineNum, len(fields))
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		id, err := strconv.ParseUint(fields[0], 10, 8)
		if err != nil || id > 15 {
			return fmt.Errorf("line %d: invalid channel id %q", lineNum, fields[0])
		}
		base, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: invalid base frequency %q", lineNum, fields[1])
		}
		var nums [3]float64
		for i := range nums {
			if nums[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
				return fmt.Errorf("line %d: invalid number %q", lineNum, fields[2+i])
			}
		}

		entries[uint8(id)] = IdenEntry{
			ChannelID:     uint8(id),
			BaseFrequency: uint32(base),
			SpacingKHz:    nums[0],
			TxOffsetMHz:   nums[1],
			BandwidthKHz:  nums[2],
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
	return nil
}
