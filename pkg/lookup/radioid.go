package lookup

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

// RadioIDTable is the in-memory subscriber table. Entries are replaced
// wholesale on load; ids missing from the table fall through to the ACL.
type RadioIDTable struct {
	mu      sync.RWMutex
	entries map[uint32]RadioID
	acl     *ACL
	log     *logger.Logger
}

// NewRadioIDTable creates an empty table. A nil acl permits every id.
func NewRadioIDTable(acl *ACL, log *logger.Logger) *RadioIDTable {
	if acl == nil {
		acl = PermitAll()
	}
	return &RadioIDTable{
		entries: make(map[uint32]RadioID),
		acl:     acl,
		log:     log.WithComponent("lookup.rid"),
	}
}

// IsValid reports whether id may key up. Zero is never valid and an entry
// marked disabled is refused regardless of the ACL.
func (t *RadioIDTable) IsValid(id uint32) bool {
	if id == 0 || id > maxID {
		return false
	}

	t.mu.RLock()
	entry, ok := t.entries[id]
	t.mu.RUnlock()
	if ok && !entry.Enabled {
		return false
	}
	return t.acl.Check(id)
}

// Find returns the entry for id.
func (t *RadioIDTable) Find(id uint32) (RadioID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[id]
	return entry, ok
}

// Len returns the number of entries.
func (t *RadioIDTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Replace swaps the table contents for radios.
func (t *RadioIDTable) Replace(radios []database.Radio) {
	entries := make(map[uint32]RadioID, len(radios))
	for _, r := range radios {
		entries[r.RadioID] = RadioID{
			ID:       r.RadioID,
			Callsign: r.Callsign,
			Name:     r.FullName(),
			Enabled:  !r.Disabled,
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// LoadFile reads a radioid.net style CSV file into the table.
func (t *RadioIDTable) LoadFile(path string) ([]database.Radio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open radio id file: %w", err)
	}
	defer f.Close()

	radios, err := ParseRadioCSV(f, t.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Replace(radios)
	t.log.Info("Loaded radio ids", logger.String("file", path), logger.Int("count", len(radios)))
	return radios, nil
}

// LoadFromDB fills the table from the radios table.
func (t *RadioIDTable) LoadFromDB(repo *database.RadioRepository) error {
	radios, err := repo.All()
	if err != nil {
		return fmt.Errorf("failed to read radios: %w", err)
	}
	t.Replace(radios)
	t.log.Info("Loaded radio ids from database", logger.Int("count", len(radios)))
	return nil
}

// ParseRadioCSV parses the radioid.net user export:
// RADIO_ID,CALLSIGN,FIRST_NAME,LAST_NAME,CITY,STATE,COUNTRY[,...]
// A header row is skipped when its first column is not numeric. A missing
// name column is accepted, and a trailing "0" or "false" eighth column
// marks the radio disabled.
func ParseRadioCSV(r io.Reader, log *logger.Logger) ([]database.Radio, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	radios := make([]database.Radio, 0, 1024)
	lineNum := 0
	now := time.Now()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			log.Warn("Error reading CSV line", logger.Int("line", lineNum), logger.Error(err))
			continue
		}
		if len(record) < 2 {
			continue
		}

		radioID, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 32)
		if err != nil || radioID > maxID {
			if lineNum > 1 {
				log.Debug("Skipping invalid radio id", logger.Int("line", lineNum))
			}
			continue
		}

		col := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}
		radio := database.Radio{
			RadioID:   uint32(radioID),
			Callsign:  col(1),
			FirstName: col(2),
			LastName:  col(3),
			City:      col(4),
			State:     col(5),
			Country:   col(6),
			UpdatedAt: now,
		}
		switch strings.ToLower(col(7)) {
		case "0", "false", "no":
			radio.Disabled = true
		}
		radios = append(radios, radio)
	}

	return radios, nil
}
