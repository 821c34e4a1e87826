package lookup

import (
	"bufio"
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

// TalkgroupTable is the set of destinations the site carries. With an empty
// table every talkgroup the ACL permits is valid.
type TalkgroupTable struct {
	mu      sync.RWMutex
	entries map[uint32]Talkgroup
	acl     *ACL
	log     *logger.Logger
}

// NewTalkgroupTable creates an empty table. A nil acl permits every id.
func NewTalkgroupTable(acl *ACL, log *logger.Logger) *TalkgroupTable {
	if acl == nil {
		acl = PermitAll()
	}
	return &TalkgroupTable{
		entries: make(map[uint32]Talkgroup),
		acl:     acl,
		log:     log.WithComponent("lookup.tg"),
	}
}

// IsValid reports whether calls to id are carried. Talkgroup zero is
// never valid; a listed talkgroup must be active.
func (t *TalkgroupTable) IsValid(id uint32) bool {
	if id == 0 || id > maxID {
		return false
	}

	t.mu.RLock()
	entry, ok := t.entries[id]
	t.mu.RUnlock()
	if ok && !entry.Active {
		return false
	}
	return t.acl.Check(id)
}

// IsValidOnSlot is IsValid plus the slot binding of a listed talkgroup.
func (t *TalkgroupTable) IsValidOnSlot(id uint32, slot uint8) bool {
	if !t.IsValid(id) {
		return false
	}
	entry, ok := t.Find(id)
	return !ok || entry.Slot == 0 || entry.Slot == slot
}

// Find returns the entry for id.
func (t *TalkgroupTable) Find(id uint32) (Talkgroup, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.entries[id]
	return entry, ok
}

// Len returns the number of entries.
func (t *TalkgroupTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Replace swaps the table contents for tgs.
func (t *TalkgroupTable) Replace(tgs []database.Talkgroup) {
	entries := make(map[uint32]Talkgroup, len(tgs))
	for _, tg := range tgs {
		entries[tg.TalkgroupID] = Talkgroup{
			ID:     tg.TalkgroupID,
			Name:   tg.Name,
			Slot:   uint8(tg.Slot),
			Active: tg.Active,
		}
	}

	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// LoadFile reads a talkgroup file into the table.
func (t *TalkgroupTable) LoadFile(path string) ([]database.Talkgroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open talkgroup file: %w", err)
	}
	defer f.Close()

	tgs, err := ParseTalkgroups(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Replace(tgs)
	t.log.Info("Loaded talkgroups", logger.String("file", path), logger.Int("count", len(tgs)))
	return tgs, nil
}

// LoadFromDB fills the table from the talkgroups table.
func (t *TalkgroupTable) LoadFromDB(repo *database.TalkgroupRepository) error {
	tgs, err := repo.All()
	if err != nil {
		return fmt.Errorf("failed to read talkgroups: %w", err)
	}
	t.Replace(tgs)
	t.log.Info("Loaded talkgroups from database", logger.Int("count", len(tgs)))
	return nil
}

// ParseTalkgroups parses lines of the form TGID,NAME[,SLOT[,ACTIVE]].
// Blank lines and lines starting with # are skipped. SLOT 0 or missing
// means either slot; ACTIVE defaults to true.
func ParseTalkgroups(r io.Reader) ([]database.Talkgroup, error) {
	var tgs []database.Talkgroup
	scanner := bufio.NewScanner(r)
	lineNum := 0
	now := time.Now()

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil || id == 0 || id > maxID {
			return nil, fmt.Errorf("line %d: invalid talkgroup id %q", lineNum, fields[0])
		}
		tg := database.Talkgroup{TalkgroupID: uint32(id), Active: true, UpdatedAt: now}
		if len(fields) > 1 {
			tg.Name = fields[1]
		}
		if len(fields) > 2 && fields[2] != "" {
			slot, err := strconv.Atoi(fields[2])
			if err != nil || slot < 0 || slot > 2 {
				return nil, fmt.Errorf("line %d: invalid slot %q", lineNum, fields[2])
			}
			tg.Slot = slot
		}
		if len(fields) > 3 && fields[3] != "" {
			active, err := strconv.ParseBool(fields[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid active flag %q", lineNum, fields[3])
			}
			tg.Active = active
		}
		tgs = append(tgs, tg)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tgs, nil
}
