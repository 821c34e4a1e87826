package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/config"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

// BatchSize for database upserts
const BatchSize = 1000

// Tables bundles the lookups a site needs.
type Tables struct {
	Radios     *RadioIDTable
	Talkgroups *TalkgroupTable
	Iden       *IdenTable
	RSSI       *RSSIInterpolator

	cfg config.LookupConfig
	db  *database.DB
	log *logger.Logger
}

// Open builds the tables from cfg. When a file is configured it is loaded
// and, if db is not nil, copied into the database; otherwise the table is
// filled from the database.
func Open(cfg config.LookupConfig, db *database.DB, log *logger.Logger) (*Tables, error) {
	radioACL, tgACL := PermitAll(), PermitAll()
	if cfg.UseACL {
		var err error
		if cfg.RadioACL != "" {
			if radioACL, err = ParseACL(cfg.RadioACL); err != nil {
				return nil, fmt.Errorf("radio ACL: %w", err)
			}
		}
		if cfg.TalkgroupACL != "" {
			if tgACL, err = ParseACL(cfg.TalkgroupACL); err != nil {
				return nil, fmt.Errorf("talkgroup ACL: %w", err)
			}
		}
	}

	t := &Tables{
		Radios:     NewRadioIDTable(radioACL, log),
		Talkgroups: NewTalkgroupTable(tgACL, log),
		Iden:       NewIdenTable(),
		RSSI:       NewRSSIInterpolator(),
		cfg:        cfg,
		db:         db,
		log:        log.WithComponent("lookup"),
	}

	if cfg.IdenTableFile != "" {
		if err := t.Iden.LoadFile(cfg.IdenTableFile); err != nil {
			return nil, err
		}
	}
	if cfg.RSSIMappingFile != "" {
		if err := t.RSSI.LoadFile(cfg.RSSIMappingFile); err != nil {
			return nil, err
		}
	}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads the radio id and talkgroup sources.
func (t *Tables) Reload() error {
	if t.cfg.RadioIDFile != "" {
		radios, err := t.Radios.LoadFile(t.cfg.RadioIDFile)
		if err != nil {
			return err
		}
		if t.db != nil {
			if err := t.db.Radios().UpsertBatch(radios, BatchSize); err != nil {
				return fmt.Errorf("failed to save radios: %w", err)
			}
		}
	} else if t.db != nil {
		if err := t.Radios.LoadFromDB(t.db.Radios()); err != nil {
			return err
		}
	}

	if t.cfg.TalkgroupFile != "" {
		tgs, err := t.Talkgroups.LoadFile(t.cfg.TalkgroupFile)
		if err != nil {
			return err
		}
		if t.db != nil {
			for i := range tgs {
				if err := t.db.Talkgroups().Upsert(&tgs[i]); err != nil {
					return fmt.Errorf("failed to save talkgroup %d: %w", tgs[i].TalkgroupID, err)
				}
			}
		}
	} else if t.db != nil {
		if err := t.Talkgroups.LoadFromDB(t.db.Talkgroups()); err != nil {
			return err
		}
	}
	return nil
}

// Run reloads the tables every ReloadMinutes until ctx is done. It returns
// at once when reloading is disabled.
func (t *Tables) Run(ctx context.Context) {
	if t.cfg.ReloadMinutes <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(t.cfg.ReloadMinutes) * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("Lookup reloader stopped")
			return
		case <-ticker.C:
			if err := t.Reload(); err != nil {
				t.log.Error("Failed to reload lookup tables", logger.Error(err))
				continue
			}
			t.log.Info("Lookup tables reloaded",
				logger.Int("radios", t.Radios.Len()),
				logger.Int("talkgroups", t.Talkgroups.Len()))
		}
	}
}
