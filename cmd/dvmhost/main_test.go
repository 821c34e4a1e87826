package main

import (
	"strings"
	"testing"

	"github.com/dbehnke/dvmhost-go/pkg/config"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/lookup"
)

func TestRepeaterInfo(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	iden := lookup.NewIdenTable()
	if err := iden.Load(strings.NewReader("2,449000000,12.5,-5.000,12.5,\n")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		iden      *lookup.IdenTable
		channelID int
		slot2     bool
		wantTX    uint32
		wantRX    uint32
		wantSlots string
	}{
		{"no iden table", nil, 2, true, 438800000, 438800000, "4"},
		{"empty iden table", lookup.NewIdenTable(), 2, true, 438800000, 438800000, "4"},
		{"channel from iden table", iden, 2, true, 449050000, 444050000, "4"},
		{"unknown channel id", iden, 3, false, 438800000, 438800000, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.System.ChannelID = tt.channelID
			cfg.System.ChannelNo = 4
			cfg.Network.TXFreq = 438800000
			cfg.Network.RXFreq = 438800000
			cfg.Network.Callsign = "n0call"
			cfg.DMR.Slot1 = true
			cfg.DMR.Slot2 = tt.slot2

			info := repeaterInfo(cfg, tt.iden, log)
			if info.TXFreq != tt.wantTX || info.RXFreq != tt.wantRX {
				t.Errorf("freqs = %d/%d, want %d/%d", info.TXFreq, info.RXFreq, tt.wantTX, tt.wantRX)
			}
			if info.Slots != tt.wantSlots || info.Callsign != "N0CALL" {
				t.Errorf("info = %+v", info)
			}
		})
	}
}
