package dmr

import (
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/network"
)

// ProcessNetwork takes one burst from the network receive queue, validates
// it and queues it for transmission. It returns false when nothing was
// waiting or the burst was dropped.
func (c *Control) ProcessNetwork() bool {
	if c.network == nil {
		return false
	}
	d, ok := c.network.ReadDMR()
	if !ok || d == nil {
		return false
	}

	if d.Slot != c.slot {
		c.stats.WrongSlot++
		return false
	}

	burst := make([]byte, FrameLengthBytes)
	copy(burst, d.Payload[:])

	switch d.FrameType {
	case network.FrameDataSync:
		ok = c.netDataBurst(d, burst)
	case network.FrameVoiceSync:
		ok = c.netVoiceSync(d, burst)
	case network.FrameVoice:
		ok = c.netVoice(d, burst)
	default:
		c.stats.Malformed++
		ok = false
	}

	if ok {
		c.stats.NetFrames++
		c.netSeqErrs = 0
	}
	return ok
}

func (c *Control) netSequenceError(what string) bool {
	c.stats.Sequence++
	if !c.net.InCall() {
		return false
	}

	c.net.AddError()
	c.netSeqErrs++
	if c.debug {
		c.log.Debug("Network frame out of sequence",
			logger.String("frame", what),
			logger.Stringer("state", c.net.State()))
	}
	if c.netSeqErrs >= maxSequenceErrors {
		c.log.Warn("Too many out of sequence frames, ending network call",
			logger.Uint32("src", c.net.SrcID),
			logger.Uint32("dst", c.net.DstID))
		c.emit(c.endNet(call.EndViolation, time.Now()))
	}
	return false
}

func (c *Control) netChecksumError(what string, err error) bool {
	c.stats.Checksum++
	if c.net.InCall() {
		c.net.AddError()
	}
	if c.debug {
		c.log.Debug("Network frame failed validation",
			logger.String("frame", what),
			logger.Error(err))
	}
	return false
}

// duplicateOfRF reports whether d belongs to a network call that was not
// opened because RF already carries its destination.
func (c *Control) duplicateOfRF(d *network.Data) bool {
	if c.net.InCall() || !c.rf.InCall() || d.DstID != c.rf.DstID {
		return false
	}
	c.stats.Duplicates++
	return true
}

// netOwns reports whether d belongs to the open network call.
func (c *Control) netOwns(d *network.Data) bool {
	return c.net.InCall() && (c.netStream == 0 || d.StreamID == c.netStream)
}

func (c *Control) netDataBurst(d *network.Data, burst []byte) bool {
	dt := DataType(d.DataType)
	switch dt {
	case DTVoiceLCHeader:
		return c.netVoiceHeader(d, burst)
	case DTTerminatorWithLC:
		return c.netTerminator(d, burst)
	case DTVoicePIHeader:
		if c.net.State() != call.Receiving || !c.netOwns(d) {
			return c.netSequenceError("pi header")
		}
		if _, err := DecodePIHeader(burst); err != nil {
			return c.netChecksumError("pi header", err)
		}
		c.net.Touch()
		c.transmitData(dt, burst)
		return true
	case DTCSBK:
		csbk, err := DecodeCSBK(burst)
		if err != nil {
			return c.netChecksumError("csbk", err)
		}
		if c.verbose {
			c.log.Debug("Network CSBK",
				logger.Int("csbko", int(csbk.CSBKO)),
				logger.Uint32("src", csbk.SrcID),
				logger.Uint32("dst", csbk.DstID))
		}
		if c.rf.InCall() {
			// the air is busy; a CSBK cannot wait for it
			c.stats.Duplicates++
			return false
		}
		c.transmitData(dt, burst)
		return true
	case DTDataHeader:
		return c.netDataHeader(d, burst)
	case DTRate12Data, DTRate34Data, DTRate1Data:
		return c.netDataBlock(d, dt, burst)
	case DTIdle:
		return false
	default:
		c.stats.Malformed++
		return false
	}
}

func (c *Control) netVoiceHeader(d *network.Data, burst []byte) bool {
	lc, err := DecodeFullLC(burst, DTVoiceLCHeader)
	if err != nil {
		return c.netChecksumError("voice header", err)
	}

	if c.net.InCall() {
		if c.net.Type == call.TypeVoice && lc.DstID == c.net.DstID && lc.SrcID == c.net.SrcID {
			c.netLC = lc
			c.netStream = d.StreamID
			c.net.Touch()
			c.transmitData(DTVoiceLCHeader, burst)
			return true
		}

		c.log.Warn("Network header for another destination mid call",
			logger.Uint32("dst", c.net.DstID),
			logger.Uint32("new_dst", lc.DstID))
		c.emit(c.endNet(call.EndViolation, time.Now()))
		c.dest.Clear()
	}

	if !c.admit(call.OriginNet, lc.SrcID, lc.DstID, lc.IsGroup()) {
		return false
	}

	c.netLC = lc
	c.netStream = d.StreamID
	c.netEmbedded.Reset()
	c.netData.reset()
	c.net.Start(lc.SrcID, lc.DstID, lc.IsGroup(), call.TypeVoice, time.Now())
	c.dest.Bind(call.OriginNet, lc.SrcID, lc.DstID)
	if d.RSSI != 0 {
		c.net.RSSI.Add(-int(d.RSSI))
	}

	c.log.Info("Network voice call started",
		logger.Uint32("src", lc.SrcID),
		logger.Uint32("dst", lc.DstID),
		logger.Bool("group", lc.IsGroup()))
	c.emit(c.startEvent(c.net))

	c.transmitData(DTVoiceLCHeader, burst)
	return true
}

// netTerminator closes the network call. The terminator is transmitted so
// radios hear the end of the call.
func (c *Control) netTerminator(d *network.Data, burst []byte) bool {
	if !c.netOwns(d) {
		return false
	}

	lc, err := DecodeFullLC(burst, DTTerminatorWithLC)
	if err != nil {
		return c.netChecksumError("terminator", err)
	}
	if lc.DstID != c.net.DstID {
		return c.netSequenceError("terminator for another destination")
	}

	c.net.Touch()
	c.netLC = lc
	c.transmitData(DTTerminatorWithLC, burst)
	c.emit(c.endNet(call.EndTerminator, time.Now()))
	return true
}

func (c *Control) netDataHeader(d *network.Data, burst []byte) bool {
	h, err := DecodeDataHeader(burst)
	if err != nil {
		return c.netChecksumError("data header", err)
	}

	if c.net.InCall() {
		if c.net.Type == call.TypeData && h.DstID == c.net.DstID {
			c.net.Touch()
			c.transmitData(DTDataHeader, burst)
			return true
		}
		c.emit(c.endNet(call.EndViolation, time.Now()))
		c.dest.Clear()
	}

	if !c.admit(call.OriginNet, h.SrcID, h.DstID, h.Group) {
		return false
	}

	c.transmitData(DTDataHeader, burst)
	if h.Blocks == 0 {
		return true
	}

	c.netStream = d.StreamID
	c.netData = pduState{header: h, left: h.Blocks}
	c.net.Start(h.SrcID, h.DstID, h.Group, call.TypeData, time.Now())
	c.dest.Bind(call.OriginNet, h.SrcID, h.DstID)
	c.log.Info("Network data call started",
		logger.Uint32("src", h.SrcID),
		logger.Uint32("dst", h.DstID),
		logger.Int("blocks", h.Blocks))
	c.emit(c.startEvent(c.net))
	return true
}

func (c *Control) netDataBlock(d *network.Data, dt DataType, burst []byte) bool {
	if c.duplicateOfRF(d) {
		return false
	}
	if !c.netOwns(d) || c.net.Type != call.TypeData || c.netData.header == nil {
		return c.netSequenceError(dt.String())
	}

	if dt == DTRate12Data {
		blk, err := DecodeRate12Block(burst, c.netData.header.Confirmed())
		if err != nil {
			return c.netChecksumError(dt.String(), err)
		}
		c.netData.pdu = append(c.netData.pdu, blk.Data...)
	}

	c.net.Activate()
	c.net.Touch()
	c.transmitData(dt, burst)

	c.netData.left--
	if c.netData.left > 0 {
		return true
	}

	var pduErr error
	if dt == DTRate12Data {
		pduErr = CheckPDU(c.netData.pdu)
	}
	ev := c.endNet(call.EndTerminator, time.Now())
	if pduErr != nil {
		c.stats.Checksum++
		ev.Errors++
		ev.Detail = pduErr.Error()
	}
	c.emit(ev)
	return true
}

func (c *Control) netVoiceSync(d *network.Data, burst []byte) bool {
	if c.duplicateOfRF(d) {
		return false
	}
	if !c.netOwns(d) || c.net.Type != call.TypeVoice {
		return c.netSequenceError("voice sync")
	}

	c.net.Activate()
	c.net.Touch()
	if d.RSSI != 0 {
		c.net.RSSI.Add(-int(d.RSSI))
	}

	AddSync(burst, SyncBSAudio)
	c.enqueue(ModemFrame(TagData, ControlSyncVoice, burst))
	return true
}

func (c *Control) netVoice(d *network.Data, burst []byte) bool {
	if c.duplicateOfRF(d) {
		return false
	}
	if !c.netOwns(d) || c.net.State() != call.Active || c.net.Type != call.TypeVoice {
		return c.netSequenceError("voice")
	}

	emb, ok := DecodeEMB(burst)
	if !ok {
		return c.netChecksumError("emb", nil)
	}
	if emb.LCSS != LCSSSingle {
		if lc, ok := c.netEmbedded.Add(burst, emb.LCSS); ok {
			c.netLC = lc
		}
	}

	// the network does not know our color code
	emb.ColorCode = c.colorCode
	emb.Encode(burst)

	c.net.Touch()
	c.enqueue(ModemFrame(TagData, d.DataType&ControlSeqMask, burst))
	return true
}

// transmitData queues a network data burst with this site's slot type and
// base station sync.
func (c *Control) transmitData(dt DataType, burst []byte) {
	Regenerate(burst, dt, c.colorCode, SyncBSData)
	c.enqueue(ModemFrame(TagData, ControlSyncData|byte(dt), burst))
}
