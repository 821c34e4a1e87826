package dmr

import (
	"encoding/binary"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/network"
)

// ProcessFrame validates one modem frame, [tag][control][33 byte burst]
// optionally followed by a big-endian raw RSSI value. It returns true when
// the frame was accepted; rejected frames are counted and otherwise
// ignored.
func (c *Control) ProcessFrame(data []byte) bool {
	if len(data) == 0 {
		c.stats.Malformed++
		return false
	}

	switch data[0] {
	case TagLost:
		if c.rf.InCall() {
			c.emit(c.endRF(call.EndLost, time.Now()))
		}
		return false
	case TagEOT:
		return false
	case TagHeader, TagData:
	default:
		c.stats.Malformed++
		return false
	}

	if len(data) < ModemFrameLength {
		c.stats.Malformed++
		return false
	}

	burst := make([]byte, FrameLengthBytes)
	copy(burst, data[2:ModemFrameLength])

	var ok bool
	switch kind := Classify(burst); {
	case kind.IsData():
		ok = c.rfDataBurst(burst)
	case kind.IsAudio():
		ok = c.rfVoiceSync(burst)
	default:
		ok = c.rfVoice(burst)
	}

	if ok {
		c.stats.RFFrames++
		c.rfSeqErrs = 0
		if len(data) >= RSSIFrameLength {
			c.addRSSI(binary.BigEndian.Uint16(data[ModemFrameLength:RSSIFrameLength]))
		}
	}
	return ok
}

func (c *Control) addRSSI(raw uint16) {
	if c.rssi == nil || !c.rf.InCall() {
		return
	}
	dbm := c.rssi.Interpolate(raw)
	if dbm == 0 {
		return
	}
	c.rf.RSSI.Add(dbm)
	if dbm < 0 && dbm > -256 {
		c.rfLastRSSI = byte(-dbm)
	}
}

// rfSequenceError counts a frame that arrived in the wrong call state and
// ends a call that keeps receiving them.
func (c *Control) rfSequenceError(what string) bool {
	c.stats.Sequence++
	if !c.rf.InCall() {
		return false
	}

	c.rf.AddError()
	c.rfSeqErrs++
	if c.debug {
		c.log.Debug("RF frame out of sequence",
			logger.String("frame", what),
			logger.Stringer("state", c.rf.State()))
	}
	if c.rfSeqErrs >= maxSequenceErrors {
		c.log.Warn("Too many out of sequence frames, ending RF call",
			logger.Uint32("src", c.rf.SrcID),
			logger.Uint32("dst", c.rf.DstID))
		c.emit(c.endRF(call.EndViolation, time.Now()))
	}
	return false
}

func (c *Control) rfChecksumError(what string, err error) bool {
	c.stats.Checksum++
	if c.rf.InCall() {
		c.rf.AddError()
	}
	if c.debug {
		c.log.Debug("RF frame failed validation",
			logger.String("frame", what),
			logger.Error(err))
	}
	return false
}

func (c *Control) rfDataBurst(burst []byte) bool {
	st, ok := DecodeSlotType(burst)
	if !ok {
		return c.rfChecksumError("slot type", nil)
	}
	if st.ColorCode != c.colorCode {
		c.stats.ColorCode++
		return false
	}

	switch st.DataType {
	case DTVoiceLCHeader:
		return c.rfVoiceHeader(burst)
	case DTTerminatorWithLC:
		return c.rfTerminator(burst)
	case DTVoicePIHeader:
		return c.rfPIHeader(burst)
	case DTCSBK:
		return c.rfCSBK(burst)
	case DTDataHeader:
		return c.rfDataHeader(burst)
	case DTRate12Data, DTRate34Data, DTRate1Data:
		return c.rfDataBlock(burst, st.DataType)
	case DTIdle:
		return false
	default:
		c.stats.Malformed++
		return false
	}
}

func (c *Control) rfVoiceHeader(burst []byte) bool {
	lc, err := DecodeFullLC(burst, DTVoiceLCHeader)
	if err != nil {
		return c.rfChecksumError("voice header", err)
	}

	if c.rf.InCall() {
		if c.rf.Type == call.TypeVoice && lc.DstID == c.rf.DstID && lc.SrcID == c.rf.SrcID {
			// repeated header
			c.rfLC = lc
			c.rf.Touch()
			c.repeatRF(DTVoiceLCHeader, burst)
			c.writeNetwork(lc.SrcID, lc.DstID, lc.IsGroup(), network.FrameDataSync, byte(DTVoiceLCHeader), burst)
			return true
		}

		c.log.Warn("RF header for another destination mid call",
			logger.Uint32("dst", c.rf.DstID),
			logger.Uint32("new_dst", lc.DstID))
		c.emit(c.endRF(call.EndViolation, time.Now()))
		c.dest.Clear()
	}

	if !c.admit(call.OriginRF, lc.SrcID, lc.DstID, lc.IsGroup()) {
		return false
	}

	now := time.Now()
	c.rfLC = lc
	c.rfEmbedded.Reset()
	c.rfData.reset()
	c.rfVoiceN = 0
	c.rfStream = newStreamID()
	c.rfSeq = 0
	c.rfLastRSSI = 0
	c.rf.Start(lc.SrcID, lc.DstID, lc.IsGroup(), call.TypeVoice, now)
	c.dest.Bind(call.OriginRF, lc.SrcID, lc.DstID)

	c.log.Info("RF voice call started",
		logger.Uint32("src", lc.SrcID),
		logger.Uint32("dst", lc.DstID),
		logger.Bool("group", lc.IsGroup()))
	c.emit(c.startEvent(c.rf))

	c.repeatRF(DTVoiceLCHeader, burst)
	c.writeNetwork(lc.SrcID, lc.DstID, lc.IsGroup(), network.FrameDataSync, byte(DTVoiceLCHeader), burst)
	return true
}

func (c *Control) rfTerminator(burst []byte) bool {
	if !c.rf.InCall() {
		return false
	}

	lc, err := DecodeFullLC(burst, DTTerminatorWithLC)
	if err != nil {
		return c.rfChecksumError("terminator", err)
	}
	if lc.DstID != c.rf.DstID {
		return c.rfSequenceError("terminator for another destination")
	}

	c.rf.Touch()
	c.rfLC = lc
	c.writeNetwork(lc.SrcID, lc.DstID, lc.IsGroup(), network.FrameDataSync, byte(DTTerminatorWithLC), burst)
	c.emit(c.endRF(call.EndTerminator, time.Now()))
	return true
}

func (c *Control) rfPIHeader(burst []byte) bool {
	if c.rf.State() != call.Receiving || c.rf.Type != call.TypeVoice {
		return c.rfSequenceError("pi header")
	}
	if _, err := DecodePIHeader(burst); err != nil {
		return c.rfChecksumError("pi header", err)
	}

	c.rf.Touch()
	c.repeatRF(DTVoicePIHeader, burst)
	c.writeNetwork(c.rf.SrcID, c.rf.DstID, c.rf.Group, network.FrameDataSync, byte(DTVoicePIHeader), burst)
	return true
}

func (c *Control) rfCSBK(burst []byte) bool {
	csbk, err := DecodeCSBK(burst)
	if err != nil {
		return c.rfChecksumError("csbk", err)
	}
	if c.radioIDs != nil && csbk.SrcID != 0 && !c.radioIDs.IsValid(csbk.SrcID) {
		c.reject(call.OriginRF, csbk.SrcID, csbk.DstID, false, "source radio not permitted")
		return false
	}

	if c.verbose {
		c.log.Debug("RF CSBK",
			logger.Int("csbko", int(csbk.CSBKO)),
			logger.Uint32("src", csbk.SrcID),
			logger.Uint32("dst", csbk.DstID))
	}
	if c.rf.InCall() {
		c.rf.Touch()
	}
	c.repeatRF(DTCSBK, burst)
	c.writeNetwork(csbk.SrcID, csbk.DstID, false, network.FrameDataSync, byte(DTCSBK), burst)
	return true
}

func (c *Control) rfDataHeader(burst []byte) bool {
	h, err := DecodeDataHeader(burst)
	if err != nil {
		return c.rfChecksumError("data header", err)
	}

	if c.rf.InCall() {
		if c.rf.Type == call.TypeData && h.DstID == c.rf.DstID {
			// header repeated ahead of the blocks
			c.rf.Touch()
			c.repeatRF(DTDataHeader, burst)
			c.writeNetwork(h.SrcID, h.DstID, h.Group, network.FrameDataSync, byte(DTDataHeader), burst)
			return true
		}
		c.emit(c.endRF(call.EndViolation, time.Now()))
		c.dest.Clear()
	}

	if !c.admit(call.OriginRF, h.SrcID, h.DstID, h.Group) {
		return false
	}

	c.rfStream = newStreamID()
	c.rfSeq = 0
	c.repeatRF(DTDataHeader, burst)
	c.writeNetwork(h.SrcID, h.DstID, h.Group, network.FrameDataSync, byte(DTDataHeader), burst)

	if h.Blocks == 0 {
		// header only, nothing to follow
		return true
	}

	c.rfData = pduState{header: h, left: h.Blocks}
	c.rf.Start(h.SrcID, h.DstID, h.Group, call.TypeData, time.Now())
	c.dest.Bind(call.OriginRF, h.SrcID, h.DstID)
	c.log.Info("RF data call started",
		logger.Uint32("src", h.SrcID),
		logger.Uint32("dst", h.DstID),
		logger.Int("blocks", h.Blocks))
	c.emit(c.startEvent(c.rf))
	return true
}

func (c *Control) rfDataBlock(burst []byte, dt DataType) bool {
	if !c.rf.InCall() || c.rf.Type != call.TypeData || c.rfData.header == nil {
		return c.rfSequenceError(dt.String())
	}

	var pduErr error
	if dt == DTRate12Data {
		blk, err := DecodeRate12Block(burst, c.rfData.header.Confirmed())
		if err != nil {
			return c.rfChecksumError(dt.String(), err)
		}
		c.rfData.pdu = append(c.rfData.pdu, blk.Data...)
	}

	c.rf.Activate()
	c.rf.Touch()
	c.repeatRF(dt, burst)
	c.writeNetwork(c.rf.SrcID, c.rf.DstID, c.rf.Group, network.FrameDataSync, byte(dt), burst)

	c.rfData.left--
	if c.rfData.left > 0 {
		return true
	}

	if dt == DTRate12Data {
		pduErr = CheckPDU(c.rfData.pdu)
	}
	ev := c.endRF(call.EndTerminator, time.Now())
	if pduErr != nil {
		c.stats.Checksum++
		ev.Errors++
		ev.Detail = pduErr.Error()
		c.log.Warn("Packet data failed its CRC", logger.Uint32("src", ev.SrcID), logger.Error(pduErr))
	}
	c.emit(ev)
	return true
}

func (c *Control) rfVoiceSync(burst []byte) bool {
	if !c.rf.InCall() || c.rf.Type != call.TypeVoice {
		return c.rfSequenceError("voice sync")
	}

	c.rf.Activate()
	c.rf.Touch()
	c.rfVoiceN = 0
	c.repeatRF(DTVoiceSync, burst)
	c.writeNetwork(c.rf.SrcID, c.rf.DstID, c.rf.Group, network.FrameVoiceSync, 0, burst)
	return true
}

func (c *Control) rfVoice(burst []byte) bool {
	if c.rf.IsIdle() {
		c.stats.Unsynced++
		return false
	}
	if c.rf.State() != call.Active || c.rf.Type != call.TypeVoice {
		return c.rfSequenceError("voice")
	}

	emb, ok := DecodeEMB(burst)
	if !ok {
		return c.rfChecksumError("emb", nil)
	}
	if emb.ColorCode != c.colorCode {
		c.stats.ColorCode++
		c.rf.AddError()
		return false
	}

	if emb.LCSS != LCSSSingle {
		if lc, ok := c.rfEmbedded.Add(burst, emb.LCSS); ok {
			c.rfLC = lc
			if c.verbose {
				c.log.Debug("RF embedded LC", logger.String("lc", lc.String()))
			}
		}
	}

	c.rfVoiceN++
	if c.rfVoiceN > 5 {
		c.rfVoiceN = 1
	}
	c.rf.Touch()
	c.repeatRF(DTVoice, burst)
	c.writeNetwork(c.rf.SrcID, c.rf.DstID, c.rf.Group, network.FrameVoice, byte(c.rfVoiceN), burst)
	return true
}

// repeatRF queues an RF burst for transmission with base station sync.
// Simplex sites do not repeat.
func (c *Control) repeatRF(dt DataType, burst []byte) {
	if !c.duplex {
		return
	}

	out := make([]byte, FrameLengthBytes)
	copy(out, burst)

	var control byte
	switch dt {
	case DTVoiceSync:
		AddSync(out, SyncBSAudio)
		control = ControlSyncVoice
	case DTVoice:
		control = byte(c.rfVoiceN) & ControlSeqMask
	default:
		Regenerate(out, dt, c.colorCode, SyncBSData)
		control = ControlSyncData | byte(dt)
	}
	c.enqueue(ModemFrame(TagData, control, out))
}
