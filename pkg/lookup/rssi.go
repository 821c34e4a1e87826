package lookup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

type rssiPoint struct {
	raw uint16
	dbm int
}

// RSSIInterpolator maps raw modem RSSI readings to dBm by linear
// interpolation between calibration points. Readings outside the
// calibrated range clamp to the nearest end point.
type RSSIInterpolator struct {
	points []rssiPoint
}

// NewRSSIInterpolator creates an interpolator with no points; it maps
// everything to 0, which callers treat as unknown.
func NewRSSIInterpolator() *RSSIInterpolator {
	return &RSSIInterpolator{}
}

// Add inserts a calibration point, replacing any with the same raw value.
func (m *RSSIInterpolator) Add(raw uint16, dbm int) {
	i := sort.Search(len(m.points), func(i int) bool { return m.points[i].raw >= raw })
	if i < len(m.points) && m.points[i].raw == raw {
		m.points[i].dbm = dbm
		return
	}
	m.points = append(m.points, rssiPoint{})
	copy(m.points[i+1:], m.points[i:])
	m.points[i] = rssiPoint{raw, dbm}
}

// Len returns the number of calibration points.
func (m *RSSIInterpolator) Len() int {
	return len(m.points)
}

// Interpolate converts a raw reading to dBm.
func (m *RSSIInterpolator) Interpolate(raw uint16) int {
	n := len(m.points)
	if n == 0 {
		return 0
	}
	if raw <= m.points[0].raw {
		return m.points[0].dbm
	}
	if raw >= m.points[n-1].raw {
		return m.points[n-1].dbm
	}

	i := sort.Search(n, func(i int) bool { return m.points[i].raw >= raw })
	hi, lo := m.points[i], m.points[i-1]
	if hi.raw == raw {
		return hi.dbm
	}
	span := int(hi.raw) - int(lo.raw)
	offset := int(raw) - int(lo.raw)
	return lo.dbm + (hi.dbm-lo.dbm)*offset/span
}

// LoadFile reads calibration points from path.
func (m *RSSIInterpolator) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open RSSI mapping: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}

// Load reads "raw dBm" pairs, one per line; # starts a comment.
func (m *RSSIInterpolator) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var points []rssiPoint

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return fmt.Errorf("line %d: expected raw and dBm", lineNum)
		}

		raw, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return fmt.Errorf("line %d: invalid raw value %q", lineNum, fields[0])
		}
		dbm, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: invalid dBm value %q", lineNum, fields[1])
		}
		points = append(points, rssiPoint{uint16(raw), dbm})
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	m.points = m.points[:0]
	for _, p := range points {
		m.Add(p.raw, p.dbm)
	}
	return nil
}
