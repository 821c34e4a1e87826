package call

// RSSIStats accumulates received signal strength over one call, in dBm.
type RSSIStats struct {
	Min   int
	Max   int
	sum   int64
	Count uint32
}

// Reset clears the statistics at call start.
func (s *RSSIStats) Reset() {
	*s = RSSIStats{}
}

// Add records one sample.
func (s *RSSIStats) Add(dBm int) {
	if s.Count == 0 {
		s.Min = dBm
		s.Max = dBm
	} else {
		if dBm < s.Min {
			s.Min = dBm
		}
		if dBm > s.Max {
			s.Max = dBm
		}
	}
	s.sum += int64(dBm)
	s.Count++
}

// Average returns the mean of all samples, or zero when there are none.
func (s *RSSIStats) Average() int {
	if s.Count == 0 {
		return 0
	}
	return int(s.sum / int64(s.Count))
}

// Summary is the immutable form reported in call end events.
type Summary struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Average int    `json:"average"`
	Samples uint32 `json:"samples"`
}

// Summary returns the current statistics.
func (s *RSSIStats) Summary() Summary {
	return Summary{Min: s.Min, Max: s.Max, Average: s.Average(), Samples: s.Count}
}
