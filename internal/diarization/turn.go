package diarization

// Turn represents a continuous time range attributed by the diarization
// backend to one speaker. Speaker labels are backend-internal identifiers
// with no meaning outside the call that produced them.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Overlap returns the duration of the intersection between the turn and the
// [start, end) interval, or 0 when they do not intersect.
func (t Turn) Overlap(start, end float64) float64 {
	lo := start
	if t.Start > lo {
		lo = t.Start
	}
	hi := end
	if t.End < hi {
		hi = t.End
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
