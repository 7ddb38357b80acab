package restir

import "time"

// StageTiming is the wall time of one pipeline stage, summed over passes
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration,format:nano"`
}

// FrameStats summarizes the most recently completed frame
type FrameStats struct {
	FrameIndex      uint32        `json:"frameIndex"`
	Stages          []StageTiming `json:"stages"`
	Total           time.Duration `json:"total,format:nano"`
	ValidPixels     int           `json:"validPixels"`
	EmptyReservoirs int           `json:"emptyReservoirs"`
	MeanM           float64       `json:"meanM"`
	HistoryUsed     bool          `json:"historyUsed"`
}

// collectReservoirStats fills the reservoir counters from every pass
func (r *ReSTIR) collectReservoirStats() {
	contexts := r.buf.currentContexts()
	valid := 0
	for i := range contexts {
		if contexts[i].Valid {
			valid++
		}
	}

	empty := 0
	sumM := 0.0
	count := 0
	for p := range r.buf.passes {
		for i, res := range r.buf.passes[p].current {
			if !contexts[i].Valid {
				continue
			}
			count++
			sumM += res.M
			if res.IsEmpty() {
				empty++
			}
		}
	}

	r.stats.ValidPixels = valid
	r.stats.EmptyReservoirs = empty
	r.stats.MeanM = 0
	if count > 0 {
		r.stats.MeanM = sumM / float64(count)
	}
}
