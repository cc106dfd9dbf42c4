package dma

// HistorySize is the number of frames kept in Stats.History.
const HistorySize = 256

// Stats counts bus usage per owner.
type Stats struct {
	Frame   [NumOwners]int64 // current frame
	Total   [NumOwners]int64 // since reset
	History [][NumOwners]int64
}

func (s *Stats) reset() {
	*s = Stats{History: make([][NumOwners]int64, 0, HistorySize)}
}

func (s *Stats) count(o Owner) {
	s.Frame[o]++
	s.Total[o]++
}

// EndFrame moves the current frame into the history.
func (s *Stats) EndFrame() {
	if len(s.History) == HistorySize {
		copy(s.History, s.History[1:])
		s.History = s.History[:HistorySize-1]
	}
	s.History = append(s.History, s.Frame)
	s.Frame = [NumOwners]int64{}
}

// Reset clears all counts.
func (s *Stats) Reset() {
	s.reset()
}
