package state

import "github.com/akylbek/payment-system/fraud-dashboard/internal/models"

// MaxStreamEntries bounds the transaction stream.
const MaxStreamEntries = 10

// StreamEntry pairs a submitted test transaction with its classification.
type StreamEntry struct {
	Transaction models.TestTransaction      `json:"transaction"`
	Result      models.ClassificationResult `json:"result"`
}

// Stream is the most-recent-first list of classified transactions.
type Stream struct {
	entries []StreamEntry
	max     int
}

func NewStream(max int) *Stream {
	if max <= 0 {
		max = MaxStreamEntries
	}
	return &Stream{max: max}
}

// Append inserts at the front and drops entries from the back past the bound.
func (s *Stream) Append(tx models.TestTransaction, result models.ClassificationResult) {
	s.entries = append([]StreamEntry{{Transaction: tx, Result: result}}, s.entries...)
	for len(s.entries) > s.max {
		s.entries = s.entries[:len(s.entries)-1]
	}
}

func (s *Stream) Len() int {
	return len(s.entries)
}

func (s *Stream) Entries() []StreamEntry {
	return append([]StreamEntry(nil), s.entries...)
}
