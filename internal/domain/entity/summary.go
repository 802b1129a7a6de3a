package entity

import (
	"fmt"
	"time"
)

// TransactionSummary holds the denormalized counters of a merchant.
// Counters only change through the Apply methods and Rollover.
type TransactionSummary struct {
	MerchantID uint64

	Sukses  int64
	Pending int64
	Gagal   int64
	Total   int64

	UangPending        int64 // money waiting for payment
	UangSuksesHariIni  int64 // paid today
	UangSuksesKemarin  int64 // paid yesterday
	UangSuksesBulanIni int64 // paid this month
	UangSuksesTotal    int64 // paid since the account was created
	OmsetTotal         int64 // fee + unique number of every paid transaction

	DayAnchor   time.Time // start of the day bucket of UangSuksesHariIni
	MonthAnchor time.Time // start of the month bucket of UangSuksesBulanIni
	UpdatedAt   time.Time
}

// SummaryDrift is a counter whose stored value differs from the recomputed one
type SummaryDrift struct {
	Field    string
	Stored   int64
	Computed int64
}

// String renders the drift for logs
func (d SummaryDrift) String() string {
	return fmt.Sprintf("%s: stored=%d computed=%d", d.Field, d.Stored, d.Computed)
}

// NewTransactionSummary creates an empty summary anchored at now
func NewTransactionSummary(merchantID uint64, now time.Time) *TransactionSummary {
	return &TransactionSummary{
		MerchantID:  merchantID,
		DayAnchor:   startOfDay(now),
		MonthAnchor: startOfMonth(now),
		UpdatedAt:   now,
	}
}

// ApplyCreated accounts for a new pending transaction
func (s *TransactionSummary) ApplyCreated(tx *Transaction, now time.Time) {
	s.Rollover(now)
	s.Pending++
	s.Total++
	s.UangPending += tx.Amount
	s.UpdatedAt = now
}

// ApplySucceeded accounts for a pending transaction that was paid
func (s *TransactionSummary) ApplySucceeded(tx *Transaction, now time.Time) {
	s.Rollover(now)
	s.Pending--
	s.UangPending -= tx.Amount
	s.Sukses++
	s.UangSuksesHariIni += tx.Amount
	s.UangSuksesBulanIni += tx.Amount
	s.UangSuksesTotal += tx.Amount
	s.OmsetTotal += tx.Margin()
	s.UpdatedAt = now
}

// ApplyFailed accounts for a pending transaction that expired or was cancelled
func (s *TransactionSummary) ApplyFailed(tx *Transaction, now time.Time) {
	s.Rollover(now)
	s.Pending--
	s.UangPending -= tx.Amount
	s.Gagal++
	s.UpdatedAt = now
}

// Rollover moves the day and month buckets forward to now.
// It returns true when any bucket changed.
func (s *TransactionSummary) Rollover(now time.Time) bool {
	changed := false

	today := startOfDay(now)
	if s.DayAnchor.IsZero() {
		s.DayAnchor = today
		changed = true
	} else if today.After(s.DayAnchor) {
		if startOfDay(today.AddDate(0, 0, -1)).Equal(s.DayAnchor) {
			s.UangSuksesKemarin = s.UangSuksesHariIni
		} else {
			s.UangSuksesKemarin = 0
		}
		s.UangSuksesHariIni = 0
		s.DayAnchor = today
		changed = true
	}

	month := startOfMonth(now)
	if s.MonthAnchor.IsZero() {
		s.MonthAnchor = month
		changed = true
	} else if month.After(s.MonthAnchor) {
		s.UangSuksesBulanIni = 0
		s.MonthAnchor = month
		changed = true
	}

	if changed {
		s.UpdatedAt = now
	}
	return changed
}

// FoldSummary recomputes a summary from the full transaction history
func FoldSummary(merchantID uint64, txs []*Transaction, now time.Time) *TransactionSummary {
	s := NewTransactionSummary(merchantID, now)
	today := s.DayAnchor
	yesterday := startOfDay(today.AddDate(0, 0, -1))

	for _, tx := range txs {
		s.Total++
		switch tx.Status {
		case StatusPending:
			s.Pending++
			s.UangPending += tx.Amount
		case StatusGagal:
			s.Gagal++
		case StatusSukses:
			s.Sukses++
			s.UangSuksesTotal += tx.Amount
			s.OmsetTotal += tx.Margin()

			paidAt := tx.SuccessTime().In(now.Location())
			paidDay := startOfDay(paidAt)
			switch {
			case paidDay.Equal(today):
				s.UangSuksesHariIni += tx.Amount
			case paidDay.Equal(yesterday):
				s.UangSuksesKemarin += tx.Amount
			}
			if startOfMonth(paidAt).Equal(s.MonthAnchor) {
				s.UangSuksesBulanIni += tx.Amount
			}
		}
	}
	return s
}

// Diff lists the counters that differ between s and computed
func (s *TransactionSummary) Diff(computed *TransactionSummary) []SummaryDrift {
	pairs := []struct {
		field    string
		stored   int64
		computed int64
	}{
		{"sukses", s.Sukses, computed.Sukses},
		{"pending", s.Pending, computed.Pending},
		{"gagal", s.Gagal, computed.Gagal},
		{"total", s.Total, computed.Total},
		{"uang_pending", s.UangPending, computed.UangPending},
		{"uang_sukses_hari_ini", s.UangSuksesHariIni, computed.UangSuksesHariIni},
		{"uang_sukses_kemarin", s.UangSuksesKemarin, computed.UangSuksesKemarin},
		{"uang_sukses_bulan_ini", s.UangSuksesBulanIni, computed.UangSuksesBulanIni},
		{"uang_sukses_total", s.UangSuksesTotal, computed.UangSuksesTotal},
		{"omset_total", s.OmsetTotal, computed.OmsetTotal},
	}

	var drifts []SummaryDrift
	for _, p := range pairs {
		if p.stored != p.computed {
			drifts = append(drifts, SummaryDrift{Field: p.field, Stored: p.stored, Computed: p.computed})
		}
	}
	return drifts
}

// Overwrite copies every counter of computed into s, keeping identity fields
func (s *TransactionSummary) Overwrite(computed *TransactionSummary, now time.Time) {
	merchantID := s.MerchantID
	*s = *computed
	s.MerchantID = merchantID
	s.UpdatedAt = now
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
