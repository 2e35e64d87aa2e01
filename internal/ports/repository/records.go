package repository

import (
	"fmt"

	"timeclock.kiosk/internal/core/model"
)

type recordKey struct {
	employeeID string
	date       string
}

// RecordSet is the loaded daily record table: rows in stored order plus an
// index by (employee, date). Rows that were already duplicated on disk are
// kept; lookups see the first one.
type RecordSet struct {
	records []model.DailyRecord
	index   map[recordKey]int
}

// NewRecordSet indexes recs. The slice is copied.
func NewRecordSet(recs []model.DailyRecord) *RecordSet {
	s := &RecordSet{
		records: make([]model.DailyRecord, 0, len(recs)),
		index:   make(map[recordKey]int, len(recs)),
	}
	for _, r := range recs {
		s.records = append(s.records, r.Clone())
		k := keyOf(r.EmployeeID, r.Date)
		if _, ok := s.index[k]; !ok {
			s.index[k] = len(s.records) - 1
		}
	}
	return s
}

func keyOf(employeeID, date string) recordKey {
	return recordKey{employeeID: model.NormalizeEmployeeID(employeeID), date: date}
}

// Find returns a copy of the record for employeeID on date.
func (s *RecordSet) Find(employeeID, date string) (model.DailyRecord, bool) {
	i, ok := s.index[keyOf(employeeID, date)]
	if !ok {
		return model.DailyRecord{}, false
	}
	return s.records[i].Clone(), true
}

// Insert appends rec. It fails if a record for the same employee and date exists.
func (s *RecordSet) Insert(rec model.DailyRecord) error {
	k := keyOf(rec.EmployeeID, rec.Date)
	if _, ok := s.index[k]; ok {
		return fmt.Errorf("record for %s on %s already exists", k.employeeID, k.date)
	}
	s.records = append(s.records, rec.Clone())
	s.index[k] = len(s.records) - 1
	return nil
}

// Replace overwrites the indexed record for rec's employee and date.
func (s *RecordSet) Replace(rec model.DailyRecord) error {
	k := keyOf(rec.EmployeeID, rec.Date)
	i, ok := s.index[k]
	if !ok {
		return fmt.Errorf("no record for %s on %s", k.employeeID, k.date)
	}
	s.records[i] = rec.Clone()
	return nil
}

// Records returns copies of all rows in stored order.
func (s *RecordSet) Records() []model.DailyRecord {
	out := make([]model.DailyRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

func (s *RecordSet) Len() int { return len(s.records) }
