package records

import (
	"github.com/montanaflynn/stats"

	"seqtrack/internal/projectid"
	"seqtrack/models"
)

// Summary describes the current listing
type Summary struct {
	Records            int          `json:"records"`
	DisplayRows        int          `json:"displayRows"`
	Reviewed           int          `json:"reviewed"`
	CustomersPerRecord Distribution `json:"customersPerRecord"`
}

// Distribution summarises customers per record
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Summarize computes the listing summary for records
func Summarize(records []*models.Record) (*Summary, error) {
	s := &Summary{Records: len(records)}
	if len(records) == 0 {
		return s, nil
	}

	counts := make([]float64, 0, len(records))
	for _, rec := range records {
		n := len(projectid.SplitTokens(rec.CustomerName))
		s.DisplayRows += n
		counts = append(counts, float64(n))
		if rec.Clicked {
			s.Reviewed++
		}
	}

	var err error
	if s.CustomersPerRecord.Mean, err = stats.Mean(counts); err != nil {
		return nil, err
	}
	if s.CustomersPerRecord.Median, err = stats.Median(counts); err != nil {
		return nil, err
	}
	if s.CustomersPerRecord.Max, err = stats.Max(counts); err != nil {
		return nil, err
	}
	s.CustomersPerRecord.Mean, _ = stats.Round(s.CustomersPerRecord.Mean, 2)

	return s, nil
}
