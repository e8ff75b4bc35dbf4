// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	transactions *csv.Writer
	valuations   *csv.Writer
	tf, vf       *os.File
}

func NewCSV(transactionsPath, valuationsPath string) (*CSVJournal, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	vf, err := os.Create(valuationsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	vw := csv.NewWriter(vf)

	if err := tw.Write([]string{"run_id", "time", "action", "ticker", "quantity", "price", "cash"}); err != nil {
		return nil, err
	}
	if err := vw.Write([]string{"run_id", "time", "cash", "value", "positions"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	vw.Flush()
	if err := vw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, vw, tf, vf}, nil
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	j.transactions.Write([]string{
		t.RunID,
		t.Time.Format(time.RFC3339),
		t.Action,
		t.Ticker,
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Cash),
	})
	j.transactions.Flush()
	return j.transactions.Error()
}

func (j *CSVJournal) RecordValuation(v ValuationSnapshot) error {
	err := j.valuations.Write([]string{
		v.RunID,
		v.Time.Format(time.RFC3339),
		f(v.Cash),
		f(v.Value),
		strconv.Itoa(v.Positions),
	})
	if err != nil {
		return err
	}

	j.valuations.Flush()
	return j.valuations.Error()
}

func (j *CSVJournal) Close() error {
	j.transactions.Flush()
	if err := j.transactions.Error(); err != nil {
		return err
	}
	j.valuations.Flush()
	if err := j.valuations.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.vf.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
