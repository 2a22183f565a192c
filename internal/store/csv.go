package store

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nvandessel/neuropulse/internal/models"
)

// WriteCSV writes the raw labeled table: a header row of
// models.RawColumns, then one row per record.
func WriteCSV(w io.Writer, records []models.SessionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.RawColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(r.RawRow()); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
