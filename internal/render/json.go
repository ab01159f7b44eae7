package render

import (
	"encoding/json"
	"io"

	"github.com/moolen/sparkmap/internal/models"
)

// JSON writes the canonical machine-readable report. Field order is
// fixed by the struct definitions and map-valued metrics marshal with
// sorted keys, so equal reports always produce equal bytes.
func JSON(w io.Writer, report *models.Report) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
