package dataset

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
)

// parseStopCSV parses the STOP extract. The file is machine-generated with
// no quoted fields, so a plain line split is sufficient.
// Columns: delito, frecuencia, codco, id_semana, semana, fecha.
func parseStopCSV(data []byte) []StopRecord {
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return nil
	}

	records := make([]StopRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		values := strings.Split(line, ",")
		if len(values) < 6 {
			continue
		}

		freq, _ := strconv.Atoi(strings.TrimSpace(values[1]))
		codco, _ := strconv.Atoi(strings.TrimSpace(values[2]))
		idSemana, _ := strconv.Atoi(strings.TrimSpace(values[3]))

		records = append(records, StopRecord{
			Delito:     strings.TrimSpace(values[0]),
			Frecuencia: freq,
			Codco:      codco,
			IDSemana:   idSemana,
			Semana:     strings.TrimSpace(values[4]),
			Fecha:      strings.TrimSpace(values[5]),
		})
	}
	return records
}

// parseHistoricalCSV parses the historical extract. Headers vary between
// yearly exports, so columns are located by name rather than position.
func parseHistoricalCSV(data []byte) ([]HistoricalRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatasetLoad, "failed to parse historical CSV", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	idxDelito := findHeader(headers, "GRUPO", "DELITO")
	idxCodcom := findHeaderFold(headers, "codcom")
	idxAnio := findHeader(headers, "Año", "A?o", "Ano")
	idxDesc := findHeader(headers, "Descripcion")
	idxEnero := findHeader(headers, "Enero")

	if idxDelito == -1 || idxEnero == -1 {
		logger.Error("Historical CSV missing required headers", zap.Strings("headers", headers))
		return nil, errors.New(errors.ErrCodeDatasetLoad, "historical CSV missing required headers")
	}

	records := make([]HistoricalRecord, 0, len(rows)-1)
	for _, cols := range rows[1:] {
		if len(cols) < len(headers) {
			continue
		}

		var months [12]float64
		for m := 0; m < 12; m++ {
			if idxEnero+m < len(cols) {
				months[m], _ = strconv.ParseFloat(strings.TrimSpace(cols[idxEnero+m]), 64)
			}
		}

		codcom := 0
		if idxCodcom != -1 {
			codcom, _ = strconv.Atoi(strings.TrimSpace(cols[idxCodcom]))
		}
		anio := 0
		if idxAnio != -1 {
			anio, _ = strconv.Atoi(strings.TrimSpace(cols[idxAnio]))
		}
		comuna := ""
		if idxDesc != -1 {
			comuna = strings.TrimSpace(cols[idxDesc])
		}

		records = append(records, HistoricalRecord{
			Delito: strings.TrimSpace(cols[idxDelito]),
			Anio:   anio,
			Codcom: codcom,
			Comuna: comuna,
			Meses:  months,
		})
	}
	return records, nil
}

// findHeader returns the index of the first header containing any of the
// given substrings.
func findHeader(headers []string, substrings ...string) int {
	for i, h := range headers {
		for _, s := range substrings {
			if strings.Contains(h, s) {
				return i
			}
		}
	}
	return -1
}

// findHeaderFold is findHeader with case-insensitive matching.
func findHeaderFold(headers []string, substring string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), substring) {
			return i
		}
	}
	return -1
}
