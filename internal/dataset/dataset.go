// Package dataset loads the crime statistics files that feed the report pages.
// Large extracts are partitioned into fixed-size chunks; parts are fetched
// concurrently and joined in order, with a fallback to the monolithic file
// when any part is missing.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
)

// Part counts for the partitioned extracts. The chunker splits at roughly
// 45MB, so these track the source file sizes.
const (
	stopDataParts   = 3
	historicalParts = 5
)

// StopRecord is one row of the weekly STOP extract.
type StopRecord struct {
	Delito     string `json:"delito"`
	Frecuencia int    `json:"frecuencia"`
	Codco      int    `json:"codco"`
	Fecha      string `json:"fecha"`
	Semana     string `json:"semana"`
	IDSemana   int    `json:"id_semana"`
}

// HistoricalRecord is one crime group, commune and year with monthly counts.
type HistoricalRecord struct {
	Delito string      `json:"delito"`
	Anio   int         `json:"anio"`
	Codcom int         `json:"codcom"`
	Comuna string      `json:"comuna"`
	Meses  [12]float64 `json:"meses"`
}

// CommuneDemographics describes the population breakdown of a commune.
type CommuneDemographics struct {
	Name       string `json:"name"`
	Population int    `json:"population"`
	PopYouth   int    `json:"pop_youth"`
	PopAdult   int    `json:"pop_adult"`
	PopSenior  int    `json:"pop_senior"`
	PopMale    int    `json:"pop_male"`
}

// DemographicsMap maps commune codes to their demographics.
type DemographicsMap map[string]CommuneDemographics

// Loader reads dataset files from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a dataset loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadStopData loads the weekly STOP extract.
func (l *Loader) LoadStopData(ctx context.Context) ([]StopRecord, error) {
	data, err := l.loadPartitioned(ctx, "stop_data.csv", stopDataParts)
	if err != nil {
		return nil, err
	}
	return parseStopCSV(data), nil
}

// LoadHistoricalData loads the multi-year historical extract.
func (l *Loader) LoadHistoricalData(ctx context.Context) ([]HistoricalRecord, error) {
	data, err := l.loadPartitioned(ctx, "combined_historical.csv", historicalParts)
	if err != nil {
		return nil, err
	}
	return parseHistoricalCSV(data)
}

// LoadDemographics loads the commune demographics document.
func (l *Loader) LoadDemographics(ctx context.Context) (DemographicsMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.dir, "comuna_demographics.json"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatasetLoad, "failed to read demographics", err)
	}
	var out DemographicsMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDatasetLoad, "failed to parse demographics", err)
	}
	return out, nil
}

// loadPartitioned fetches all parts of a partitioned file concurrently and
// joins them in order. When any part is missing or unreadable, it falls back
// to the monolithic file.
func (l *Loader) loadPartitioned(ctx context.Context, baseName string, parts int) ([]byte, error) {
	name, ext, _ := strings.Cut(baseName, ".")

	chunks := make([][]byte, parts)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < parts; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(l.dir, fmt.Sprintf("%s_part%d.%s", name, i+1, ext))
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("missing part %d: %w", i+1, err)
			}
			chunks[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn("Partitioned load failed, falling back to single file",
			zap.String("file", baseName), zap.Error(err))
		data, ferr := os.ReadFile(filepath.Join(l.dir, baseName))
		if ferr != nil {
			return nil, errors.Wrap(errors.ErrCodeDatasetNotFound,
				"failed to load dataset "+baseName, ferr)
		}
		return data, nil
	}

	return bytes.Join(chunks, nil), nil
}
