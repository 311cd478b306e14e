package dataset

import (
	"context"
	"sort"
	"strconv"
)

// Summary aggregates the loaded datasets into the key/value indicators the
// report page templates display. Missing source files degrade to a partial
// summary instead of failing the render.
func (l *Loader) Summary(ctx context.Context) map[string]interface{} {
	out := make(map[string]interface{})

	if stop, err := l.LoadStopData(ctx); err == nil && len(stop) > 0 {
		total := 0
		byDelito := make(map[string]int)
		communes := make(map[int]bool)
		for _, r := range stop {
			total += r.Frecuencia
			byDelito[r.Delito] += r.Frecuencia
			communes[r.Codco] = true
		}
		out["Casos totales"] = total
		out["Comunas"] = len(communes)
		out["Delito principal"] = topKey(byDelito)
	}

	if hist, err := l.LoadHistoricalData(ctx); err == nil && len(hist) > 0 {
		minYear, maxYear := hist[0].Anio, hist[0].Anio
		for _, r := range hist {
			if r.Anio != 0 && r.Anio < minYear {
				minYear = r.Anio
			}
			if r.Anio > maxYear {
				maxYear = r.Anio
			}
		}
		out["Registros históricos"] = len(hist)
		out["Período"] = formatYearRange(minYear, maxYear)
	}

	if demo, err := l.LoadDemographics(ctx); err == nil && len(demo) > 0 {
		population := 0
		for _, d := range demo {
			population += d.Population
		}
		out["Población"] = population
	}

	return out
}

// topKey returns the key with the highest value, ties broken alphabetically
// for stable output.
func topKey(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestN := -1
	for _, k := range keys {
		if m[k] > bestN {
			best = k
			bestN = m[k]
		}
	}
	return best
}

func formatYearRange(min, max int) string {
	if min == max {
		return strconv.Itoa(min)
	}
	return strconv.Itoa(min) + " - " + strconv.Itoa(max)
}
