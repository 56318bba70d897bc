package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Census workbook column headers (INEGI RESAGEBURB layout).
const (
	colEntidad = "ENTIDAD"
	colMun     = "MUN"
	colLoc     = "LOC"
	colAgeb    = "AGEB"
	colPobtot  = "POBTOT"
)

// BuildCVEGEO assembles the composite zone key from its census parts,
// zero-padded to the INEGI widths (2+3+4+4 digits).
func BuildCVEGEO(entidad, mun, loc, ageb string) string {
	return zfill(entidad, 2) + zfill(mun, 3) + zfill(loc, 4) + zfill(ageb, 4)
}

func zfill(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// ReadPopulation reads the census workbook and returns total population per
// CVEGEO. Rows with a missing or non-numeric population (INEGI masks small
// counts with "*") are dropped and counted.
func ReadPopulation(path string, sheetIndex int) (map[string]int, int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "ingest: open census workbook")
	}
	if sheetIndex >= len(f.Sheets) {
		return nil, 0, eris.Errorf("ingest: sheet index %d out of range (workbook has %d sheets)", sheetIndex, len(f.Sheets))
	}
	sheet := f.Sheets[sheetIndex]
	if len(sheet.Rows) == 0 {
		return nil, 0, eris.New("ingest: census workbook is empty")
	}

	cols, err := headerIndexes(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, 0, err
	}

	population := make(map[string]int)
	var dropped int

	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if len(cells) <= cols.max() {
			dropped++
			continue
		}

		pop, err := strconv.Atoi(strings.TrimSpace(cells[cols.pobtot]))
		if err != nil || pop < 0 {
			dropped++
			continue
		}

		cvegeo := BuildCVEGEO(cells[cols.entidad], cells[cols.mun], cells[cols.loc], cells[cols.ageb])
		population[cvegeo] = pop
	}

	if dropped > 0 {
		zap.L().Debug("ingest: dropped census rows",
			zap.String("path", path),
			zap.Int("dropped", dropped),
		)
	}

	return population, dropped, nil
}

type censusColumns struct {
	entidad, mun, loc, ageb, pobtot int
}

// max returns the highest column index; rows shorter than this cannot be
// read safely in any column order.
func (c censusColumns) max() int {
	return max(c.entidad, c.mun, c.loc, c.ageb, c.pobtot)
}

// headerIndexes locates the required census columns in the header row.
func headerIndexes(header []string) (censusColumns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}

	cols := censusColumns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{colEntidad, &cols.entidad},
		{colMun, &cols.mun},
		{colLoc, &cols.loc},
		{colAgeb, &cols.ageb},
		{colPobtot, &cols.pobtot},
	} {
		i, ok := idx[want.name]
		if !ok {
			return censusColumns{}, eris.Errorf("ingest: census column %q not found", want.name)
		}
		*want.dst = i
	}
	return cols, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
