package report

import (
	"sort"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// alcaldias maps the MUN digits of a CVEGEO to the Mexico City borough
// name.
var alcaldias = map[string]string{
	"002": "Azcapotzalco",
	"003": "Coyoacán",
	"004": "Cuajimalpa",
	"005": "Gustavo A. Madero",
	"006": "Miguel Hidalgo",
	"007": "Milpa Alta",
	"008": "Tláhuac",
	"009": "Tlalpan",
	"010": "Venustiano Carranza",
	"011": "Xochimilco",
	"012": "Benito Juárez",
	"013": "Iztacalco",
	"014": "Iztapalapa",
	"015": "Cuauhtémoc",
	"016": "La Magdalena Contreras",
	"017": "Álvaro Obregón",
}

// Borough returns the borough name encoded in a CVEGEO (digits 2-4), or
// empty if unknown.
func Borough(cvegeo string) string {
	if len(cvegeo) < 5 {
		return ""
	}
	return alcaldias[cvegeo[2:5]]
}

// BoroughSummary aggregates high-potential zones for one borough.
type BoroughSummary struct {
	Borough    string
	ZoneCount  int
	Population int
}

// Summary holds the headline numbers of one analysis.
type Summary struct {
	Zones                   int
	HighPotentialZones      int
	PopulationHighPotential int
	PopulationServed        int
	Boroughs                []BoroughSummary // high-potential only, by population desc
}

// Summarize computes the headline totals and the per-borough breakdown of
// high-potential zones.
func Summarize(metrics []model.ZoneMetrics) Summary {
	s := Summary{Zones: len(metrics)}
	byBorough := make(map[string]*BoroughSummary)

	for _, m := range metrics {
		if !m.HighPotential {
			s.PopulationServed += m.Population
			continue
		}
		s.HighPotentialZones++
		s.PopulationHighPotential += m.Population

		name := Borough(m.ZoneID)
		if name == "" {
			continue
		}
		b, ok := byBorough[name]
		if !ok {
			b = &BoroughSummary{Borough: name}
			byBorough[name] = b
		}
		b.ZoneCount++
		b.Population += m.Population
	}

	for _, b := range byBorough {
		s.Boroughs = append(s.Boroughs, *b)
	}
	sort.Slice(s.Boroughs, func(i, j int) bool {
		if s.Boroughs[i].Population != s.Boroughs[j].Population {
			return s.Boroughs[i].Population > s.Boroughs[j].Population
		}
		return s.Boroughs[i].Borough < s.Boroughs[j].Borough
	})

	return s
}
