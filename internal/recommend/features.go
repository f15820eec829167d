// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package recommend

import (
	"slices"
)

// Categorical feature families, in vector order.
const (
	FamilyDay     = "hari"
	FamilyDayType = "jenis_hari"
	FamilyShift   = "shift_waktu"
)

// Continuous feature columns, in vector order.
const (
	FeatureDuration   = "durasi_menit"
	FeaturePassengers = "total_penumpang"
	FeatureCapacity   = "kapasitas_kursi"
	FeatureOccupancy  = "persentase_isi"
)

// ContinuousColumns are the leading columns of every feature vector.
var ContinuousColumns = []string{FeatureDuration, FeaturePassengers, FeatureCapacity, FeatureOccupancy}

var families = []string{FamilyDay, FamilyDayType, FamilyShift}

// Features is the pre-encoding view of a trip or a preference.
type Features struct {
	DurationMinutes float64
	Passengers      float64
	Capacity        float64
	Occupancy       float64
	Day             string
	DayType         string
	Shift           string
}

func (f *Features) category(family string) string {
	switch family {
	case FamilyDay:
		return f.Day
	case FamilyDayType:
		return f.DayType
	default:
		return f.Shift
	}
}

// FeaturesOf returns the encoding input of a trip.
//
//nolint:gocritic // Trip is read-only here
func FeaturesOf(t Trip) Features {
	return Features{
		DurationMinutes: float64(t.DurationMinutes),
		Passengers:      float64(t.Passengers),
		Capacity:        float64(t.Capacity),
		Occupancy:       t.Occupancy,
		Day:             t.Day,
		DayType:         t.DayType,
		Shift:           t.Shift,
	}
}

// Vocabulary is the sorted set of values seen per categorical family.
type Vocabulary struct {
	Day     []string `json:"hari"`
	DayType []string `json:"jenis_hari"`
	Shift   []string `json:"shift_waktu"`
}

func (v *Vocabulary) values(family string) []string {
	switch family {
	case FamilyDay:
		return v.Day
	case FamilyDayType:
		return v.DayType
	default:
		return v.Shift
	}
}

// FeaturePipeline encodes Features into fixed-width vectors. It is fitted
// once on the corpus and never changes afterwards.
type FeaturePipeline struct {
	vocab   Vocabulary
	columns []string
	// column position per family and value
	lookup map[string]map[string]int
}

// FitPipeline records the categorical vocabulary of trips and fixes the
// column layout.
func FitPipeline(trips []Trip) *FeaturePipeline {
	sets := map[string]map[string]struct{}{
		FamilyDay:     {},
		FamilyDayType: {},
		FamilyShift:   {},
	}
	for i := range trips {
		sets[FamilyDay][trips[i].Day] = struct{}{}
		sets[FamilyDayType][trips[i].DayType] = struct{}{}
		sets[FamilyShift][trips[i].Shift] = struct{}{}
	}

	sorted := func(set map[string]struct{}) []string {
		out := make([]string, 0, len(set))
		for v := range set {
			out = append(out, v)
		}
		slices.Sort(out)
		return out
	}

	p := &FeaturePipeline{
		vocab: Vocabulary{
			Day:     sorted(sets[FamilyDay]),
			DayType: sorted(sets[FamilyDayType]),
			Shift:   sorted(sets[FamilyShift]),
		},
		columns: slices.Clone(ContinuousColumns),
		lookup:  make(map[string]map[string]int, len(families)),
	}
	for _, family := range families {
		p.lookup[family] = make(map[string]int)
		for _, value := range p.vocab.values(family) {
			p.lookup[family][value] = len(p.columns)
			p.columns = append(p.columns, family+"_"+value)
		}
	}
	return p
}

// Dim returns the vector width D.
func (p *FeaturePipeline) Dim() int { return len(p.columns) }

// Columns returns the column names in vector order.
func (p *FeaturePipeline) Columns() []string { return slices.Clone(p.columns) }

// Vocabulary returns a copy of the fitted vocabulary.
func (p *FeaturePipeline) Vocabulary() Vocabulary {
	return Vocabulary{
		Day:     slices.Clone(p.vocab.Day),
		DayType: slices.Clone(p.vocab.DayType),
		Shift:   slices.Clone(p.vocab.Shift),
	}
}

// Known reports whether value was seen for family at fit time.
func (p *FeaturePipeline) Known(family, value string) bool {
	_, ok := p.lookup[family][value]
	return ok
}

// Vector encodes f. Categorical values are matched exactly; an empty or
// unseen value leaves that family's block all zero.
func (p *FeaturePipeline) Vector(f Features) []float64 {
	v := make([]float64, len(p.columns))
	v[0] = f.DurationMinutes
	v[1] = f.Passengers
	v[2] = f.Capacity
	v[3] = f.Occupancy
	for _, family := range families {
		if col, ok := p.lookup[family][f.category(family)]; ok {
			v[col] = 1
		}
	}
	return v
}
