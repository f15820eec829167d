// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/tomtom215/triprec/internal/recommend"
)

var (
	headerColor = color.New(color.Bold, color.FgCyan).SprintFunc()
	idColor     = color.New(color.Bold).SprintFunc()
	warnColor   = color.New(color.FgYellow).SprintFunc()
)

type recommendationView struct {
	Reference         *recommend.Trip            `json:"reference,omitempty"`
	Query             *recommend.Preference      `json:"query,omitempty"`
	UnknownCategories []string                   `json:"unknown_categories,omitempty"`
	Recommendations   []recommend.Recommendation `json:"recommendations"`
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// similarityColor shades a score: green from 0.9, yellow from 0.7.
func similarityColor(s float64) string {
	text := fmt.Sprintf("%.3f", s)
	switch {
	case s >= 0.9:
		return color.GreenString(text)
	case s >= 0.7:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

func (a *app) printRecommendations(v recommendationView) error {
	if a.opts.JSON {
		return a.printJSON(v)
	}

	if v.Reference != nil {
		d := recommend.DisplayOf(*v.Reference)
		fmt.Fprintf(a.stdout, "%s %s  %s %s-%s  %d min  %d/%d seats  %s %s %s\n\n",
			headerColor("Reference"), idColor(v.Reference.ID),
			d.Date, d.Departure, d.Arrival, d.DurationMinutes,
			d.PassengerCount, d.SeatCapacity, d.Day, d.DayType, d.Shift)
	}
	for _, c := range v.UnknownCategories {
		fmt.Fprintf(a.stdout, "%s %s was not seen in the data and is ignored\n", warnColor("warning:"), c)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor(strings.Join([]string{
		"#", "TRIP", "SIMILARITY", "DATE", "DEPART", "ARRIVE", "MIN", "PAX", "SEATS", "DAY", "SHIFT",
	}, "\t")))
	for i, r := range v.Recommendations {
		d := r.Display
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			i+1, idColor(r.TripID), similarityColor(r.Similarity),
			d.Date, d.Departure, d.Arrival, d.DurationMinutes,
			d.PassengerCount, d.SeatCapacity, d.Day, d.Shift)
	}
	return tw.Flush()
}

func (a *app) printStatus(s recommend.ModelStatus) error {
	if a.opts.JSON {
		return a.printJSON(s)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Source", s.Source},
		{"Trips", fmt.Sprintf("%d (%d dropped)", s.Trips, s.Dropped)},
		{"Dimensions", fmt.Sprintf("%d", s.Dimensions)},
		{"Metric", s.Metric},
		{"Build time", fmt.Sprintf("%dms", s.BuildDurationMS)},
		{"Days", strings.Join(s.Vocabulary.Day, ", ")},
		{"Day types", strings.Join(s.Vocabulary.DayType, ", ")},
		{"Shifts", strings.Join(s.Vocabulary.Shift, ", ")},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", headerColor(r[0]), r[1])
	}

	if ev := s.Evaluation; ev != nil {
		fmt.Fprintf(tw, "%s\t%.3f (k=%d, %d train / %d test)\n",
			headerColor("Classifier accuracy"), ev.Accuracy, ev.K, ev.TrainSize, ev.TestSize)
		for _, c := range ev.Classes {
			fmt.Fprintf(tw, "  %s\tprecision %.3f  recall %.3f  f1 %.3f  support %d\n",
				c.Label, c.Precision, c.Recall, c.F1, c.Support)
		}
	}
	return tw.Flush()
}
