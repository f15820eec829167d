// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/triprec/internal/recommend"
)

func (a *app) similarCommand() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:     "similar <trip-id>",
		Short:   "List the trips most similar to a reference trip",
		Example: "  triprec similar V.01 -k 5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") {
				k = engine.Config().Limits.DefaultK
			}

			recs, err := engine.RecommendByReference(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			ref, _ := engine.Trip(args[0])
			return a.printRecommendations(recommendationView{
				Reference:       &ref,
				Recommendations: recs,
			})
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of recommendations (default: recommend.default_k)")
	return cmd
}

func (a *app) preferCommand() *cobra.Command {
	var (
		k                              int
		duration, passengers, capacity float64
		pref                           recommend.Preference
	)

	cmd := &cobra.Command{
		Use:   "prefer",
		Short: "List the trips closest to a stated preference",
		Example: "  triprec prefer --duration 70 --passengers 10 --capacity 15\n" +
			"  triprec prefer --duration 70 --passengers 10 --capacity 15 --day Friday --day-type Weekday --shift Sore",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pref.DurationMinutes = recommend.Float64(duration)
			pref.Passengers = recommend.Float64(passengers)
			pref.Capacity = recommend.Float64(capacity)

			engine, err := a.engine(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("k") {
				k = engine.Config().Limits.DefaultK
			}

			recs, err := engine.RecommendByPreference(cmd.Context(), pref, k)
			if err != nil {
				return err
			}
			return a.printRecommendations(recommendationView{
				Query:             &pref,
				UnknownCategories: engine.UnknownCategories(pref),
				Recommendations:   recs,
			})
		},
	}

	f := cmd.Flags()
	f.IntVarP(&k, "k", "k", 0, "number of recommendations (default: recommend.default_k)")
	f.Float64Var(&duration, "duration", 0, "trip duration in minutes")
	f.Float64Var(&passengers, "passengers", 0, "expected passenger count")
	f.Float64Var(&capacity, "capacity", 0, "seat capacity")
	f.StringVar(&pref.Day, "day", "", "day name, e.g. Friday")
	f.StringVar(&pref.DayType, "day-type", "", "Weekday or Weekend")
	f.StringVar(&pref.Shift, "shift", "", "Pagi, Siang or Sore")
	for _, name := range []string{"duration", "passengers", "capacity"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) modelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Build the model and print its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine(cmd)
			if err != nil {
				return err
			}
			return a.printStatus(engine.Status())
		},
	}
}
