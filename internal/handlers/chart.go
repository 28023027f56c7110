package handlers

import "textrecords/internal/tally"

// Bar is one histogram bar. Percent is relative to the largest count.
type Bar struct {
	Label   string
	Count   int
	Percent int
}

// Chart is the histogram view of a tally.
type Chart struct {
	Bars   []Bar
	Hidden int // Entries left out past the bar limit
}

// BuildChart lays out entries as bars in their given order, keeping at most maxBars.
func BuildChart(entries []tally.Entry, maxBars int) Chart {
	var chart Chart

	shown := entries
	if maxBars > 0 && len(entries) > maxBars {
		shown = entries[:maxBars]
		chart.Hidden = len(entries) - maxBars
	}

	max := tally.MaxCount(shown)
	for _, e := range shown {
		percent := 0
		if max > 0 {
			percent = e.Count * 100 / max
		}
		if percent == 0 && e.Count > 0 {
			percent = 1
		}
		chart.Bars = append(chart.Bars, Bar{Label: e.Key, Count: e.Count, Percent: percent})
	}
	return chart
}
