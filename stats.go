/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math"
	"strconv"

	"github.com/samber/lo"
)

// Stats summarises the numeric votes of a revealed round.
type Stats struct {
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Count   int     `json:"count"`
}

// computeStats ignores abstentions and anything that is not a base-10
// integer. It returns nil when no numeric vote remains.
func computeStats(votes map[string]Card) *Stats {
	values := lo.FilterMap(lo.Values(votes), func(c Card, _ int) (int, bool) {
		if c.abstains() {
			return 0, false
		}

		n, err := strconv.Atoi(string(c))

		return n, err == nil
	})
	if len(values) == 0 {
		return nil
	}

	mean := float64(lo.Sum(values)) / float64(len(values))

	return &Stats{
		Average: math.Round(mean*10) / 10,
		Min:     lo.Min(values),
		Max:     lo.Max(values),
		Count:   len(values),
	}
}
