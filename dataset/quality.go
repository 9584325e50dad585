package dataset

// QualityScore computes the integer 0..100 completeness score:
// three 100-point subscores (stops, routes, flights) averaged.
func QualityScore(stops []Stop, routes []Route, flights []Flight) int {
	stopsScore := subscore(len(stops), func() int {
		withCoords := 0
		for _, s := range stops {
			if s.HasCoords {
				withCoords++
			}
		}
		return withCoords
	})

	routesScore := subscore(len(routes), func() int {
		withMeta := 0
		for _, r := range routes {
			if r.Number != "" || r.BaseFare > 0 {
				withMeta++
			}
		}
		return withMeta
	})

	flightsScore := subscore(len(flights), func() int {
		withPrice := 0
		for _, f := range flights {
			if f.Price > 0 {
				withPrice++
			}
		}
		return withPrice
	})

	total := stopsScore + routesScore + flightsScore
	return total / 3
}

// subscore implements the "50 if non-empty plus up to 50 scaled by the
// fraction with <attribute>" rule shared by all three record kinds.
func subscore(total int, countWithAttr func() int) int {
	if total == 0 {
		return 0
	}
	withAttr := countWithAttr()
	fraction := float64(withAttr) / float64(total)
	return 50 + int(50*fraction)
}
