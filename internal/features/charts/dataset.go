package charts

// AutomationGap returns the two series of "The automation gap" chart:
// AI adoption in testing and maintenance burden reduction, 2018-2025, in percent.
func AutomationGap() (Series, Series) {
	years := []int{2018, 2019, 2020, 2021, 2022, 2023, 2024, 2025}
	aiAdoption := []float64{12, 18, 28, 42, 55, 68, 78, 81}
	maintenanceReduction := []float64{0, 2, 5, 8, 12, 14, 16, 18}

	return newSeries("AI adoption in testing", years, aiAdoption),
		newSeries("Maintenance burden reduction", years, maintenanceReduction)
}

func newSeries(name string, years []int, values []float64) Series {
	points := make([]Point, len(years))
	for i, year := range years {
		points[i] = Point{Year: year, Value: values[i]}
	}
	return Series{Name: name, Points: points}
}
