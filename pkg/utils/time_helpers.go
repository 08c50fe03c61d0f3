package utils

import "time"

const DateLayout = "2006-01-02"

// TruncateToDate обнуляет время, оставляя только календарную дату.
// Все расчеты графиков (overdue/pending) ведутся по датам, не по моментам.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// MonthBounds возвращает первый и последний день календарного месяца (включительно).
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
