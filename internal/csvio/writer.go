package csvio

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rhyrak/term-scheduler/pkg/model"
)

// PrintSchedule writes the term schedule grouped by week and day.
func PrintSchedule(w io.Writer, rows []*model.ScheduleCSVRow) {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b *model.ScheduleCSVRow) int {
		if week := a.Week - b.Week; week != 0 {
			return week
		}
		if day := model.DayOrder(a.Day) - model.DayOrder(b.Day); day != 0 {
			return day
		}
		if day := strings.Compare(a.Day, b.Day); day != 0 {
			return day
		}
		if start := strings.Compare(a.Start, b.Start); start != 0 {
			return start
		}
		return strings.Compare(a.SectionID, b.SectionID)
	})

	lastHeader := ""
	for _, r := range sorted {
		header := fmt.Sprintf("Week %d %s", r.Week, r.Day)
		if header != lastHeader {
			lastHeader = header
			fmt.Fprintf(w, "\n%s %s %s\n", strings.Repeat("-", (32-len(header))/2), header, strings.Repeat("-", int(0.5+(32-float32(len(header)))/2.0)))
		}
		fmt.Fprintf(w, "%-5s-%-5s  %-8s %-14s %s\n", r.Start, r.End, r.RoomNumber, r.SectionID, r.Faculty)
	}
	fmt.Fprintf(w, "Printed rows: %d\n", len(sorted))
}
