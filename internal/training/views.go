package training

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Filter returns the records whose name or institution contains query
// (case-insensitive) and whose type matches typ. TypeAll or an empty type
// passes every record. Order is preserved.
func Filter(records []Record, query string, typ Type) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if q != "" &&
			!strings.Contains(strings.ToLower(rec.Name), q) &&
			!strings.Contains(strings.ToLower(rec.Institution), q) {
			continue
		}
		if typ != "" && typ != TypeAll && rec.Type != typ {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SortNewestFirst returns a copy ordered by creation time descending.
// The sort is stable, so records created at the same instant keep their
// insertion order.
func SortNewestFirst(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Page is one slice of a filtered, sorted record sequence.
type Page struct {
	Items     []Record `json:"items"`
	Total     int      `json:"total"`
	Page      int      `json:"page"`
	Size      int      `json:"size"`
	PageCount int      `json:"page_count"`
}

// Paginate slices records into the 1-based page of the given size. A page
// past the end yields empty items, not an error. PageCount is at least 1
// even for an empty sequence.
func Paginate(records []Record, page, size int) Page {
	if size <= 0 {
		size = 10
	}
	if page <= 0 {
		page = 1
	}
	total := len(records)
	pageCount := (total + size - 1) / size
	if pageCount < 1 {
		pageCount = 1
	}
	lo := (page - 1) * size
	hi := lo + size
	if lo > total {
		lo = total
	}
	if hi > total {
		hi = total
	}
	items := make([]Record, hi-lo)
	copy(items, records[lo:hi])
	return Page{Items: items, Total: total, Page: page, Size: size, PageCount: pageCount}
}

// Stats are the dashboard aggregates over a record set.
type Stats struct {
	TotalCount      int     `json:"total_count"`
	TotalHours      float64 `json:"total_hours"`
	ThisMonthCount  int     `json:"this_month_count"`
	ThisMonthHours  float64 `json:"this_month_hours"`
	TargetHours     float64 `json:"target_hours"`
	AchievementRate int     `json:"achievement_rate"`
}

// ComputeStats aggregates records against a yearly hour target. A zero or
// negative target yields a zero rate rather than an error.
func ComputeStats(records []Record, now time.Time, targetHours float64) Stats {
	st := Stats{TotalCount: len(records), TargetHours: targetHours}
	for _, rec := range records {
		st.TotalHours += rec.Hours
		if rec.CreatedAt.Month() == now.Month() && rec.CreatedAt.Year() == now.Year() {
			st.ThisMonthCount++
			st.ThisMonthHours += rec.Hours
		}
	}
	st.AchievementRate = achievementRate(st.TotalHours, targetHours)
	return st
}

func achievementRate(hours, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(100 * hours / target))
}

// Teacher identifies one record owner for the admin rollup.
type Teacher struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TeacherReport is the per-teacher line of the admin report.
type TeacherReport struct {
	Teacher
	TotalTrainings  int     `json:"total_trainings"`
	TotalHours      float64 `json:"total_hours"`
	AchievementRate int     `json:"achievement_rate"`
}

// AdminReport is the school-wide rollup shown on the admin view.
type AdminReport struct {
	TotalTeachers      int             `json:"total_teachers"`
	TotalTrainings     int             `json:"total_trainings"`
	TotalHours         float64         `json:"total_hours"`
	AvgHoursPerTeacher float64         `json:"avg_hours_per_teacher"`
	Teachers           []TeacherReport `json:"teachers"`
}

// BuildAdminReport groups records by owner and joins them with the known
// teachers. Teachers without records still appear with zero rows.
func BuildAdminReport(records []Record, teachers []Teacher, targetHours float64) AdminReport {
	rep := AdminReport{
		TotalTeachers:  len(teachers),
		TotalTrainings: len(records),
		Teachers:       make([]TeacherReport, 0, len(teachers)),
	}
	byUser := make(map[string][]Record)
	for _, rec := range records {
		byUser[rec.UserID] = append(byUser[rec.UserID], rec)
		rep.TotalHours += rec.Hours
	}
	for _, t := range teachers {
		line := TeacherReport{Teacher: t}
		for _, rec := range byUser[t.ID] {
			line.TotalTrainings++
			line.TotalHours += rec.Hours
		}
		line.AchievementRate = achievementRate(line.TotalHours, targetHours)
		rep.Teachers = append(rep.Teachers, line)
	}
	if rep.TotalTeachers > 0 {
		rep.AvgHoursPerTeacher = rep.TotalHours / float64(rep.TotalTeachers)
	}
	return rep
}

// OwnedBy returns the records belonging to userID, order preserved.
func OwnedBy(records []Record, userID string) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// Upcoming returns records whose start date is after today, soonest first.
func Upcoming(records []Record, now time.Time) []Record {
	today := now.Format(dateLayout)
	var out []Record
	for _, rec := range records {
		if rec.StartDate > today {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate < out[j].StartDate
	})
	return out
}

// WithCertificates returns the records carrying a certificate reference,
// order preserved.
func WithCertificates(records []Record) []Record {
	var out []Record
	for _, rec := range records {
		if rec.Certificate != nil {
			out = append(out, rec)
		}
	}
	return out
}
