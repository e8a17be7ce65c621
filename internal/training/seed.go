package training

import (
	"time"

	"github.com/google/uuid"
)

// seedEntry is one mock record template. Offsets are in days relative to
// seeding time so the dashboard always has current-month activity.
type seedEntry struct {
	name        string
	institution string
	category    string
	typ         Type
	startOffset int
	days        int
	hours       float64
	fee         float64 // 0 means free
	createdAgo  int     // days before now
}

var seedEntries = []seedEntry{
	{"법정의무연수 묶음과정", "중앙교육연수원", "법정의무", TypeRemote, -150, 14, 15, 0, 140},
	{"청렴·부패방지 교육", "서울특별시교육청연수원", "법정의무", TypeRemote, -120, 7, 4, 0, 115},
	{"개인정보보호 교육", "한국교육학술정보원", "법정의무", TypeRemote, -110, 3, 3, 0, 108},
	{"학교안전교육", "서울특별시교육청연수원", "법정의무", TypeInPerson, -95, 1, 6, 0, 94},
	{"장애인 인식개선 교육", "중앙교육연수원", "법정의무", TypeRemote, -80, 5, 2, 0, 78},
	{"교육과정 연수", "한국교원대학교 종합교육연수원", "직무역량", TypeOnSite, -60, 4, 12, 50000, 58},
	{"수업 전문성 향상 연수", "한국교육과정평가원", "직무역량", TypeInPerson, -45, 2, 8, 30000, 44},
	{"디지털 리터러시 교육", "티처빌원격교육연수원", "에듀테크", TypeRemote, -30, 10, 10, 45000, 28},
	{"AI 활용 수업 설계", "AI평생교육원", "에듀테크", TypeRemote, -14, 7, 6, 60000, 12},
	{"아동학대 예방 교육", "중앙교육연수원", "법정의무", TypeRemote, -5, 2, 2, 0, 3},
	{"생명존중 교육", "서울특별시교육청연수원", "법정의무", TypeInPerson, -1, 1, 3, 0, 1},
	{"정보통신 윤리교육", "티처빌원격교육연수원", "법정의무", TypeRemote, 10, 5, 4, 0, 0},
}

// Seed fills the store with mock records for one user, newest first,
// and returns how many were inserted.
func Seed(s *Store, userID string, now time.Time) int {
	now = now.UTC()
	records := make([]Record, 0, len(seedEntries))
	for _, e := range seedEntries {
		start := now.AddDate(0, 0, e.startOffset)
		end := start.AddDate(0, 0, e.days)
		created := now.AddDate(0, 0, -e.createdAgo)
		rec := Record{
			ID:          uuid.NewString(),
			UserID:      userID,
			Name:        e.name,
			Institution: e.institution,
			Category:    e.category,
			Type:        e.typ,
			StartDate:   start.Format(dateLayout),
			EndDate:     end.Format(dateLayout),
			Hours:       e.hours,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if e.fee > 0 {
			fee := e.fee
			rec.IsPaid = true
			rec.Fee = &fee
		}
		rec.Status = statusFor(rec.StartDate, rec.EndDate, now)
		records = append(records, rec)
	}
	sorted := SortNewestFirst(records)

	s.mu.Lock()
	s.records = append(sorted, s.records...)
	s.mu.Unlock()
	return len(records)
}
