package services

import (
	"context"
	"time"

	"github.com/glucoguide/insulin-tracker/internal/domain"
)

// recentSiteCount is how many site-tagged injections the rotation trail keeps.
const recentSiteCount = 5

// trendDays is the length of the trend window, today included.
const trendDays = 7

// DayTrend aggregates one calendar day of the trend window.
type DayTrend struct {
	Date       time.Time `json:"date"`
	Weekday    string    `json:"weekday"`
	Units      float64   `json:"units"`
	AvgGlucose float64   `json:"avgGlucose"`
	AvgCarbs   float64   `json:"avgCarbs"`
}

// SiteVisit is one entry of the injection-site rotation trail.
type SiteVisit struct {
	InjectionID string               `json:"injectionId"`
	Site        domain.InjectionSite `json:"site"`
	Timestamp   time.Time            `json:"timestamp"`
}

// SinceLast breaks down the time elapsed since the newest injection.
type SinceLast struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Analytics summarizes a patient's recent log for the dashboard cards.
type Analytics struct {
	TotalUnitsToday float64           `json:"totalUnitsToday"`
	AvgDailyUnits   float64           `json:"avgDailyUnits"`
	AvgGlucose      float64           `json:"avgGlucose"`
	Days            []DayTrend        `json:"days"`
	RecentSites     []SiteVisit       `json:"recentSites"`
	LastInjection   *domain.Injection `json:"lastInjection,omitempty"`
	SinceLast       *SinceLast        `json:"sinceLast,omitempty"`
}

// AnalyticsService derives dashboard figures from the injection log.
// Purely computational; it reads nothing on its own.
type AnalyticsService struct {
	now func() time.Time
}

func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{now: time.Now}
}

// Summarize computes the dashboard for a log sorted descending by timestamp.
func (s *AnalyticsService) Summarize(ctx context.Context, injections []domain.Injection) *Analytics {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowStart := midnight.AddDate(0, 0, -(trendDays - 1))

	out := &Analytics{Days: make([]DayTrend, trendDays)}
	for i := 0; i < trendDays; i++ {
		date := windowStart.AddDate(0, 0, i)
		out.Days[i] = DayTrend{Date: date, Weekday: date.Weekday().String()[:3]}
	}

	type acc struct {
		glucoseSum, carbsSum     float64
		glucoseCount, carbsCount int
	}
	accs := make([]acc, trendDays)

	var totalUnits, glucoseSum float64
	var glucoseCount int
	for _, inj := range injections {
		if !inj.Timestamp.Before(midnight) {
			out.TotalUnitsToday += inj.Units
		}
		if inj.Timestamp.Before(windowStart) {
			continue
		}
		day := int(inj.Timestamp.Sub(windowStart).Hours() / 24)
		if day < 0 || day >= trendDays {
			continue
		}
		out.Days[day].Units += inj.Units
		if inj.GlucoseLevel != nil {
			accs[day].glucoseSum += *inj.GlucoseLevel
			accs[day].glucoseCount++
			glucoseSum += *inj.GlucoseLevel
			glucoseCount++
		}
		if inj.Carbs != nil {
			accs[day].carbsSum += *inj.Carbs
			accs[day].carbsCount++
		}
		totalUnits += inj.Units
	}

	for i := range out.Days {
		if accs[i].glucoseCount > 0 {
			out.Days[i].AvgGlucose = accs[i].glucoseSum / float64(accs[i].glucoseCount)
		}
		if accs[i].carbsCount > 0 {
			out.Days[i].AvgCarbs = accs[i].carbsSum / float64(accs[i].carbsCount)
		}
	}
	out.AvgDailyUnits = totalUnits / trendDays
	if glucoseCount > 0 {
		out.AvgGlucose = glucoseSum / float64(glucoseCount)
	}

	// Rotation trail: the five most recent site-tagged injections,
	// oldest first so the trail reads in injection order.
	for _, inj := range injections {
		if inj.Site == nil {
			continue
		}
		out.RecentSites = append(out.RecentSites, SiteVisit{
			InjectionID: inj.ID,
			Site:        *inj.Site,
			Timestamp:   inj.Timestamp,
		})
		if len(out.RecentSites) == recentSiteCount {
			break
		}
	}
	for i, j := 0, len(out.RecentSites)-1; i < j; i, j = i+1, j-1 {
		out.RecentSites[i], out.RecentSites[j] = out.RecentSites[j], out.RecentSites[i]
	}

	if len(injections) > 0 {
		last := injections[0]
		out.LastInjection = &last
		if elapsed := now.Sub(last.Timestamp); elapsed >= 0 {
			out.SinceLast = &SinceLast{
				Hours:   int(elapsed / time.Hour),
				Minutes: int((elapsed % time.Hour) / time.Minute),
			}
		}
	}
	return out
}
