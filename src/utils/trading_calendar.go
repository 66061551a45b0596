package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"stock-screener/src/logger"
)

// TradingCalendar answers "is this a trading day" for the ingest scheduler,
// backed by scmhub/calendar with a Mon-Fri fallback when the MIC is unknown.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar maps a ticker suffix to a MIC code (ISO 10383) and loads its
// calendar. NSE (".NS") is the default universe here; bare tickers resolve
// to NSE as well.
func GetCalendar(symbol string, log *logger.Logger) *TradingCalendar {
	mic := "xnse"
	if strings.HasSuffix(symbol, ".BO") {
		mic = "xbom"
	} else if strings.HasSuffix(symbol, ".L") {
		mic = "xlon"
	} else if strings.HasSuffix(symbol, ".T") {
		mic = "xtks"
	} else if strings.HasSuffix(symbol, ".HK") {
		mic = "xhkg"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		// Fallback market calendar
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		log.Warning("Failed to load calendar for MIC '%s'. Using simple Mon-Fri fallback.", mic)
		loc, _ := time.LoadLocation("Asia/Kolkata")
		if loc == nil {
			loc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}
