package transit

import "fmt"

// DayType selects which timetable applies on a calendar date.
type DayType int

const (
	Weekday DayType = iota
	Saturday
	SundayOrHoliday
)

func (d DayType) String() string {
	switch d {
	case Weekday:
		return "weekday"
	case Saturday:
		return "saturday"
	case SundayOrHoliday:
		return "sunday_or_holiday"
	default:
		return fmt.Sprintf("DayType(%d)", int(d))
	}
}

// Label is the route_day value used by the timetable store.
func (d DayType) Label() string {
	switch d {
	case Saturday:
		return "Sobota"
	case SundayOrHoliday:
		return "Niedziela i święta"
	default:
		return "Roboczy"
	}
}

func (d DayType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
