package plan

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the plan's own day key: 1=Monday through 7=Sunday. It never
// carries any platform's numbering; translation lives at the notification
// boundary.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[Weekday]string{
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
	Sunday:    "sunday",
}

// Weekdays lists all seven day keys in plan order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether the weekday is one of the seven fixed symbols.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if name, ok := weekdayNames[w]; ok {
		return name
	}
	return fmt.Sprintf("weekday(%d)", int(w))
}

// ParseWeekday accepts full names and three-letter prefixes ("mon", "Monday").
func ParseWeekday(value string) (Weekday, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return 0, fmt.Errorf("weekday is empty")
	}
	for day, name := range weekdayNames {
		if name == needle || (len(needle) >= 3 && strings.HasPrefix(name, needle)) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", value)
}

// FromTime converts a time.Weekday (0=Sunday) into the plan numbering.
func FromTime(day time.Weekday) Weekday {
	if day == time.Sunday {
		return Sunday
	}
	return Weekday(int(day))
}

// Today resolves the logical weekday for now: before boundaryHour local time
// the previous calendar day still applies.
func Today(now time.Time, boundaryHour int) Weekday {
	if boundaryHour > 0 && now.Hour() < boundaryHour {
		now = now.AddDate(0, 0, -1)
	}
	return FromTime(now.Weekday())
}
