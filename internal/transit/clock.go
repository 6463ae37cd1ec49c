package transit

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day in seconds since midnight of the service day.
// Values may exceed 24h for runs that continue past midnight.
type Clock int

// MaxHour is the last hour a service day can reach.
const MaxHour = 47

// ParseClock parses HH:MM or HH:MM:SS. Hours may run past midnight up to
// MaxHour. A fractional part on the seconds, as a time column may hold,
// is truncated.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM[:SS]", s)
	}
	if len(parts) == 3 {
		sec, frac, ok := strings.Cut(parts[2], ".")
		if ok && (frac == "" || strings.Trim(frac, "0123456789") != "") {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		parts[2] = sec
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		vals[i] = n
	}
	if vals[0] > MaxHour {
		return 0, fmt.Errorf("invalid time %q: hour above %d", s, MaxHour)
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return Clock(vals[0]*3600 + vals[1]*60 + vals[2]), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)%3600/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
