// Package calendar maps calendar dates to timetable day types.
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"transit-journeys/internal/transit"
)

const dateLayout = "2006-01-02"

// Holiday is a date on which the Sunday timetable applies.
type Holiday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

type holidayFile struct {
	Holidays []Holiday `yaml:"holidays"`
}

// Classifier assigns day types. Without holidays only Sundays map to
// SundayOrHoliday.
type Classifier struct {
	holidays map[string]string // date -> name
}

func New(holidays ...Holiday) (*Classifier, error) {
	c := &Classifier{holidays: make(map[string]string, len(holidays))}
	for _, h := range holidays {
		d, err := time.Parse(dateLayout, strings.TrimSpace(h.Date))
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		c.holidays[d.Format(dateLayout)] = h.Name
	}
	return c, nil
}

// LoadHolidays reads a YAML file of the form
//
//	holidays:
//	  - date: 2024-05-30
//	    name: Boże Ciało
func LoadHolidays(path string) ([]Holiday, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f holidayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse holidays %s: %w", path, err)
	}
	return f.Holidays, nil
}

// Classify parses a YYYY-MM-DD date and returns its day type.
func (c *Classifier) Classify(date string) (transit.DayType, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, transit.NewError(transit.KindInvalidDate, "classify", err)
	}
	return c.ClassifyTime(d), nil
}

func (c *Classifier) ClassifyTime(d time.Time) transit.DayType {
	if c != nil {
		if _, ok := c.holidays[d.Format(dateLayout)]; ok {
			return transit.SundayOrHoliday
		}
	}
	switch d.Weekday() {
	case time.Saturday:
		return transit.Saturday
	case time.Sunday:
		return transit.SundayOrHoliday
	default:
		return transit.Weekday
	}
}

// Holiday returns the holiday name for date, if any.
func (c *Classifier) Holiday(date string) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.holidays[strings.TrimSpace(date)]
	return name, ok
}

// Classify uses the plain weekday rule.
func Classify(date string) (transit.DayType, error) {
	var c *Classifier
	return c.Classify(date)
}
