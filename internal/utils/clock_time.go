package utils

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const clockLayout = "15:04"

// ClockTime is a time of day in 24h "HH:MM" form, used for activity
// start and end times. The date part carries no meaning.
type ClockTime struct {
	time.Time
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, s)

	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time %q: use HH:MM", s)
	}

	return ClockTime{Time: t}, nil
}

func (c ClockTime) String() string {
	return c.Format(clockLayout)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string

	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("time must be a string in HH:MM format")
	}

	parsed, err := ParseClockTime(s)

	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case time.Time:
		*c = ClockTime{Time: time.Date(0, 1, 1, v.Hour(), v.Minute(), 0, 0, time.UTC)}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}
