package model

import (
	"fmt"
	"strings"
)

// Day день недели; нулевое значение соответствует понедельнику
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days канонический порядок вывода (понедельник…воскресенье)
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Day) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDay разбирает название дня. Пустая строка означает понедельник.
func ParseDay(value string) (Day, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Monday, nil
	}
	for i, name := range dayNames {
		lower := strings.ToLower(name)
		if v == lower || v == lower[:3] {
			return Day(i), nil
		}
	}
	return Monday, fmt.Errorf("%w: unknown day %q", ErrInvalidSample, value)
}

// MarshalText выводит день названием
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText принимает название или сокращение дня
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
