package delivery

import (
	"fmt"
	"strconv"
	"time"
)

// DayFormat renders a calendar day the way the storefront writes it into
// order attributes, e.g. "Thu Jan 07 2021".
const DayFormat = "Mon Jan 02 2006"

// NoDeliveryDate is assigned to orders whose payload carries no delivery
// attribute. It is a valid partition key and groups such orders together.
const NoDeliveryDate = "No delivery date"

// InvalidDate is returned for unparseable timestamp input. It is not a
// usable partition key.
const InvalidDate = "Invalid Date"

// Resolver converts timestamps into canonical delivery-day strings in one
// fixed regional timezone, independent of the host timezone.
type Resolver struct {
	loc *time.Location
}

func NewResolver(tz string) (*Resolver, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading delivery timezone %q: %w", tz, err)
	}
	return &Resolver{loc: loc}, nil
}

// Day returns the canonical delivery-day string for the instant t. Two
// instants on the same local calendar day always produce the same string.
func (r *Resolver) Day(t time.Time) string {
	return t.In(r.loc).Format(DayFormat)
}

// DayFromUnix resolves an epoch-seconds string. Non-numeric input yields
// InvalidDate; callers must not use that value as a grouping key.
func (r *Resolver) DayFromUnix(raw string) string {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return InvalidDate
	}
	return r.Day(time.Unix(secs, 0))
}

// ParseDay parses a canonical day string back into midnight local time.
func (r *Resolver) ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, day, r.loc)
}
