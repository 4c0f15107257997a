package models

import (
	"fmt"
	"strings"
	"time"
)

// Gender is the registrant's self-reported gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the values offered to registrants, in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// IsKnown reports whether g is one of the offered values.
func (g Gender) IsKnown() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ParseGender normalizes s and rejects values outside the enumeration.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsKnown() {
		return "", fmt.Errorf("unknown gender %q", s)
	}
	return g, nil
}

// MaritalStatus is stored losslessly; IsMarried derives the boolean view.
type MaritalStatus string

const (
	MaritalStatusSingle   MaritalStatus = "single"
	MaritalStatusMarried  MaritalStatus = "married"
	MaritalStatusDivorced MaritalStatus = "divorced"
	MaritalStatusWidowed  MaritalStatus = "widowed"
)

// MaritalStatuses lists the values offered to registrants, in display order.
var MaritalStatuses = []MaritalStatus{MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed}

func (m MaritalStatus) IsKnown() bool {
	switch m {
	case MaritalStatusSingle, MaritalStatusMarried, MaritalStatusDivorced, MaritalStatusWidowed:
		return true
	}
	return false
}

// ParseMaritalStatus normalizes s and rejects values outside the enumeration.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	m := MaritalStatus(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsKnown() {
		return "", fmt.Errorf("unknown marital status %q", s)
	}
	return m, nil
}

// DateLayout is the calendar-date wire format (HTML date inputs send it).
const DateLayout = "2006-01-02"

// ParseDateOfBirth accepts a calendar date or a full RFC 3339 timestamp and
// returns the date at UTC midnight.
func ParseDateOfBirth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return truncateToDate(t), nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
