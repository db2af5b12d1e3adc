package domain

import (
	"errors"

	"bugtrack/bizerror"
)

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleTester    = "tester"
	RoleUser      = "user"
)

// EnumValues is the single source of legal values for enum-like fields.
var EnumValues = map[string][]string{
	"status":   {BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusClosed},
	"severity": {BugSeverityLow, BugSeverityMedium, BugSeverityHigh, BugSeverityCritical},
	"role":     {RoleAdmin, RoleDeveloper, RoleTester, RoleUser},
}

// CheckEnum rejects values outside the legal set of the given field.
func CheckEnum(field, value string) error {
	legal, found := EnumValues[field]
	if !found {
		return errors.New("unknown enum field " + field)
	}
	for _, v := range legal {
		if v == value {
			return nil
		}
	}
	return &bizerror.ErrBadParam{Cause: errors.New("Invalid " + field + " value")}
}
