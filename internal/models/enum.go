package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// enum is satisfied by the closed string types in this package.
type enum interface {
	~string
	Valid() bool
}

func parseEnum[T enum](kind, s string) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		var zero T
		return zero, fmt.Errorf("invalid %s %q", kind, s)
	}
	return v, nil
}

func scanEnum[T enum](kind string, dst *T, value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("%s cannot be NULL", kind)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, kind)
	}
	parsed, err := parseEnum[T](kind, raw)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

func enumValue[T enum](kind string, v T) (driver.Value, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid %s %q", kind, string(v))
	}
	return string(v), nil
}
