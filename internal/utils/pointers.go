package utils

import "time"

func Float64Ptr(f float64) *float64 {
	return &f
}

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullableString maps an empty form value to NULL on insert.
func NullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
