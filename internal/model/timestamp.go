package model

import "time"

const timestampLayout = "2006-01-02 15:04:05"

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

// ParseTimestamp 无法解析时返回零值，排序时视为最早
func ParseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(timestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
