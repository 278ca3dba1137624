package utils

import "time"

// NowRFC3339 is the response timestamp format: UTC, second precision
func NowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
