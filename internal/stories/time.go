package stories

import "time"

// timeNow is a package-level variable so tests can pin timestamps.
var timeNow = time.Now

// now returns the current time in UTC without a monotonic reading, so that
// values survive a JSON round trip unchanged.
func now() time.Time {
	return timeNow().UTC()
}
