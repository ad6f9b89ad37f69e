package logtidy

import (
	"fmt"
	"regexp"
	"time"
)

// bucketNamePattern matches unpadded month-day-year keys, from 1d1m+yyyy (6
// digits) to mmddyyyy (8 digits).
var bucketNamePattern = regexp.MustCompile(`^[0-9]{6,8}$`)

// BucketKey returns the day-bucket key for a timestamp: month, day and year
// concatenated without padding, so June 3rd 2024 becomes "632024".
//
// Keys are not unique per day: January 11th and November 1st of the same
// year both map to "1112024". Such days share one archive and the collision
// resolver keeps their entries apart.
func BucketKey(t time.Time) string {
	return fmt.Sprintf("%d%d%d", int(t.Month()), t.Day(), t.Year())
}

// IsBucketName reports whether a directory name has the shape of a bucket key.
func IsBucketName(name string) bool {
	return bucketNamePattern.MatchString(name)
}
