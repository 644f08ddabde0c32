package letters

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BumpMinor advances a "major.minor" store version by one minor step.
// An empty version counts as "1.0". A patch component, if present, resets to 0.
func BumpMinor(version string) (string, error) {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "1.0"
	}
	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		return "", fmt.Errorf("version %q: too many components", version)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", fmt.Errorf("version %q: component %q is not a number", version, p)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		return fmt.Sprintf("%d.1", nums[0]), nil
	case 2:
		return fmt.Sprintf("%d.%d", nums[0], nums[1]+1), nil
	default:
		return fmt.Sprintf("%d.%d.0", nums[0], nums[1]+1), nil
	}
}

// Timestamp formats t the way the store records update times.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}

// touchMetadata refreshes the store-level fields after a mutating pass.
func touchMetadata(s *Store, now time.Time) error {
	next, err := BumpMinor(s.Metadata.Version)
	if err != nil {
		return schemaError("", fmt.Sprintf("metadata.version %q must be a dotted number such as \"1.0\"; fix it in the store and run again", s.Metadata.Version), err)
	}
	s.Metadata.Version = next
	s.Metadata.LastUpdated = Timestamp(now)
	s.Metadata.LettersCount = len(s.Letters)
	return nil
}
