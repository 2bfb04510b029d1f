package contract

import (
	"testing"
)

// FuzzParseCommitTimes fuzzes ParseCommitTimes with arbitrary git log output.
func FuzzParseCommitTimes(f *testing.F) {
	seeds := []string{
		"2024-06-05T10:15:00-05:00\n2024-06-04T09:00:00Z\n",
		"'2024-06-04T09:00:00Z'",
		"\n\n",
		"yesterday",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, out string) {
		times, err := ParseCommitTimes([]byte(out))
		if err != nil && len(times) > 0 {
			t.Fatalf("returned %d times alongside error %v", len(times), err)
		}
	})
}
