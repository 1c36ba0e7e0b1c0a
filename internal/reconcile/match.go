package reconcile

import (
	"hash/fnv"
	"strings"
)

// PrefixRunes is how much of an incoming description must appear in a
// stored one for the two to be the same record.
const PrefixRunes = 20

var palette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16",
	"#22c55e", "#14b8a6", "#06b6d4", "#3b82f6",
	"#6366f1", "#8b5cf6", "#d946ef", "#ec4899",
}

// IsDuplicate: same subject (any case), same date, and the stored
// description contains the first PrefixRunes runes of the incoming one,
// ignoring case.
func IsDuplicate(storedSubject, storedDate, storedDesc, subject, date, desc string) bool {
	if storedDate != date || !strings.EqualFold(storedSubject, subject) {
		return false
	}
	return strings.Contains(strings.ToLower(storedDesc), strings.ToLower(prefix(desc, PrefixRunes)))
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Color picks a stable palette color for a subject name.
func Color(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return palette[h.Sum32()%uint32(len(palette))]
}
