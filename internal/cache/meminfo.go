package cache

import (
	"strconv"
	"strings"
)

// parseUsedMemory extracts the used_memory field from a Redis INFO
// memory section. Returns 0 if the field is absent or malformed —
// memory reporting is advisory, never worth failing a stats() call
// over.
func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if !strings.HasPrefix(line, "used_memory:") {
			continue
		}
		v := strings.TrimPrefix(line, "used_memory:")
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
