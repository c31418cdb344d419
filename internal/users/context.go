package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxContext is the number of chunk ids kept per user.
const MaxContext = 16

// AppendBounded appends ids to existing and drops the oldest entries so that
// at most capacity remain. existing is not modified.
func AppendBounded(existing, ids []int64, capacity int) []int64 {
	out := make([]int64, 0, len(existing)+len(ids))
	out = append(out, existing...)
	out = append(out, ids...)
	if capacity >= 0 && len(out) > capacity {
		out = out[len(out)-capacity:]
	}
	return out
}

// ChunkIDs decodes either a JSON list of integers or a comma separated string
// such as "42003, 42004".
type ChunkIDs []int64

func (c *ChunkIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ids, err := ParseChunkIDs(s)
		if err != nil {
			return err
		}
		*c = ids
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("context must be a list of integers or a comma separated string: %w", err)
	}
	*c = ids
	return nil
}

func ParseChunkIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chunk id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
