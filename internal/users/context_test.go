package users

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(from, to int64) []int64 {
	var out []int64
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestAppendBounded(t *testing.T) {
	tests := []struct {
		name     string
		existing []int64
		ids      []int64
		want     []int64
	}{
		{name: "empty", existing: nil, ids: nil, want: []int64{}},
		{name: "under capacity", existing: []int64{1, 2}, ids: []int64{3}, want: []int64{1, 2, 3}},
		{name: "exactly full", existing: seq(1, 15), ids: []int64{16}, want: seq(1, 16)},
		{name: "evicts oldest", existing: seq(1, 16), ids: []int64{17, 18}, want: seq(3, 18)},
		{name: "new batch larger than capacity", existing: []int64{1}, ids: seq(100, 120), want: seq(105, 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendBounded(tt.existing, tt.ids, MaxContext)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), MaxContext)
		})
	}
}

func TestAppendBoundedDoesNotMutateInput(t *testing.T) {
	existing := seq(1, 16)
	_ = AppendBounded(existing, []int64{99}, MaxContext)
	assert.Equal(t, seq(1, 16), existing)
}

func TestChunkIDsUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ChunkIDs
		wantErr bool
	}{
		{name: "list", input: `[42003, 42004]`, want: ChunkIDs{42003, 42004}},
		{name: "string", input: `"42003, 42004,43000"`, want: ChunkIDs{42003, 42004, 43000}},
		{name: "string with blanks", input: `" 1,,2 , "`, want: ChunkIDs{1, 2}},
		{name: "null", input: `null`, want: nil},
		{name: "bad string", input: `"1,abc"`, wantErr: true},
		{name: "object", input: `{"a":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ChunkIDs
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
