package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		name        string
		storedHash  string
		found       bool
		currentHash string
		want        ChangeKind
	}{
		{
			name:        "no ledger entry is new",
			found:       false,
			currentHash: "abc",
			want:        ChangeNew,
		},
		{
			name:        "different hash is updated",
			storedHash:  "abc",
			found:       true,
			currentHash: "def",
			want:        ChangeUpdated,
		},
		{
			name:        "same hash is unchanged",
			storedHash:  "abc",
			found:       true,
			currentHash: "abc",
			want:        ChangeUnchanged,
		},
		{
			name:        "empty stored hash present but different",
			storedHash:  "",
			found:       true,
			currentHash: "abc",
			want:        ChangeUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyChange(tt.storedHash, tt.found, tt.currentHash)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "new", ChangeNew.String())
	assert.Equal(t, "updated", ChangeUpdated.String())
	assert.Equal(t, "unchanged", ChangeUnchanged.String())
}

func TestMakeChunkID(t *testing.T) {
	assert.Equal(t, "deadbeef_0", MakeChunkID("deadbeef", 0))
	assert.Equal(t, "deadbeef_12", MakeChunkID("deadbeef", 12))
}
