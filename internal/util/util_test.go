package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalTimestamp(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	loc := time.FixedZone("EEST", 3*60*60)

	assert.Equal(t, "2026-05-01 12:30:00", LocalTimestamp(ts, loc))
	assert.Equal(t, "2026-05-01 09:30:00", LocalTimestamp(ts, nil))
}

func TestNormalizeBool(t *testing.T) {
	for _, s := range []string{"1", "true", " TRUE ", "yes", "taip", "on"} {
		assert.True(t, NormalizeBool(s), s)
	}
	for _, s := range []string{"", "0", "false", "ne", "off"} {
		assert.False(t, NormalizeBool(s), s)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1", "22", "333"}, SplitList(" 1, ,22,333 ,"))
	assert.Empty(t, SplitList(""))
}
