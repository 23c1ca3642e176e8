package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemHashRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	st := ItemStatus{File: "/docs/a.docx", State: "failed", Message: "conversion failed", Total: 3, Updated: at}

	raw := itemToHash(st)
	assert.NotContains(t, raw, "destination")

	// go-redis hands everything back as strings
	strs := make(map[string]string, len(raw))
	for k, v := range raw {
		switch x := v.(type) {
		case string:
			strs[k] = x
		case int:
			strs[k] = strconv.Itoa(x)
		}
	}
	assert.Equal(t, st, itemFromHash(strs))
}

func TestKeys(t *testing.T) {
	s := &RedisStatus{keyNS: "batch"}
	assert.Equal(t, "batch:j1:item:0", s.itemKey("j1", 0))
	assert.Equal(t, "batch:j1:status", s.jobKey("j1"))
}

func TestNewRedisStatusBadURL(t *testing.T) {
	_, err := NewRedisStatus(context.Background(), "not-a-url", time.Minute)
	require.Error(t, err)
}
