package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryAddAndMessages(t *testing.T) {
	h := NewHistory(10)

	h.Add(RoleUser, "where is the indexer", nil)
	h.Add(RoleAssistant, "internal/index", []string{"internal/index/indexer.go"})

	msgs := h.Messages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, []string{"internal/index/indexer.go"}, msgs[1].Sources)
	assert.False(t, msgs[0].Timestamp.IsZero())
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Add(RoleUser, fmt.Sprintf("message %d", i), nil)
	}

	msgs := h.Messages()
	assert.Len(t, msgs, 3)
	assert.Equal(t, "message 2", msgs[0].Content)
	assert.Equal(t, "message 4", msgs[2].Content)
}

func TestHistoryDefaultBound(t *testing.T) {
	h := NewHistory(0)

	for i := 0; i < DefaultMaxHistory+10; i++ {
		h.Add(RoleUser, fmt.Sprintf("message %d", i), nil)
	}
	assert.Equal(t, DefaultMaxHistory, h.Len())
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Add(RoleUser, "original", nil)

	msgs := h.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", h.Messages()[0].Content)
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Add(RoleUser, "hello", nil)
	h.Clear()
	assert.Zero(t, h.Len())
}
