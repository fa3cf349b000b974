package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchBuffer_AddReportsFull(t *testing.T) {
	t.Parallel()

	b := NewBatchBuffer[int](3)
	assert.False(t, b.Add(1))
	assert.False(t, b.Add(2))
	assert.True(t, b.Add(3))
	assert.Equal(t, 3, b.Size())

	assert.Equal(t, []int{1, 2, 3}, b.GetAndClear())
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())
}

func TestBatchBuffer_DefaultCapacity(t *testing.T) {
	t.Parallel()

	b := NewBatchBuffer[string](0)
	for i := 0; i < BATCH_SIZE-1; i++ {
		assert.False(t, b.Add("x"))
	}
	assert.True(t, b.Add("x"))
}

func TestBatchBuffer_ConcurrentAdd(t *testing.T) {
	t.Parallel()

	b := NewBatchBuffer[int](1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Add(n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, b.GetAndClear(), 50)
}

func TestDeserializeFromJSON(t *testing.T) {
	t.Parallel()

	var out struct {
		Text string `json:"text"`
	}
	assert.NoError(t, DeserializeFromJSON([]byte(`{"text":"dry spell"}`), &out))
	assert.Equal(t, "dry spell", out.Text)
	assert.Error(t, DeserializeFromJSON([]byte(`{"text":`), &out))
}
