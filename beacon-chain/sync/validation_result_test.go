package sync

import (
	"testing"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/stretchr/testify/assert"
)

func TestValidationResult_PubsubResult(t *testing.T) {
	assert.Equal(t, pubsub.ValidationAccept, Accepted().PubsubResult())
	assert.Equal(t, pubsub.ValidationIgnore, Ignored("late").PubsubResult())
	assert.Equal(t, pubsub.ValidationReject, Rejected("bad").PubsubResult())
	assert.Equal(t, pubsub.ValidationIgnore, SavedForFuture().PubsubResult())
}

func TestValidationResult_String(t *testing.T) {
	assert.Equal(t, "accept", Accepted().String())
	assert.Equal(t, "reject: index 3 out of range", Rejected("index %d out of range", 3).String())
	assert.Equal(t, "save_for_future", SavedForFuture().String())
	assert.Equal(t, "action(9)", Action(9).String())
}

func TestValidationResult_IsNotProcessable(t *testing.T) {
	assert.False(t, Accepted().IsNotProcessable())
	assert.False(t, SavedForFuture().IsNotProcessable())
	assert.True(t, Ignored("x").IsNotProcessable())
	assert.True(t, Rejected("x").IsNotProcessable())
}
