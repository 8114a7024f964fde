package publisher

import (
	"net/http"
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastValidationLevel_ParseAndString(t *testing.T) {
	for i, name := range LevelNames() {
		l, err := ParseBroadcastValidationLevel(name)
		require.NoError(t, err)
		assert.Equal(t, BroadcastValidationLevel(i), l)
		assert.Equal(t, name, l.String())
	}
	l, err := ParseBroadcastValidationLevel(" CONSENSUS_AND_EQUIVOCATION ")
	require.NoError(t, err)
	assert.Equal(t, ConsensusAndEquivocation, l)

	_, err = ParseBroadcastValidationLevel("paranoid")
	assert.ErrorIs(t, err, ErrUnknownLevel)
	assert.Equal(t, "level(7)", BroadcastValidationLevel(7).String())
}

func TestBroadcastValidationLevel_Ordering(t *testing.T) {
	assert.False(t, NotRequired.RequiresValidation())
	assert.True(t, Gossip.RequiresValidation())
	assert.Less(t, int(Gossip), int(Consensus))
	assert.Less(t, int(Consensus), int(ConsensusAndEquivocation))
}

func TestSendSignedBlockResult_Classify(t *testing.T) {
	root := phase0.Root{0x0a}
	tests := []struct {
		res    *SendSignedBlockResult
		want   Outcome
		status int
	}{
		{SendSucceeded(root), Success, http.StatusOK},
		{SendNotImported(root, UnknownParent), NotImported, http.StatusAccepted},
		{SendNotImported(root, BlockIsFromFuture), NotImported, http.StatusAccepted},
		{SendNotImported(root, FailedBroadcastValidation), NotImported, http.StatusAccepted},
		{SendNotImported(root, InternalError), Internal, http.StatusInternalServerError},
		{SendRejected(InternalError), Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.res.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Classify())
			assert.Equal(t, tt.status, tt.res.HTTPStatus())
		})
	}
}

func TestImportResult(t *testing.T) {
	assert.True(t, ImportSucceeded(nil).IsSuccessful())
	assert.False(t, ImportFailed(UnknownParent, nil).IsSuccessful())
	assert.Equal(t, "EQUIVOCATION_FAILURE", EquivocationFailure.String())
}
