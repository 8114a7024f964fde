package sync

import (
	"context"
	"testing"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/eth2353/admission/async"
	"github.com/eth2353/admission/beacon-chain/state"
	"github.com/eth2353/admission/config/params"
	"github.com/eth2353/admission/crypto/bls"
	"github.com/eth2353/admission/testing/util"
	"github.com/eth2353/admission/time/slots"
	"github.com/stretchr/testify/require"
)

const testValidatorCount = 256

var testGenesis = time.Unix(1_600_000_000, 0)

// inlineVerifier checks signature sets on the calling goroutine.
type inlineVerifier struct{}

func (inlineVerifier) Verify(pubkey phase0.BLSPubKey, msg [32]byte, sig phase0.BLSSignature) bool {
	return bls.VerifySignature(pubkey, msg, sig)
}

func (inlineVerifier) VerifyBatch(_ context.Context, set *bls.SignatureSet) *async.Future[bool] {
	ok, err := set.Verify()
	if err != nil {
		return async.Failed[bool](err)
	}
	return async.Completed(ok)
}

type testEnv struct {
	state     *state.BeaconState
	signer    *util.Signer
	resolver  *util.StateResolver
	clock     *slots.Clock
	validator *AggregateValidator
	// spec has both a selected and an unselected committee member.
	spec       util.AggregateSpec
	aggregator phase0.ValidatorIndex
	other      phase0.ValidatorIndex
}

// setupEnv runs on the minimal preset with one target aggregator per
// committee, so committees of 8 select roughly one member in 8.
func setupEnv(t *testing.T, scheduler async.Scheduler) *testEnv {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.TargetAggregatorsPerCommittee = 1
	params.OverrideBeaconConfig(cfg)

	st, keys := util.DeterministicGenesisState(t, testValidatorCount, 0)
	signer := &util.Signer{State: st, Keys: keys}
	env := &testEnv{state: st, signer: signer, resolver: util.NewStateResolver(st)}

	found := false
	for slot := phase0.Slot(1); slot <= 2*cfg.SlotsPerEpoch && !found; slot++ {
		for idx := phase0.CommitteeIndex(0); idx < 4 && !found; idx++ {
			spec := util.AggregateSpec{Slot: slot, CommitteeIndex: idx, Participants: []int{0, 1, 2}}
			agg, ok, err := signer.FindAggregator(spec)
			require.NoError(t, err)
			if !ok {
				continue
			}
			other, ok, err := signer.FindNonAggregator(spec)
			require.NoError(t, err)
			if !ok {
				continue
			}
			env.spec, env.aggregator, env.other, found = spec, agg, other, true
		}
	}
	require.True(t, found, "no committee with both a selected and an unselected member")

	env.finish(t, scheduler)
	return env
}

// setupAllSelectedEnv targets more aggregators than a committee has members,
// so every member's selection proof selects it. env.other is unset.
func setupAllSelectedEnv(t *testing.T, scheduler async.Scheduler) *testEnv {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.TargetAggregatorsPerCommittee = 64
	params.OverrideBeaconConfig(cfg)

	st, keys := util.DeterministicGenesisState(t, testValidatorCount, 0)
	signer := &util.Signer{State: st, Keys: keys}
	env := &testEnv{state: st, signer: signer, resolver: util.NewStateResolver(st)}
	env.spec = util.AggregateSpec{Slot: 1, Participants: []int{0, 1, 2}}
	committee, err := signer.Committees.BeaconCommittee(st, env.spec.Slot, env.spec.CommitteeIndex)
	require.NoError(t, err)
	require.True(t, len(committee) > 1)
	env.aggregator = committee[0]
	env.finish(t, scheduler)
	return env
}

func (e *testEnv) finish(t *testing.T, scheduler async.Scheduler) {
	now := slots.StartTime(testGenesis, e.spec.Slot).Add(time.Second)
	e.clock = slots.NewClock(testGenesis, slots.WithNower(func() time.Time { return now }))

	committees := util.RoundRobinCommittees{}
	v, err := NewAggregateValidator(&Config{
		Checker:    NewAttestationChecker(e.clock, e.resolver, committees, scheduler),
		Committees: committees,
		Verifier:   inlineVerifier{},
		Scheduler:  scheduler,
	})
	require.NoError(t, err)
	e.validator = v
}

// signedAggregate builds a valid aggregate of spec from the selected aggregator.
func (e *testEnv) signedAggregate(t *testing.T, spec util.AggregateSpec) *phase0.SignedAggregateAndProof {
	att, err := e.signer.Attestation(spec)
	require.NoError(t, err)
	signed, err := e.signer.SignAggregateAndProof(e.aggregator, att)
	require.NoError(t, err)
	return signed
}

func validateNow(t *testing.T, v *AggregateValidator, signed *phase0.SignedAggregateAndProof) ValidationResult {
	return util.Await(t, v.Validate(context.Background(), signed), 10*time.Second)
}
