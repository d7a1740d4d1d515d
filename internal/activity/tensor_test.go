package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunkgray/eqrm/internal/activity"
	"github.com/dunkgray/eqrm/internal/source"
)

func at(t *testing.T, ea *activity.Tensor, s, b, r, e int) float64 {
	t.Helper()
	v, err := ea.At(s, b, r, e)
	require.NoError(t, err)
	return v
}

func twoSources() source.Model {
	return source.Model{
		{Name: "a", BranchWeights: []float64{.4, .6}, Indexes: []int{0, 1, 3}},
		{Name: "b", BranchWeights: []float64{.1, .4, .5}, Indexes: []int{2, 4}},
	}
}

func TestTensor_SetEventActivitySubset(t *testing.T) {
	ea, err := activity.New(3)
	require.NoError(t, err)
	assert.Equal(t, activity.Dims{Spawn: 1, Branch: 1, Recurrence: 1, Event: 3}, ea.Dims())

	require.NoError(t, ea.SetEventActivity([][]float64{{10, 20}, {30, 40}}, []int{0, 2}))
	assert.Equal(t, 2, ea.Dims().Recurrence)
	assert.Equal(t, 10.0, at(t, ea, 0, 0, 0, 0))
	assert.Equal(t, 0.0, at(t, ea, 0, 0, 0, 1))
	assert.Equal(t, 20.0, at(t, ea, 0, 0, 0, 2))
	assert.Equal(t, 30.0, at(t, ea, 0, 0, 1, 0))
	assert.Equal(t, 0.0, at(t, ea, 0, 0, 1, 1))
	assert.Equal(t, 40.0, at(t, ea, 0, 0, 1, 2))
	assert.Equal(t, 100.0, ea.Sum())
}

func TestTensor_SetEventActivityAll(t *testing.T) {
	ea, err := activity.New(3)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{0, 10, 20}, {30, 40, 50}}, nil))
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50}, ea.Flatten())
}

func TestTensor_SetEventActivityErrors(t *testing.T) {
	ea, err := activity.New(3)
	require.NoError(t, err)
	require.ErrorIs(t, ea.SetEventActivity([][]float64{{1}}, []int{3}), activity.ErrOutOfRange)
	require.ErrorIs(t, ea.SetEventActivity([][]float64{{1, 2}}, []int{0}), activity.ErrShape)
	require.ErrorIs(t, ea.SetEventActivity([][]float64{{1, 2}}, nil), activity.ErrShape)
	require.ErrorIs(t, ea.SetEventActivity([][]float64{{-1}}, []int{0}), activity.ErrNegativeRate)

	require.NoError(t, ea.Spawn([]float64{1}))
	require.ErrorIs(t, ea.SetEventActivity([][]float64{{1}}, []int{0}), activity.ErrSealed)
}

func TestTensor_Spawn(t *testing.T) {
	ea, err := activity.New(3)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{1, 10, 100}, {2, 20, 200}}, nil))
	require.NoError(t, ea.Spawn([]float64{0.2, 0.8}))

	assert.Equal(t, 2, ea.NumSpawn())
	want := map[[4]int]float64{
		{0, 0, 0, 0}: 0.2, {0, 0, 0, 1}: 2, {0, 0, 0, 2}: 20,
		{1, 0, 0, 0}: 0.8, {1, 0, 0, 1}: 8, {1, 0, 0, 2}: 80,
		{0, 0, 1, 0}: 0.4, {0, 0, 1, 1}: 4, {0, 0, 1, 2}: 40,
		{1, 0, 1, 0}: 1.6, {1, 0, 1, 1}: 16, {1, 0, 1, 2}: 160,
	}
	for k, v := range want {
		assert.InDelta(t, v, at(t, ea, k[0], k[1], k[2], k[3]), 1e-12, "%v", k)
	}

	flat := ea.Flatten()
	assert.InDelta(t, 2, flat[1], 1e-12)
	assert.InDelta(t, 8, flat[7], 1e-12)
	assert.InDelta(t, 333, ea.Sum(), 1e-9)
}

func TestTensor_SpawnTwiceOrdersBins(t *testing.T) {
	ea, err := activity.New(1)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{100}}, nil))
	require.NoError(t, ea.Spawn([]float64{0.25, 0.75}))
	require.NoError(t, ea.Spawn([]float64{0.5, 0.5}))

	assert.Equal(t, 4, ea.NumSpawn())
	assert.InDeltaSlice(t, []float64{12.5, 12.5, 37.5, 37.5}, ea.Flatten(), 1e-12)
}

func TestTensor_SpawnErrors(t *testing.T) {
	ea, err := activity.New(2)
	require.NoError(t, err)
	require.ErrorIs(t, ea.Spawn(nil), activity.ErrShape)
	require.ErrorIs(t, ea.Spawn([]float64{1.2, -0.2}), activity.ErrNegativeWeight)
	require.ErrorIs(t, ea.Spawn([]float64{0.5, 0.4}), activity.ErrWeightSum)
	assert.Equal(t, 1, ea.NumSpawn())
}

func TestTensor_LogicSplit(t *testing.T) {
	ea, err := activity.New(6)
	require.NoError(t, err)
	idx := []int{0, 1, 2, 3, 4, 5}
	rates := [][]float64{{0, 10, 20, 30, 40, 50}, {0, 20, 40, 60, 80, 100}}
	require.NoError(t, ea.SetEventActivity(rates, idx))

	require.NoError(t, ea.GroundMotionModelLogicSplit(twoSources(), true))
	assert.Equal(t, 3, ea.Dims().Branch)
	assert.InDelta(t, 450, ea.Sum(), 1e-9)
	assert.InDelta(t, 12, at(t, ea, 0, 0, 0, 3), 1e-12)
	assert.InDelta(t, 4, at(t, ea, 0, 0, 0, 4), 1e-12)
	assert.InDelta(t, 24, at(t, ea, 0, 0, 1, 3), 1e-12)
	assert.InDelta(t, 8, at(t, ea, 0, 0, 1, 4), 1e-12)
	assert.InDelta(t, 18, at(t, ea, 0, 1, 0, 3), 1e-12)
	assert.InDelta(t, 20, at(t, ea, 0, 2, 0, 4), 1e-12)
	assert.Equal(t, 0.0, at(t, ea, 0, 2, 0, 3))

	// event 5 belongs to no source and keeps its rate
	assert.Equal(t, 50.0, at(t, ea, 0, 0, 0, 5))
	assert.Equal(t, 0.0, at(t, ea, 0, 1, 0, 5))

	assert.InDeltaSlice(t, []float64{0, 30, 60, 90, 120, 150}, ea.EventRates(), 1e-9)
	require.ErrorIs(t, ea.GroundMotionModelLogicSplit(twoSources(), true), activity.ErrSealed)
}

func TestTensor_LogicSplitThenSpawn(t *testing.T) {
	ea, err := activity.New(6)
	require.NoError(t, err)
	idx := []int{0, 1, 2, 3, 4, 5}
	rates := [][]float64{{0, 7, 14, 21, 28, 35}, {0, 3, 6, 9, 12, 15}}
	require.NoError(t, ea.SetEventActivity(rates, idx))
	require.NoError(t, ea.GroundMotionModelLogicSplit(twoSources(), true))

	sumRM := func(s, b, e int) float64 { return at(t, ea, s, b, 0, e) + at(t, ea, s, b, 1, e) }
	assert.InDelta(t, 12, sumRM(0, 0, 3), 1e-12)
	assert.InDelta(t, 4, sumRM(0, 0, 4), 1e-12)

	require.NoError(t, ea.Spawn([]float64{0.25, 0.75}))
	assert.InDelta(t, 3, sumRM(0, 0, 3), 1e-12)
	assert.InDelta(t, 9, sumRM(1, 0, 3), 1e-12)
	assert.InDelta(t, 1, sumRM(0, 0, 4), 1e-12)
	assert.InDelta(t, 3, sumRM(1, 0, 4), 1e-12)
	assert.InDelta(t, 6./4., sumRM(0, 1, 1), 1e-12)
	assert.InDelta(t, 6.*0.75, sumRM(1, 1, 1), 1e-12)

	flat := ea.Flatten()
	assert.InDelta(t, 0.7*3, flat[3], 1e-12)
	assert.InDelta(t, 0.3*6./4., flat[1*2*6+1*6+1], 1e-12)

	assert.Equal(t, 2, ea.NumSpawn())
	assert.InDeltaSlice(t, []float64{0, 10, 20, 30, 40, 50}, ea.EventRates(), 1e-9)
}

func TestTensor_LogicSplitErrors(t *testing.T) {
	ea, err := activity.New(3)
	require.NoError(t, err)

	overlap := source.Model{
		{Name: "a", BranchWeights: []float64{1}, Indexes: []int{0, 1}},
		{Name: "b", BranchWeights: []float64{1}, Indexes: []int{1}},
	}
	require.ErrorIs(t, ea.GroundMotionModelLogicSplit(overlap, true), activity.ErrOverlap)

	outside := source.Model{{Name: "a", BranchWeights: []float64{1}, Indexes: []int{3}}}
	require.ErrorIs(t, ea.GroundMotionModelLogicSplit(outside, true), activity.ErrOutOfRange)

	negative := source.Model{{Name: "a", BranchWeights: []float64{1, -1}, Indexes: []int{0}}}
	require.ErrorIs(t, ea.GroundMotionModelLogicSplit(negative, true), activity.ErrNegativeWeight)

	zero := source.Model{{Name: "a", BranchWeights: []float64{0, 0}, Indexes: []int{0}}}
	require.ErrorIs(t, ea.GroundMotionModelLogicSplit(zero, true), activity.ErrWeightSum)
}

func TestTensor_UnweightedPolicies(t *testing.T) {
	model := source.Model{{Name: "a", BranchWeights: []float64{1, 3}, Indexes: []int{0}}}

	ea, err := activity.New(2)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{8, 5}}, nil))
	require.NoError(t, ea.GroundMotionModelLogicSplit(model, false))
	assert.Equal(t, []float64{8, 5, 8, 0}, ea.Flatten())

	ea, err = activity.New(2, activity.WithUnweightedPolicy(activity.EqualShare))
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{8, 5}}, nil))
	require.NoError(t, ea.GroundMotionModelLogicSplit(model, false))
	assert.Equal(t, []float64{4, 5, 4, 0}, ea.Flatten())
	assert.Equal(t, 13.0, ea.Sum())
}

func TestTensor_PlannedCapacityDoesNotReallocate(t *testing.T) {
	model := twoSources()
	model[0].Activities = [][]float64{{1, 1, 1}, {1, 1, 1}}
	spawn := []float64{0.5, 0.5}
	plan := activity.Plan(6, model, spawn)
	assert.Equal(t, activity.Dims{Spawn: 2, Branch: 3, Recurrence: 2, Event: 6}, plan)

	ea, err := activity.NewWithCapacity(plan)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{1, 2, 3, 4, 5, 6}, {1, 1, 1, 1, 1, 1}}, nil))
	require.NoError(t, ea.GroundMotionModelLogicSplit(model, true))
	require.NoError(t, ea.Spawn(spawn))
	assert.Equal(t, plan, ea.Capacity())
	assert.Equal(t, plan, ea.Dims())
	assert.InDelta(t, 27, ea.Sum(), 1e-9)
}

func TestTensor_GrowthBeyondCapacity(t *testing.T) {
	ea, err := activity.New(4)
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{1, 2, 3, 4}}, nil))
	require.NoError(t, ea.GroundMotionModelLogicSplit(source.Model{
		{Name: "a", BranchWeights: []float64{1, 1}, Indexes: []int{1, 2}},
	}, true))
	assert.Equal(t, activity.Dims{Spawn: 1, Branch: 2, Recurrence: 1, Event: 4}, ea.Capacity())
	assert.Equal(t, []float64{1, 1, 1.5, 4, 0, 1, 1.5, 0}, ea.Flatten())
}

func TestTensor_CellCeiling(t *testing.T) {
	_, err := activity.New(11, activity.WithMaxCells(10))
	require.ErrorIs(t, err, activity.ErrTooLarge)

	ea, err := activity.New(5, activity.WithMaxCells(10))
	require.NoError(t, err)
	require.NoError(t, ea.SetEventActivity([][]float64{{1, 1, 1, 1, 1}}, nil))
	require.NoError(t, ea.Spawn([]float64{0.5, 0.5}))
	err = ea.Spawn([]float64{0.5, 0.5})
	require.ErrorIs(t, err, activity.ErrTooLarge)
	assert.Equal(t, 2, ea.NumSpawn())
	assert.InDelta(t, 5, ea.Sum(), 1e-12)

	_, err = activity.NewWithCapacity(activity.Dims{Spawn: 1 << 40, Branch: 1 << 40, Recurrence: 1, Event: 1})
	require.ErrorIs(t, err, activity.ErrTooLarge)
}

func TestTensor_AtOutOfRange(t *testing.T) {
	ea, err := activity.New(2)
	require.NoError(t, err)
	_, err = ea.At(0, 1, 0, 0)
	require.ErrorIs(t, err, activity.ErrOutOfRange)
	_, err = ea.At(0, 0, 0, -1)
	require.ErrorIs(t, err, activity.ErrOutOfRange)
}
