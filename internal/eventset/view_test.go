package eventset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunkgray/eqrm/internal/eventset"
)

func twoEventCatalog(t *testing.T) *eventset.Catalog {
	t.Helper()
	c, err := eventset.Create(eventset.Params{
		CentroidLat: f(-33.351170370959323, -32.763381339789468),
		CentroidLon: f(151.45946928787703, 151.77787395867014),
		Azimuth:     f(162.8566392635347, 201.51805898897854),
		Dip:         f(35.0, 35.0),
		Mw:          f(5.0286463459649076, 4.6661943094693887),
		FaultWidth:  f(15.0, 15.0),
		DepthTop:    f(7.0, 7.0),
	})
	require.NoError(t, err)
	return c
}

func TestCatalog_IterationMatchesColumns(t *testing.T) {
	c := twoEventCatalog(t)
	n := 0
	for i, ev := range c.All() {
		n++
		for _, a := range eventset.Attributes() {
			if ev.Get(a) != c.Column(a)[i] {
				t.Errorf("event %d attribute %s: got %v, column has %v", i, a, ev.Get(a), c.Column(a)[i])
			}
		}
	}
	assert.Equal(t, c.Len(), n)
}

func TestCatalog_SubsetView(t *testing.T) {
	c := twoEventCatalog(t)
	for i := 0; i < c.Len(); i++ {
		v, err := c.Subset([]int{i})
		require.NoError(t, err)
		require.Equal(t, 1, v.Len())
		ev, err := v.Event(0)
		require.NoError(t, err)
		assert.Equal(t, i, ev.Index)
		for _, a := range eventset.Attributes() {
			assert.Equal(t, c.Column(a)[i], v.Column(a)[0], "attribute %s", a)
		}
	}

	v, err := c.Subset([]int{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{c.Column(eventset.Mw)[1], c.Column(eventset.Mw)[0], c.Column(eventset.Mw)[1]}, v.Column(eventset.Mw))
	assert.Equal(t, 3, v.Materialize().Len())

	_, err = c.Subset([]int{2})
	require.ErrorIs(t, err, eventset.ErrOutOfRange)
	_, err = c.Event(-1)
	require.ErrorIs(t, err, eventset.ErrOutOfRange)
}

func TestCatalog_Mask(t *testing.T) {
	c := twoEventCatalog(t)
	v, err := c.Mask([]bool{false, true})
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())
	assert.Equal(t, 1, v.Index(0))
	for j, ev := range v.All() {
		assert.Equal(t, 0, j)
		assert.Equal(t, c.Column(eventset.Azimuth)[1], ev.Azimuth)
	}

	_, err = c.Mask([]bool{true})
	require.ErrorIs(t, err, eventset.ErrShape)
}

func TestFromColumnsAndConcat(t *testing.T) {
	cols := func(v ...float64) map[eventset.Attribute][]float64 {
		m := make(map[eventset.Attribute][]float64)
		for _, a := range eventset.Attributes() {
			m[a] = v
		}
		return m
	}
	a, err := eventset.FromColumns(cols(0, 1, 2))
	require.NoError(t, err)
	b, err := eventset.FromColumns(cols(3, 4, 5, 6))
	require.NoError(t, err)

	merged := eventset.Concat(a, b)
	require.Equal(t, 7, merged.Len())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6}, merged.Column(eventset.Mw))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6}, merged.Column(eventset.TraceEndLon))

	bad := cols(1, 2)
	bad[eventset.Width] = []float64{1}
	_, err = eventset.FromColumns(bad)
	require.ErrorIs(t, err, eventset.ErrShape)

	_, err = eventset.FromColumns(map[eventset.Attribute][]float64{eventset.Attribute(99): {1}})
	require.ErrorIs(t, err, eventset.ErrUnknownAttribute)

	sparse, err := eventset.FromColumns(map[eventset.Attribute][]float64{eventset.Mw: {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, sparse.Column(eventset.Dip))

	empty, err := eventset.FromColumns(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}
