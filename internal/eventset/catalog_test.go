package eventset_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunkgray/eqrm/internal/eventset"
	"github.com/dunkgray/eqrm/internal/rupture"
	"github.com/dunkgray/eqrm/internal/scaling"
)

func f(v ...float64) []float64 { return v }

func shortForm(t *testing.T) *eventset.Catalog {
	t.Helper()
	c, err := eventset.Create(eventset.Params{
		CentroidLat: f(-38.31),
		CentroidLon: f(146.3),
		Azimuth:     f(217),
		Dip:         f(60),
		Mw:          f(6.9),
		Depth:       f(6.5),
		FaultWidth:  f(15),
	})
	require.NoError(t, err)
	return c
}

func TestCreate_LongAndShortFormsAgree(t *testing.T) {
	area := scaling.ModifiedWellsCoppersmith94Area(6.9)
	width := scaling.ModifiedWellsCoppersmith94Width(60, 6.9, area, 15)

	long, err := eventset.Create(eventset.Params{
		CentroidLat: f(-38.31),
		CentroidLon: f(146.3),
		Azimuth:     f(217),
		Dip:         f(60),
		Mw:          f(6.9),
		ML:          f(scaling.JohnstonML(6.9)),
		Depth:       f(6.5),
		FaultWidth:  f(15),
		Width:       f(width),
		Length:      f(area / width),
		FaultType:   scaling.Unspecified,
		ScalingRule: scaling.ModifiedWellsCoppersmith94,
	})
	require.NoError(t, err)
	short := shortForm(t)

	assert.True(t, eventset.ApproxEqual(long, short, 1e-9))
	if diff := cmp.Diff(long.Rows(), short.Rows(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("long vs short form mismatch (-long +short):\n%s", diff)
	}

	// columns are owned, not shared
	assert.NotSame(t, &long.Column(eventset.Depth)[0], &short.Column(eventset.Depth)[0])

	ev, err := short.Event(0)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, ev.Width, 1e-12)
	assert.InDelta(t, 50.6, ev.Length, 0.05)
	assert.InDelta(t, -38.15, ev.TraceStartLat, 0.01)
	assert.InDelta(t, 146.5, ev.TraceStartLon, 0.02)
}

func TestCreateScenario_Single(t *testing.T) {
	c, err := eventset.CreateScenario(eventset.ScenarioParams{
		Params: eventset.Params{
			CentroidLat: f(-32.95),
			CentroidLon: f(151.61),
			Azimuth:     f(340),
			Dip:         f(35),
			Mw:          f(8),
			FaultWidth:  f(15),
			Depth:       f(11.5),
		},
		NumberOfEvents: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	area := scaling.ModifiedWellsCoppersmith94Area(8)
	width := scaling.ModifiedWellsCoppersmith94Width(35, 8, area, 15)
	assert.InDelta(t, width, c.Column(eventset.Width)[0], 1e-12)
	assert.InDelta(t, 15.0, c.Column(eventset.Width)[0], 1e-12)
	assert.InDelta(t, area/width, c.Column(eventset.Length)[0], 1e-9)
	assert.Equal(t, []float64{-32.95}, c.Column(eventset.CentroidLat))
	assert.Equal(t, []float64{11.5}, c.Column(eventset.Depth))
}

func TestCreateScenario_TwoRuptures(t *testing.T) {
	c, err := eventset.CreateScenario(eventset.ScenarioParams{
		Params: eventset.Params{
			CentroidLat: f(-30, -32),
			CentroidLon: f(150, -151),
			Azimuth:     f(340, 330),
			Dip:         f(37, 30),
			Mw:          f(8, 7.5),
			FaultWidth:  f(15, 7),
			Depth:       f(11.5, 11.0),
		},
		NumberOfEvents: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	for i, mw := range []float64{8, 7.5} {
		dip := []float64{37, 30}[i]
		ceiling := []float64{15, 7}[i]
		area := scaling.ModifiedWellsCoppersmith94Area(mw)
		width := scaling.ModifiedWellsCoppersmith94Width(dip, mw, area, ceiling)
		assert.InDelta(t, width, c.Column(eventset.Width)[i], 1e-12)
		assert.InDelta(t, area/width, c.Column(eventset.Length)[i], 1e-9)
	}
}

func TestCreateScenario_Replicated(t *testing.T) {
	c, err := eventset.CreateScenario(eventset.ScenarioParams{
		Params: eventset.Params{
			CentroidLat: f(-32.95),
			CentroidLon: f(151.61),
			Azimuth:     f(340),
			Dip:         f(35),
			Mw:          f(8),
			FaultWidth:  f(15),
			Depth:       f(11.5),
		},
		NumberOfEvents: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())
	rows := c.Rows()
	for i := 1; i < len(rows); i++ {
		a, b := rows[0], rows[i]
		a.Index, b.Index = 0, 0
		assert.Equal(t, a, b)
	}

	_, err = eventset.CreateScenario(eventset.ScenarioParams{NumberOfEvents: -1})
	require.ErrorIs(t, err, eventset.ErrInvalidCount)
}

func TestCreateScenario_Mw602Geometry(t *testing.T) {
	c, err := eventset.CreateScenario(eventset.ScenarioParams{
		Params: eventset.Params{
			CentroidLat: f(0),
			CentroidLon: f(150),
			Azimuth:     f(0),
			Dip:         f(45),
			Mw:          f(6.02),
			FaultWidth:  f(4),
			Depth:       f(7),
		},
	})
	require.NoError(t, err)
	ev, err := c.Event(0)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, ev.Width, 1e-12)
	assert.InDelta(t, 100.0, ev.Area, 1e-9)
	assert.InDelta(t, 25.0, ev.Length, 1e-9)
	assert.InDelta(t, 12.5, ev.CentroidX, 1e-9)
	assert.InDelta(t, ev.Depth, ev.CentroidY, 1e-9)
	// moving back half a length along azimuth 0 heads south
	assert.InDelta(t, -0.1124859, ev.TraceStartLat, 1e-4)
	assert.InDelta(t, 149.937, ev.TraceStartLon, 1e-3)
	assert.InDelta(t, 0.1124859, ev.TraceEndLat, 1e-4)
	assert.InDelta(t, 149.937, ev.TraceEndLon, 1e-3)
}

func TestCreateScenario_NoCeiling(t *testing.T) {
	c, err := eventset.CreateScenario(eventset.ScenarioParams{
		Params: eventset.Params{
			CentroidLat: f(-32.95),
			CentroidLon: f(151.61),
			Azimuth:     f(340),
			Dip:         f(35),
			Mw:          f(8),
			Depth:       f(11.5),
		},
		NumberOfEvents: 1,
	})
	require.NoError(t, err)
	area := scaling.ModifiedWellsCoppersmith94Area(8)
	width := scaling.ModifiedWellsCoppersmith94Width(35, 8, area, math.Inf(1))
	assert.InDelta(t, width, c.Column(eventset.Width)[0], 1e-12)
	assert.Greater(t, width, 15.0)
	assert.InDelta(t, area/width, c.Column(eventset.Length)[0], 1e-9)
}

func TestCreateScenario_ExplicitWidthAndLength(t *testing.T) {
	p := eventset.Params{
		CentroidLat: f(-32.95),
		CentroidLon: f(151.61),
		Azimuth:     f(340),
		Dip:         f(35),
		Mw:          f(8),
		Depth:       f(11.5),
		FaultWidth:  f(5),
		Width:       f(10),
	}
	c, err := eventset.CreateScenario(eventset.ScenarioParams{Params: p, NumberOfEvents: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Column(eventset.Width)[0])

	p.Width = nil
	p.FaultWidth = nil
	p.Length = f(15)
	c, err = eventset.CreateScenario(eventset.ScenarioParams{Params: p, NumberOfEvents: 1})
	require.NoError(t, err)
	assert.Equal(t, 15.0, c.Column(eventset.Length)[0])
}

func TestCreate_DerivesMagnitudes(t *testing.T) {
	p := eventset.Params{
		CentroidLat: f(-30), CentroidLon: f(150), Azimuth: f(0), Dip: f(45), Depth: f(7),
		ML: f(5.0),
	}
	c, err := eventset.Create(p)
	require.NoError(t, err)
	assert.InDelta(t, scaling.JohnstonMw(5.0), c.Column(eventset.Mw)[0], 1e-12)

	p.ML = nil
	_, err = eventset.Create(p)
	require.ErrorIs(t, err, rupture.ErrMissingInput)

	p.Mw = f(5)
	p.Dip = f(90)
	_, err = eventset.Create(p)
	require.ErrorIs(t, err, rupture.ErrDegenerateDip)
}

func TestCatalog_JSONUnboundedWidth(t *testing.T) {
	c, err := eventset.Create(eventset.Params{
		CentroidLat: f(-30), CentroidLon: f(150), Azimuth: f(0), Dip: f(45), Depth: f(7), Mw: f(5),
	})
	require.NoError(t, err)
	b, err := json.Marshal(c)
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["fault_width"])
	assert.InDelta(t, 5.0, rows[0]["mw"], 1e-12)
}

func TestApproxEqual_Tolerance(t *testing.T) {
	a, err := eventset.FromColumns(map[eventset.Attribute][]float64{
		eventset.Mw:   f(5.0, 6.5),
		eventset.Area: f(1e6, 2.5),
	})
	require.NoError(t, err)
	near, err := eventset.FromColumns(map[eventset.Attribute][]float64{
		eventset.Mw:   f(5.0, 6.5+1e-10),
		eventset.Area: f(1e6+1e-3, 2.5),
	})
	require.NoError(t, err)
	far, err := eventset.FromColumns(map[eventset.Attribute][]float64{
		eventset.Mw:   f(5.0, 6.6),
		eventset.Area: f(1e6, 2.5),
	})
	require.NoError(t, err)

	assert.True(t, eventset.ApproxEqual(a, a, 0))
	// 1e-3 on 1e6 is within the relative tolerance, 1e-10 within the absolute one
	assert.True(t, eventset.ApproxEqual(a, near, 1e-8))
	assert.False(t, eventset.ApproxEqual(a, near, 0))
	assert.False(t, eventset.ApproxEqual(a, far, 1e-8))

	short, err := eventset.FromColumns(map[eventset.Attribute][]float64{eventset.Mw: f(5.0)})
	require.NoError(t, err)
	assert.False(t, eventset.ApproxEqual(a, short, 1))
}
