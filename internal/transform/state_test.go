package transform

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"rent-preview/pkg/geometry"
)

func TestChannelsEach(t *testing.T) {
	var got []Channel
	TranslateOnly.Each(func(c Channel) { got = append(got, c) })
	assert.Equal(t, []Channel{ChannelTranslateX, ChannelTranslateY}, got)
	assert.True(t, AllChannels.Has(ChannelRotation))
	assert.False(t, ScaleAndPan.Has(ChannelRotation))
}

func TestScaleClampedOnWrite(t *testing.T) {
	s := NewState(DefaultLimits)

	s.SetLive(ScaleOnly, Values{Scale: 9})
	assert.Equal(t, 5.0, s.Live().Scale)

	s.SetSaved(ScaleOnly, Values{Scale: 0.2})
	assert.Equal(t, 1.0, s.Saved().Scale)

	s.Update(func(live, saved *Values) {
		live.Scale = 0
		saved.Scale = 100
	})
	live, saved := s.Snapshot()
	assert.Equal(t, 1.0, live.Scale)
	assert.Equal(t, 5.0, saved.Scale)
}

func TestCommitAndReset(t *testing.T) {
	s := NewState(DefaultLimits)
	s.SetLive(AllChannels, Values{Scale: 2, Rotation: 1, TranslateX: 3, TranslateY: 4})
	s.Commit(RotationOnly)
	assert.Equal(t, Values{Scale: 1, Rotation: 1}, s.Saved())

	s.Reset()
	s.Reset()
	live, saved := s.Snapshot()
	assert.Equal(t, Identity(), live)
	assert.Equal(t, Identity(), saved)
	assert.True(t, live.IsIdentity(0.01))
}

func TestNormalizedRotation(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"Zero", 0, 0},
		{"Quarter", math.Pi / 2, math.Pi / 2},
		{"FullTurn", 2 * math.Pi, 0},
		{"Negative", -math.Pi / 2, 3 * math.Pi / 2},
		{"TwoTurns", 4*math.Pi + 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Values{Rotation: tt.in}.NormalizedRotation(), 1e-9)
		})
	}
}

func TestIsIdentityTreatsFullTurnAsZero(t *testing.T) {
	assert.True(t, Values{Scale: 1, Rotation: 2 * math.Pi}.IsIdentity(0.01))
	assert.True(t, Values{Scale: 1, Rotation: -0.005}.IsIdentity(0.01))
	assert.False(t, Values{Scale: 1, Rotation: 0.5}.IsIdentity(0.01))
	assert.False(t, Values{Scale: 1.1}.IsIdentity(0.01))
	assert.False(t, Values{Scale: 1, TranslateX: 1}.IsIdentity(0.01))
}

func TestMatrixOrder(t *testing.T) {
	center := geometry.NewPoint2D(100, 50)

	// The center maps to center+translate regardless of scale and rotation.
	v := Values{Scale: 2, Rotation: math.Pi / 2, TranslateX: 10, TranslateY: -5}
	got := v.Matrix(center).Apply(center)
	assert.InDelta(t, 110, got.X, 1e-9)
	assert.InDelta(t, 45, got.Y, 1e-9)

	// A point right of center is rotated a quarter turn, then scaled by 2.
	got = v.Matrix(center).Apply(geometry.NewPoint2D(101, 50))
	assert.InDelta(t, 110, got.X, 1e-9)
	assert.InDelta(t, 47, got.Y, 1e-9)

	assert.Equal(t, geometry.Identity(), Identity().Matrix(center))
}

func TestConcurrentAccess(t *testing.T) {
	s := NewState(DefaultLimits)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.Update(func(live, saved *Values) {
					live.Scale += 0.1
					live.Rotation += 0.01
				})
				_ = s.Live()
				s.Commit(AllChannels)
			}
		}(i)
	}
	wg.Wait()
	live := s.Live()
	assert.Equal(t, 5.0, live.Scale)
	assert.InDelta(t, 16, live.Rotation, 1e-6)
}
