package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEV(t *testing.T) {
	t.Run("midpoint of both bounds", func(t *testing.T) {
		assert.Equal(t, 40000, ComputeEV(50000.0, 150000.0, 40.0))
	})

	t.Run("commutative in min and max", func(t *testing.T) {
		assert.Equal(t, ComputeEV(50000.0, 150000.0, 40.0), ComputeEV(150000.0, 50000.0, 40.0))
		assert.Equal(t, ComputeEV(0.0, 100.0, 50.0), ComputeEV(100.0, 0.0, 50.0))
	})

	t.Run("missing bounds yield zero", func(t *testing.T) {
		assert.Equal(t, 0, ComputeEV(nil, nil, 50.0))
		assert.Equal(t, 0, ComputeEV(nil, nil, 100.0))
	})

	t.Run("single bound is the midpoint", func(t *testing.T) {
		assert.Equal(t, 100, ComputeEV(nil, 200.0, 50.0))
		assert.Equal(t, 100, ComputeEV(200.0, nil, 50.0))
	})

	t.Run("zero bound paired with positive bound is treated as unset", func(t *testing.T) {
		assert.Equal(t, 50, ComputeEV(0.0, 100.0, 50.0))
		assert.Equal(t, 50, ComputeEV(100.0, 0.0, 50.0))
		assert.Equal(t, 50, ComputeEV(100.0, 100.0, 50.0))
	})

	t.Run("both bounds zero stay zero", func(t *testing.T) {
		assert.Equal(t, 0, ComputeEV(0.0, 0.0, 50.0))
	})

	t.Run("likelihood clamps to 0..100", func(t *testing.T) {
		assert.Equal(t, ComputeEV(100.0, 100.0, 100.0), ComputeEV(100.0, 100.0, 150.0))
		assert.Equal(t, 0, ComputeEV(100.0, 100.0, -20.0))
		assert.Equal(t, ComputeEV(100.0, 100.0, 0.0), ComputeEV(100.0, 100.0, -20.0))
	})

	t.Run("missing likelihood defaults to zero", func(t *testing.T) {
		assert.Equal(t, 0, ComputeEV(100.0, 100.0, nil))
	})

	t.Run("rounds half up", func(t *testing.T) {
		// midpoint 10.5 * 0.5 = 5.25
		assert.Equal(t, 5, ComputeEV(10.0, 11.0, 50.0))
		// midpoint 10.5 * 1.0 = 10.5
		assert.Equal(t, 11, ComputeEV(10.0, 11.0, 100.0))
	})

	t.Run("coerces numeric strings", func(t *testing.T) {
		assert.Equal(t, 40000, ComputeEV("50000", "150000", "40"))
	})

	t.Run("coerces integer inputs", func(t *testing.T) {
		assert.Equal(t, 40000, ComputeEV(50000, 150000, 40))
		assert.Equal(t, 40000, ComputeEV(int64(50000), int64(150000), int64(40)))
	})

	t.Run("non-numeric values are treated as missing", func(t *testing.T) {
		assert.Equal(t, 50, ComputeEV("n/a", 100.0, 50.0))
		assert.Equal(t, 0, ComputeEV(100.0, 100.0, "unknown"))
		assert.Equal(t, 50, ComputeEV(true, 100.0, 50.0))
	})

	t.Run("non-finite values are treated as missing", func(t *testing.T) {
		assert.Equal(t, 50, ComputeEV(math.Inf(1), 100.0, 50.0))
		assert.Equal(t, 50, ComputeEV(math.NaN(), 100.0, 50.0))
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		first := ComputeEV(50000.0, 150000.0, 40.0)
		second := ComputeEV(50000.0, 150000.0, 40.0)
		assert.Equal(t, first, second)
	})
}
