package gradecalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateCategoryEmpty(t *testing.T) {
	agg := AggregateCategory(nil, 2)
	assert.False(t, agg.Assessed)
	assert.Equal(t, 0.0, agg.Fraction)
}

func TestAggregateCategoryDropLowest(t *testing.T) {
	items := []Item{{Score: 60, MaxScore: 100}, {Score: 80, MaxScore: 100}, {Score: 100, MaxScore: 100}}

	agg := AggregateCategory(items, 1)
	assert.True(t, agg.Assessed)
	assert.InDelta(t, 0.9, agg.Fraction, 1e-9)
	assert.Equal(t, 2, agg.Used)
	assert.Equal(t, 1, agg.Dropped)
}

func TestAggregateCategoryDropsByFractionNotPoints(t *testing.T) {
	// 8/10 is better than 50/100 even though it earns fewer points.
	items := []Item{{Score: 8, MaxScore: 10}, {Score: 50, MaxScore: 100}}

	agg := AggregateCategory(items, 1)
	assert.InDelta(t, 0.8, agg.Fraction, 1e-9)
}

func TestAggregateCategoryKeepsHighestWhenDropExceedsCount(t *testing.T) {
	items := []Item{{Score: 40, MaxScore: 100}, {Score: 90, MaxScore: 100}}

	agg := AggregateCategory(items, 5)
	assert.True(t, agg.Assessed)
	assert.Equal(t, 1, agg.Used)
	assert.Equal(t, 1, agg.Dropped)
	assert.InDelta(t, 0.9, agg.Fraction, 1e-9)
}

func TestAggregateCategoryStableTies(t *testing.T) {
	items := []Item{
		{Score: 50, MaxScore: 100, Weight: 1},
		{Score: 50, MaxScore: 100, Weight: 3},
		{Score: 100, MaxScore: 100, Weight: 1},
	}

	for i := 0; i < 10; i++ {
		agg := AggregateCategory(items, 1)
		// The first of the tied items is dropped: (50*3 + 100*1) / (100*3 + 100*1).
		assert.InDelta(t, 0.625, agg.Fraction, 1e-9)
	}
}

func TestAggregateCategoryNegativeDropIsIgnored(t *testing.T) {
	items := []Item{{Score: 20, MaxScore: 100}, {Score: 80, MaxScore: 100}}

	agg := AggregateCategory(items, -3)
	assert.Equal(t, 0, agg.Dropped)
	assert.InDelta(t, 0.5, agg.Fraction, 1e-9)
}

func TestAggregateCategoryDoesNotReorderInput(t *testing.T) {
	items := []Item{{Score: 100, MaxScore: 100}, {Score: 10, MaxScore: 100}}
	AggregateCategory(items, 1)
	assert.Equal(t, 100.0, items[0].Score)
}

func TestItemFraction(t *testing.T) {
	assert.Equal(t, 0.0, Item{Score: 10, MaxScore: 0}.Fraction())
	assert.Equal(t, 0.0, Item{Score: 10, MaxScore: -5}.Fraction())
	assert.Equal(t, 0.5, Item{Score: 5, MaxScore: 10}.Fraction())
}
