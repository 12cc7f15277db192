package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(id uuid.UUID, price int64) Line {
	return Line{ProductID: id, Name: "bale", UnitPrice: decimal.NewFromInt(price)}
}

func TestAddSameProductTwiceMergesLines(t *testing.T) {
	id := uuid.New()

	c := Cart{}.Add(line(id, 100)).Add(line(id, 100))

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 2, c.Count())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(200)))
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	c := Cart{}.Add(line(id, 100)).Add(line(other, 50))
	c = c.UpdateQuantity(id, 0)

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, other, c.Lines[0].ProductID)
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(50)))
}

func TestTotalsRecomputeAfterTransitions(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	c := Cart{}.Add(line(a, 100)).Add(line(b, 50))
	c = c.UpdateQuantity(a, 3)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(350)))
	assert.Equal(t, 4, c.Count())

	c = c.Remove(b)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 3, c.Count())

	c = c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
	assert.Zero(t, c.Count())
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	id := uuid.New()
	original := Cart{}.Add(line(id, 100))

	_ = original.Add(line(id, 100))
	_ = original.UpdateQuantity(id, 9)

	assert.Equal(t, 1, original.Lines[0].Quantity)
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	id := uuid.New()
	c := Cart{}.Add(line(id, 100))

	c = c.UpdateQuantity(uuid.New(), 5)

	assert.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}
