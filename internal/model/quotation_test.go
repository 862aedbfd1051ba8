package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineItemAmount(t *testing.T) {
	item := LineItem{Description: "TMT bars", Quantity: 2.5, UnitPrice: 48000}
	assert.Equal(t, 120000.0, item.Amount())
}

func TestTotalOf(t *testing.T) {
	items := []LineItem{
		{Description: "Cement bags", Quantity: 100, UnitPrice: 420},
		{Description: "Delivery", Quantity: 1, UnitPrice: 1500},
	}
	assert.Equal(t, 43500.0, TotalOf(items))

	assert.Equal(t, 0.0, TotalOf(nil))
	assert.Equal(t, 0.0, TotalOf([]LineItem{}))
}
