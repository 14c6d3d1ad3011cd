package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSortKind(t *testing.T) {
	tests := []struct {
		in   string
		want SortKind
		ok   bool
	}{
		{"", SortNone, true},
		{"NO", SortNone, true},
		{"ALPHA", SortTitle, true},
		{"PRICE", SortPrice, true},
		{"price", "", false},
		{"RANDOM", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSortKind(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseCartAction(t *testing.T) {
	tests := []struct {
		in   string
		want CartAction
		ok   bool
	}{
		{"PLUS", ActionPlus, true},
		{"MINUS", ActionMinus, true},
		{"DELETE", ActionDelete, true},
		{"", "", false},
		{"plus", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCartAction(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNewOrderView_Totals(t *testing.T) {
	order := &Order{ID: 1, Status: StatusNew, CreatedAt: time.Now().UTC()}
	lines := []OrderLine{
		{ProductID: 1, Title: "Widget", Price: 250, Quantity: 2},
		{ProductID: 2, Title: "Gadget", Price: 100, Quantity: 3},
	}

	view := NewOrderView(order, lines)

	assert.Equal(t, int64(500), view.Lines[0].Subtotal)
	assert.Equal(t, int64(300), view.Lines[1].Subtotal)
	assert.Equal(t, int64(800), view.Total)
}

func TestNewOrderView_Empty(t *testing.T) {
	order := &Order{ID: 2, Status: StatusNew}

	view := NewOrderView(order, nil)

	assert.NotNil(t, view.Lines)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)
}

func TestProductView_Overlay(t *testing.T) {
	p := Product{ID: 5, Title: "Widget", Price: 250}

	assert.Equal(t, 0, p.View(0).Quantity)
	assert.Equal(t, 3, p.View(3).Quantity)
	assert.Equal(t, int64(250), p.View(3).Price)
}
