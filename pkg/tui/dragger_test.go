package tui

import (
	"reflect"
	"testing"
)

func TestKeyDraggerMove(t *testing.T) {
	var got [][]int64
	d := NewKeyDragger()
	d.Attach([]int64{10, 20, 30}, func(ids []int64) { got = append(got, ids) })

	if _, ok := d.Move(0, 1); ok {
		t.Fatal("moved while disabled")
	}

	d.SetEnabled(true)
	tests := []struct {
		from, delta int
		wantTo      int
		wantOK      bool
	}{
		{0, 1, 1, true},
		{1, 1, 2, true},
		{2, 1, 2, false},
		{0, -1, 0, false},
		{5, 1, 5, false},
	}
	for _, tt := range tests {
		to, ok := d.Move(tt.from, tt.delta)
		if to != tt.wantTo || ok != tt.wantOK {
			t.Errorf("Move(%d, %d) = %d, %v; want %d, %v", tt.from, tt.delta, to, ok, tt.wantTo, tt.wantOK)
		}
	}

	want := [][]int64{{20, 10, 30}, {20, 30, 10}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commits = %v, want %v", got, want)
	}

	d.Detach()
	if _, ok := d.Move(0, 1); ok {
		t.Error("moved after Detach")
	}
}
