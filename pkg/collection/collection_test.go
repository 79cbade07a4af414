package collection_test

import (
	"testing"

	"github.com/mestawet/gebeya/pkg/collection"
)

func TestMapFilterFirst(t *testing.T) {
	nums := []int{1, 2, 3, 4}

	doubled := collection.Map(nums, func(n int) int { return n * 2 })
	if len(doubled) != 4 || doubled[3] != 8 {
		t.Errorf("unexpected map result %v", doubled)
	}

	even := collection.Filter(nums, func(n int) bool { return n%2 == 0 })
	if len(even) != 2 || even[0] != 2 {
		t.Errorf("unexpected filter result %v", even)
	}

	v, ok := collection.First(nums, func(n int) bool { return n > 2 })
	if !ok || v != 3 {
		t.Errorf("unexpected first result %v %v", v, ok)
	}
	if _, ok := collection.First(nums, func(n int) bool { return n > 10 }); ok {
		t.Error("expected no match")
	}
}

func TestReduceAndSum(t *testing.T) {
	nums := []int{1, 2, 3}

	total := collection.Reduce(nums, 10, func(acc, n int) int { return acc + n })
	if total != 16 {
		t.Errorf("expected 16, got %d", total)
	}

	sum := collection.Sum(nums, func(n int) float64 { return float64(n) })
	if sum != 6 {
		t.Errorf("expected 6, got %v", sum)
	}
}

func TestKeyByLastWins(t *testing.T) {
	type p struct {
		ID   int
		Name string
	}
	m := collection.KeyBy([]p{{1, "a"}, {2, "b"}, {1, "c"}}, func(v p) int { return v.ID })
	if len(m) != 2 || m[1].Name != "c" {
		t.Errorf("unexpected map %v", m)
	}
}

func TestReverse(t *testing.T) {
	got := collection.Reverse([]string{"a", "b", "c"})
	if got[0] != "c" || got[2] != "a" {
		t.Errorf("unexpected reverse %v", got)
	}
}
