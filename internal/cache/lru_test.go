package cache

import "testing"

func TestLRUPutGet(t *testing.T) {
	c := New[string](2)
	c.Put("a", "1")
	c.Put("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most-recently-used
	c.Put("c", 3) // should evict b

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestLRUPutOverwritesExistingKey(t *testing.T) {
	c := New[int](100)
	for i := 0; i < 100; i++ {
		c.Put("k", i)
	}
	v, _ := c.Get("k")
	if v != 99 {
		t.Errorf("got %d, want 99 (Put overwrites, doesn't duplicate)", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
