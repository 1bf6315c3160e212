package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// l1 wraps hashicorp/golang-lru/v2, the same library the pack's
// alert-history template cache uses for its in-process tier. The
// library already gives O(1) get/add/remove with move-to-front
// ordering, satisfying spec.md §9's "single ordered map, never hold
// the lock across I/O" redesign note — there is no separate lock here
// because the underlying Cache is internally synchronized.
type l1 struct {
	c        *lru.Cache[string, []byte]
	capacity int
}

func newL1(size int) *l1 {
	if size <= 0 {
		size = 1
	}
	c, _ := lru.New[string, []byte](size)
	return &l1{c: c, capacity: size}
}

func (l *l1) get(key string) ([]byte, bool) {
	return l.c.Get(key)
}

func (l *l1) set(key string, value []byte) {
	l.c.Add(key, value)
}

func (l *l1) remove(key string) {
	l.c.Remove(key)
}

func (l *l1) purge() {
	l.c.Purge()
}

func (l *l1) len() int {
	return l.c.Len()
}

func (l *l1) cap() int {
	return l.capacity
}
