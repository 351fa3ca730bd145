package value

import (
	"fmt"
	"sort"
)

// Array is a mutable sequence shared by every Value holding it. Assigning an
// array Value to another variable shares the handle; Clone detaches.
type Array struct {
	items []Value
}

// NewArrayOf builds a fresh handle over a copy of items.
func NewArrayOf(items ...Value) *Array {
	return &Array{items: append([]Value(nil), items...)}
}

func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Items returns the backing slice. Callers must not retain it across
// mutations.
func (a *Array) Items() []Value { return a.items }

func (a *Array) Get(i int64) (Value, error) {
	if i < 0 || i >= int64(len(a.items)) {
		return Void, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, i, len(a.items))
	}
	return a.items[i], nil
}

func (a *Array) Set(i int64, v Value) error {
	if i < 0 || i >= int64(len(a.items)) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, i, len(a.items))
	}
	a.items[i] = v
	return nil
}

func (a *Array) Push(v Value) {
	a.items = append(a.items, v)
}

// Pop removes and returns the last element.
func (a *Array) Pop() (Value, error) {
	if len(a.items) == 0 {
		return Void, ErrEmptyArray
	}
	last := a.items[len(a.items)-1]
	a.items[len(a.items)-1] = Void
	a.items = a.items[:len(a.items)-1]
	return last, nil
}

// Remove deletes and returns the element at i.
func (a *Array) Remove(i int64) (Value, error) {
	v, err := a.Get(i)
	if err != nil {
		return Void, err
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	return v, nil
}

// Index returns the position of the first element equal to v, or -1.
func (a *Array) Index(v Value) int {
	for i, el := range a.items {
		if Equal(el, v) {
			return i
		}
	}
	return -1
}

func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
}

// Sort orders the elements in place. Numbers sort numerically, strings
// lexically and bools false before true; any other mix is an error and
// leaves the array untouched.
func (a *Array) Sort() error {
	for i := 1; i < len(a.items); i++ {
		if _, err := order(a.items[0], a.items[i]); err != nil {
			return err
		}
	}
	sort.SliceStable(a.items, func(i, j int) bool {
		c, _ := order(a.items[i], a.items[j])
		return c < 0
	})
	return nil
}

// Clone returns a detached shallow copy.
func (a *Array) Clone() *Array {
	return NewArrayOf(a.items...)
}

// order is a total ordering over like-kinded values.
func order(a, b Value) (int, error) {
	switch {
	case a.IsNumber() && b.IsNumber():
		if a.Type == TypeInt && b.Type == TypeInt {
			return cmp3(a.Int() < b.Int(), a.Int() > b.Int()), nil
		}
		return cmp3(a.Float() < b.Float(), a.Float() > b.Float()), nil
	case a.Type == TypeString && b.Type == TypeString:
		return cmp3(a.Str() < b.Str(), a.Str() > b.Str()), nil
	case a.Type == TypeBool && b.Type == TypeBool:
		return cmp3(!a.Bool() && b.Bool(), a.Bool() && !b.Bool()), nil
	}
	return 0, typeError("order", a, b)
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
