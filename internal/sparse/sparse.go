/*
Package sparse implements a sparse matrix of integer values, used to collect
the ACTION and GOTO tables while generating parser tables.

Every entry of the matrix is either a single int32 or a pair (int32,int32).
A second value at a position indicates a conflict. Entries are stored as
triplets (row, column, value), ordered by row and column.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package sparse

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// IntMatrix is a sparse matrix of int32 values. Construct with
//
//	M := NewIntMatrix(10, 10, sparse.DefaultNullValue)
//
// Now
//
//	M.Set(2, 3, 4711)              // set a value
//	v := M.Value(2, 3)             // returns 4711
//	M.Add(2, 3, 123)               // add a second value => conflict
//	a, b := M.Values(2, 3)         // returns 4711, 123
//
// Values cannot be deleted, but may be overwritten.
type IntMatrix struct {
	values  []triplet
	rowcnt  int
	colcnt  int
	nullval int32
}

type triplet struct {
	row, col int
	a, b     int32
}

func (t triplet) String() string {
	return fmt.Sprintf("(%d,%d)=[%d,%d]", t.row, t.col, t.a, t.b)
}

// DefaultNullValue is the default empty-value for matrices (min int32).
const DefaultNullValue = -2147483648

// NewIntMatrix creates a new matrix of size m x n. The third argument is the
// value reported for empty entries.
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{rowcnt: m, colcnt: n, nullval: nullValue}
}

// M returns the row count.
func (m *IntMatrix) M() int { return m.rowcnt }

// N returns the column count.
func (m *IntMatrix) N() int { return m.colcnt }

// NullValue returns this matrix' null value.
func (m *IntMatrix) NullValue() int32 { return m.nullval }

// ValueCount returns the number of positions holding a value.
func (m *IntMatrix) ValueCount() int { return len(m.values) }

func (m *IntMatrix) find(i, j int) (int, bool) {
	return slices.BinarySearchFunc(m.values, triplet{row: i, col: j}, func(t, target triplet) int {
		if t.row != target.row {
			return t.row - target.row
		}
		return t.col - target.col
	})
}

// Value returns the primary value at position (i,j), or the null value.
func (m *IntMatrix) Value(i, j int) int32 {
	if k, ok := m.find(i, j); ok {
		return m.values[k].a
	}
	return m.nullval
}

// Values returns both values at position (i,j). Missing values are reported
// as the null value.
func (m *IntMatrix) Values(i, j int) (int32, int32) {
	if k, ok := m.find(i, j); ok {
		return m.values[k].a, m.values[k].b
	}
	return m.nullval, m.nullval
}

// Set sets the value at position (i,j), clearing a second value.
func (m *IntMatrix) Set(i, j int, value int32) *IntMatrix {
	m.checkBounds(i, j)
	k, ok := m.find(i, j)
	if ok {
		m.values[k].a, m.values[k].b = value, m.nullval
		return m
	}
	m.values = slices.Insert(m.values, k, triplet{row: i, col: j, a: value, b: m.nullval})
	return m
}

// Add adds a value at position (i,j). If the position already holds a
// different value, the new value becomes the second one. Adding a value
// already present is a no-op.
func (m *IntMatrix) Add(i, j int, value int32) *IntMatrix {
	m.checkBounds(i, j)
	k, ok := m.find(i, j)
	if !ok {
		m.values = slices.Insert(m.values, k, triplet{row: i, col: j, a: value, b: m.nullval})
		return m
	}
	t := &m.values[k]
	if t.a == value || t.b == value {
		return m
	}
	if t.a == m.nullval {
		t.a = value
	} else {
		t.b = value // a third value overwrites the second one
	}
	return m
}

func (m *IntMatrix) checkBounds(i, j int) {
	if i < 0 || i >= m.rowcnt || j < 0 || j >= m.colcnt {
		panic(fmt.Sprintf("sparse matrix index (%d,%d) out of range %dx%d", i, j, m.rowcnt, m.colcnt))
	}
}

// Row calls f for every position of row i holding a value, in column order.
func (m *IntMatrix) Row(i int, f func(j int, a, b int32)) {
	k, _ := m.find(i, 0)
	for ; k < len(m.values) && m.values[k].row == i; k++ {
		f(m.values[k].col, m.values[k].a, m.values[k].b)
	}
}

// Conflicts returns the positions holding two values, as (row, column) pairs.
func (m *IntMatrix) Conflicts() [][2]int {
	var c [][2]int
	for _, t := range m.values {
		if t.b != m.nullval {
			c = append(c, [2]int{t.row, t.col})
		}
	}
	return c
}
