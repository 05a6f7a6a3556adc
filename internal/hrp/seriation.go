package hrp

import (
	"fmt"

	apierrors "quantdesk/internal/errors"
)

// LeafOrder computes the dendrogram leaf ordering for a merge sequence over
// n original items: the depth-first expansion of the final merge, left
// child before right. Items that merged at low heights end up adjacent,
// which is what makes the reordered correlation matrix block-diagonal.
//
// The result is a permutation of 0..n-1.
func LeafOrder(merges []Merge, n int) ([]int, error) {
	if n < 1 {
		return nil, apierrors.NewValidation("merges", "no items to order", n)
	}
	if len(merges) != n-1 {
		return nil, apierrors.NewValidation("merges",
			fmt.Sprintf("expected %d merges for %d items, got %d", n-1, n, len(merges)), nil)
	}
	if n == 1 {
		return []int{0}, nil
	}

	order := make([]int, 0, n)
	var walk func(id int) error
	walk = func(id int) error {
		if id < 0 || id >= n+len(merges) {
			return apierrors.NewValidation("merges",
				fmt.Sprintf("cluster id %d out of range", id), nil)
		}
		if id < n {
			order = append(order, id)
			return nil
		}
		m := merges[id-n]
		if err := walk(m.A); err != nil {
			return err
		}
		return walk(m.B)
	}

	root := n + len(merges) - 1
	if err := walk(root); err != nil {
		return nil, err
	}
	if len(order) != n {
		return nil, apierrors.NewValidation("merges",
			fmt.Sprintf("merge tree spans %d leaves, expected %d", len(order), n), nil)
	}
	return order, nil
}
