package hrp

import (
	"fmt"

	apierrors "quantdesk/internal/errors"
)

// BuildTree converts a merge sequence into the nested binary cluster tree.
// Leaves are named by ticker and sit at height zero; internal nodes are
// named cluster_<id> using the dendrogram id of the merge that created
// them and carry the merge height.
func BuildTree(merges []Merge, tickers []string) (*ClusterNode, error) {
	n := len(tickers)
	if n == 0 {
		return nil, apierrors.NewValidation("tickers", "no tickers to build a tree from", nil)
	}
	if len(merges) != n-1 {
		return nil, apierrors.NewValidation("merges",
			fmt.Sprintf("expected %d merges for %d tickers, got %d", n-1, n, len(merges)), nil)
	}
	if n == 1 {
		return &ClusterNode{Name: tickers[0]}, nil
	}

	var build func(id int) (*ClusterNode, error)
	build = func(id int) (*ClusterNode, error) {
		if id < 0 || id >= n+len(merges) {
			return nil, apierrors.NewValidation("merges",
				fmt.Sprintf("cluster id %d out of range", id), nil)
		}
		if id < n {
			return &ClusterNode{Name: tickers[id]}, nil
		}
		m := merges[id-n]
		left, err := build(m.A)
		if err != nil {
			return nil, err
		}
		right, err := build(m.B)
		if err != nil {
			return nil, err
		}
		return &ClusterNode{
			Name:   fmt.Sprintf("cluster_%d", id),
			Height: m.Height,
			Left:   left,
			Right:  right,
		}, nil
	}

	return build(n + len(merges) - 1)
}

// LeafMap records, for every internal node of the tree, the tickers beneath
// it in left-to-right order. Leaves themselves are not included: a
// single-ticker "cluster" carries no allocation information.
func LeafMap(root *ClusterNode) map[string][]string {
	out := make(map[string][]string)
	var walk func(node *ClusterNode)
	walk = func(node *ClusterNode) {
		if node == nil || node.IsLeaf() {
			return
		}
		out[node.Name] = node.Leaves()
		walk(node.Left)
		walk(node.Right)
	}
	walk(root)
	return out
}
