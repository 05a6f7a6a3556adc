package hrp

import (
	"encoding/json"
	"fmt"

	apierrors "quantdesk/internal/errors"
)

// Constants for clustering bounds
const (
	// MinTickers is the smallest universe that can be clustered
	MinTickers = 2

	// MaxTickers bounds the universe so the O(n^3) merge loop stays cheap
	MaxTickers = 50
)

// Linkage selects the inter-cluster distance criterion used during
// agglomerative clustering.
type Linkage string

// Supported linkage criteria
const (
	// LinkageSingle merges on the minimum pairwise distance between clusters
	LinkageSingle Linkage = "single"
	// LinkageComplete merges on the maximum pairwise distance
	LinkageComplete Linkage = "complete"
	// LinkageAverage merges on the size-weighted mean pairwise distance
	LinkageAverage Linkage = "average"
	// LinkageWard merges to minimize the increase in within-cluster variance
	LinkageWard Linkage = "ward"
)

// DefaultLinkage is used when the caller does not select a criterion
const DefaultLinkage = LinkageWard

// IsValid returns true when l is a supported linkage criterion
func (l Linkage) IsValid() bool {
	switch l {
	case LinkageSingle, LinkageComplete, LinkageAverage, LinkageWard:
		return true
	}
	return false
}

// String implements fmt.Stringer
func (l Linkage) String() string {
	return string(l)
}

// ParseLinkage converts a request string into a Linkage, defaulting to
// DefaultLinkage for the empty string.
func ParseLinkage(s string) (Linkage, error) {
	if s == "" {
		return DefaultLinkage, nil
	}
	l := Linkage(s)
	if !l.IsValid() {
		return "", apierrors.NewValidation("linkage_method",
			"must be one of single, complete, average, ward", s)
	}
	return l, nil
}

// CorrelationMatrix is a square, symmetric matrix of pairwise Pearson
// correlations indexed by ticker. Values[i][j] is the correlation between
// Tickers[i] and Tickers[j]; the diagonal is 1.
type CorrelationMatrix struct {
	Tickers []string    `json:"tickers"`
	Values  [][]float64 `json:"values"`
}

// Dim returns the number of tickers the matrix is indexed by
func (m *CorrelationMatrix) Dim() int {
	return len(m.Tickers)
}

// Validate checks the structural invariants: square shape and one row per
// ticker. Value-level checks (finiteness) happen in the distance transform
// where the offending entry can be named.
func (m *CorrelationMatrix) Validate() error {
	if m == nil {
		return apierrors.NewValidation("correlation_matrix", "matrix is required", nil)
	}
	n := len(m.Tickers)
	if len(m.Values) != n {
		return apierrors.NewValidation("correlation_matrix",
			fmt.Sprintf("expected %d rows, got %d", n, len(m.Values)), nil)
	}
	for i, row := range m.Values {
		if len(row) != n {
			return apierrors.NewValidation("correlation_matrix",
				fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), n), nil)
		}
	}
	return nil
}

// Merge records one agglomeration step. Cluster ids follow the standard
// dendrogram convention: original items are 0..n-1 and the i-th merge
// creates cluster id n+i. A < B always holds.
type Merge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Height float64 `json:"height"`
	Size   int     `json:"size"`
}

// ClusterNode is one node of the binary cluster tree. Leaves carry a ticker
// name and height zero with both children nil; internal nodes carry a
// synthetic cluster name, the merge height, and exactly two children.
type ClusterNode struct {
	Name   string
	Height float64
	Left   *ClusterNode
	Right  *ClusterNode
}

// IsLeaf reports whether the node holds a single ticker
func (n *ClusterNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Leaves returns the tickers beneath the node in left-to-right order
func (n *ClusterNode) Leaves() []string {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return []string{n.Name}
	}
	leaves := n.Left.Leaves()
	return append(leaves, n.Right.Leaves()...)
}

// clusterNodeJSON is the wire shape: children is null for leaves and a
// two-element array for internal nodes.
type clusterNodeJSON struct {
	Name     string         `json:"name"`
	Height   float64        `json:"height"`
	Children []*ClusterNode `json:"children"`
}

// MarshalJSON implements json.Marshaler
func (n *ClusterNode) MarshalJSON() ([]byte, error) {
	out := clusterNodeJSON{Name: n.Name, Height: n.Height}
	if !n.IsLeaf() {
		out.Children = []*ClusterNode{n.Left, n.Right}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *ClusterNode) UnmarshalJSON(data []byte) error {
	var in clusterNodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	n.Name = in.Name
	n.Height = in.Height
	if len(in.Children) == 2 {
		n.Left = in.Children[0]
		n.Right = in.Children[1]
	} else if len(in.Children) != 0 {
		return fmt.Errorf("cluster node %q has %d children, expected 0 or 2", in.Name, len(in.Children))
	}
	return nil
}

// HeatmapCell is one cell of the seriated correlation matrix in long form
type HeatmapCell struct {
	X     string  `json:"x"`
	Y     string  `json:"y"`
	Value float64 `json:"value"`
}

// Result is the full output of one clustering analysis
type Result struct {
	Linkage        Linkage             `json:"linkage_method"`
	OrderedTickers []string            `json:"ordered_tickers"`
	Tree           *ClusterNode        `json:"cluster_tree"`
	LeafMap        map[string][]string `json:"cluster_leaves"`
	Heatmap        []HeatmapCell       `json:"heatmap_data"`
	Merges         []Merge             `json:"-"`
}
