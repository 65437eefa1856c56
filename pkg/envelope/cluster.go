package envelope

import "github.com/hpctools/sonar/pkg/types"

// NodeInfo is one node's state within a partition's node set.
type NodeInfo struct {
	Nodes types.NodeRange `json:"nodes"`
	State string          `json:"state"`
}

// PartitionInfo is one Slurm partition and the node ranges making it
// up, in the order sinfo reported them.
type PartitionInfo struct {
	Name  string     `json:"name"`
	Nodes []NodeInfo `json:"nodes"`
}

// ClusterAttributes is the cluster topology snapshot emitted by the
// "cluster" operation: partition membership and per-node state.
type ClusterAttributes struct {
	Cluster    string          `json:"cluster"`
	Partitions []PartitionInfo `json:"partitions"`
}
