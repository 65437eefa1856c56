package slurm

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/hpctools/sonar/pkg/envelope"
	"github.com/hpctools/sonar/pkg/types"
)

// ParsePartitions decodes "sinfo --format=%R|%N" output (partition name
// to its compressed node range), preserving input order and leaving
// the NodeRange in its compressed form.
func ParsePartitions(raw []byte) ([]envelope.PartitionInfo, error) {
	var out []envelope.PartitionInfo
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		name, nodes, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		out = append(out, envelope.PartitionInfo{
			Name: name,
			Nodes: []envelope.NodeInfo{
				{Nodes: types.NodeRange(nodes)},
			},
		})
	}
	return out, sc.Err()
}

// ParseNodeStates decodes "sinfo --format=%N|%T" output (compressed
// node range to state) into a lookup by individual host name, used to
// fill in NodeInfo.State for each partition's node range.
func ParseNodeStates(raw []byte) (map[string]string, error) {
	states := map[string]string{}
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		nodes, state, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}
		hosts, err := types.NodeRange(nodes).Expand()
		if err != nil {
			continue
		}
		for _, h := range hosts {
			states[h] = state
		}
	}
	return states, sc.Err()
}

// MergeClusterTopology fills in per-node state on each partition's node
// range by expanding it, looking up state per host, and regrouping
// hosts that share a state back into compressed ranges, all while
// preserving the partition order ParsePartitions produced.
func MergeClusterTopology(partitions []envelope.PartitionInfo, states map[string]string) []envelope.PartitionInfo {
	out := make([]envelope.PartitionInfo, len(partitions))
	for i, p := range partitions {
		out[i] = envelope.PartitionInfo{Name: p.Name}
		for _, n := range p.Nodes {
			hosts, err := n.Nodes.Expand()
			if err != nil {
				out[i].Nodes = append(out[i].Nodes, n)
				continue
			}
			byState := map[string][]string{}
			var stateOrder []string
			for _, h := range hosts {
				st := states[h]
				if _, seen := byState[st]; !seen {
					stateOrder = append(stateOrder, st)
				}
				byState[st] = append(byState[st], h)
			}
			for _, st := range stateOrder {
				out[i].Nodes = append(out[i].Nodes, envelope.NodeInfo{
					Nodes: types.Compress(byState[st]),
					State: st,
				})
			}
		}
	}
	return out
}
