package project

import (
	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Fingerprint hashes the canonical YAML encoding of p. Map keys are sorted by
// the encoder, so equal projects always hash equally.
func Fingerprint(p *Project) uint64 {
	data, err := yaml.Marshal(p)
	if err != nil {
		// Projects only hold YAML-safe values; fall back to the coordinate.
		return xxhash.Sum64String(p.GA().String())
	}
	return xxhash.Sum64(data)
}

// Fingerprints hashes every project in the graph.
func (g *Graph) Fingerprints() map[*Project]uint64 {
	out := make(map[*Project]uint64, len(g.projects))
	for _, p := range g.projects {
		out[p] = Fingerprint(p)
	}
	return out
}

// Changed returns the projects whose fingerprint differs from before, in
// reactor order.
func (g *Graph) Changed(before map[*Project]uint64) []*Project {
	var changed []*Project
	for _, p := range g.projects {
		if Fingerprint(p) != before[p] {
			changed = append(changed, p)
		}
	}
	return changed
}
