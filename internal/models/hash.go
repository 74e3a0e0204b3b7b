package models

import (
	"encoding/hex"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"
)

// hashState is the part of a group that takes part in its content hash.
// Identity, ordering and timestamps are left out, and nil and empty
// collections encode the same.
type hashState struct {
	Namespace string      `json:"ns"`
	Name      string      `json:"n"`
	HTML      []HTMLArea  `json:"h,omitempty"`
	Images    []ImageArea `json:"i,omitempty"`
	Texts     []TextArea  `json:"t,omitempty"`
	Metadata  []Metadata  `json:"m,omitempty"`
	Children  []hashState `json:"c,omitempty"`
}

func newHashState(g *ContentGroup) hashState {
	s := hashState{
		Namespace: g.Namespace,
		Name:      g.Name,
		HTML:      g.HTML,
		Images:    g.Images,
		Texts:     g.Texts,
		Metadata:  g.Metadata,
	}
	for _, c := range g.Children {
		s.Children = append(s.Children, newHashState(c))
	}
	return s
}

// Hash returns a hex BLAKE2b-256 fingerprint of the group's area state,
// children included. Two groups with equal areas in equal order hash equal.
func (g *ContentGroup) Hash() string {
	b, err := json.Marshal(newHashState(g))
	if err != nil {
		// Only plain strings and bools are encoded, so this cannot fail.
		panic("models: encode hash state: " + err.Error())
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
