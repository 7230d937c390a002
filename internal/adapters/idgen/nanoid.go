// Package idgen generates short, URL-safe roster IDs backed by nanoid.
package idgen

import (
	"fmt"

	"github.com/bnema/classcall/internal/domain"
	"github.com/bnema/classcall/internal/ports"
	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultPrefix = "cc-"
	Alphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	Length        = 8
)

type NanoID struct {
	prefix string
}

var _ ports.RosterIDGenerator = (*NanoID)(nil)

func NewNanoID(prefix string) *NanoID {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &NanoID{prefix: prefix}
}

func (g *NanoID) NewRosterID() (domain.RosterID, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return domain.RosterID(g.prefix + id), nil
}
