package ports

import "github.com/bnema/classcall/internal/domain"

type RosterIDGenerator interface {
	NewRosterID() (domain.RosterID, error)
}
