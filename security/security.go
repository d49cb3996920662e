// Package security maintains the claim sets the harness seeds into the
// security database.
package security

import (
	"context"
	"errors"
	"slices"
	"strings"
)

var ErrNotFound = errors.New("security: not found")

// Actions a resource claim may grant.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type ResourceClaim struct {
	Name    string
	Actions []string
}

type ClaimSet struct {
	Name      string
	Resources []ResourceClaim
}

type Store interface {
	UpsertClaimSet(ctx context.Context, cs ClaimSet) error
	// FindClaimSet returns ErrNotFound for an unknown name.
	FindClaimSet(ctx context.Context, name string) (ClaimSet, error)
	ListClaimSets(ctx context.Context) ([]ClaimSet, error)
}

// normalizeActions lowercases, sorts and deduplicates actions.
func normalizeActions(actions []string) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, strings.ToLower(strings.TrimSpace(a)))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func cloneClaimSet(cs ClaimSet) ClaimSet {
	if cs.Resources == nil {
		return cs
	}
	res := make([]ResourceClaim, len(cs.Resources))
	for i, rc := range cs.Resources {
		res[i] = ResourceClaim{Name: rc.Name, Actions: slices.Clone(rc.Actions)}
	}
	cs.Resources = res
	return cs
}
