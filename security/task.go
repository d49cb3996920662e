package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skekre98/odsharness/config"
)

const UpdateSecurityDatabaseTaskName = "update-security-database"

// UpdateSecurityDatabaseTask writes the configured claim sets, then makes
// sure every claim set an application refers to exists, creating empty ones
// where needed.
type UpdateSecurityDatabaseTask struct {
	store  Store
	cfg    config.HarnessConfig
	logger *slog.Logger
}

func NewUpdateSecurityDatabaseTask(store Store, cfg config.HarnessConfig, logger *slog.Logger) *UpdateSecurityDatabaseTask {
	return &UpdateSecurityDatabaseTask{store: store, cfg: cfg, logger: logger}
}

func (t *UpdateSecurityDatabaseTask) Name() string { return UpdateSecurityDatabaseTaskName }

func (t *UpdateSecurityDatabaseTask) Execute(ctx context.Context) error {
	for _, csc := range t.cfg.ClaimSets {
		cs := claimSetFromConfig(csc)
		if err := t.store.UpsertClaimSet(ctx, cs); err != nil {
			return fmt.Errorf("claim set %s: %w", cs.Name, err)
		}
	}

	for _, name := range t.referencedClaimSets() {
		_, err := t.store.FindClaimSet(ctx, name)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, ErrNotFound):
			return fmt.Errorf("claim set %s: %w", name, err)
		}

		if err := t.store.UpsertClaimSet(ctx, ClaimSet{Name: name}); err != nil {
			return fmt.Errorf("claim set %s: %w", name, err)
		}
		t.logger.Warn("created empty claim set referenced by an application", "claim_set", name)
	}
	return nil
}

// referencedClaimSets lists, in first-seen order, the default claim set and
// every claim set named by a configured application.
func (t *UpdateSecurityDatabaseTask) referencedClaimSets() []string {
	seen := map[string]bool{}
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	add(t.cfg.ClaimSetOrDefault())
	for _, v := range t.cfg.Vendors {
		for _, a := range v.Applications {
			add(a.ClaimSetName)
		}
	}
	return names
}

// claimSetFromConfig folds repeated resources together and normalizes actions.
func claimSetFromConfig(csc config.ClaimSetConfig) ClaimSet {
	cs := ClaimSet{Name: csc.Name}
	index := map[string]int{}
	for _, rc := range csc.Resources {
		if i, ok := index[rc.Name]; ok {
			cs.Resources[i].Actions = normalizeActions(append(cs.Resources[i].Actions, rc.Actions...))
			continue
		}
		index[rc.Name] = len(cs.Resources)
		cs.Resources = append(cs.Resources, ResourceClaim{Name: rc.Name, Actions: normalizeActions(rc.Actions)})
	}
	return cs
}
