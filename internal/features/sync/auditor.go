package sync

import (
	"context"
	"time"

	"go-opsdesk/internal/config"
	"go-opsdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Auditor is the full-scan backstop: it recomputes what every role and user
// document should contain and repairs any divergence in one batched pass.
// Running it twice with no intervening mutation fixes nothing the second
// time.
type Auditor interface {
	ValidateAndFixConsistency(ctx context.Context) (*Report, error)
}

type AuditorImpl struct {
	Roles   RoleStore
	Users   UserStore
	Catalog Catalog
	Batch   database.BatchWriter
	Log     *zap.Logger
	Timeout time.Duration
}

func NewAuditor(roles RoleStore, users UserStore, catalog Catalog, batch database.BatchWriter, cfg *config.Config, log *zap.Logger) Auditor {
	return &AuditorImpl{
		Roles:   roles,
		Users:   users,
		Catalog: catalog,
		Batch:   batch,
		Log:     log,
		Timeout: cfg.AuditTimeout,
	}
}

// ValidateAndFixConsistency scans roles first, dropping permission keys that
// no longer exist in the catalog, then verifies every user against the
// repaired role sets. User expectations are computed from the repaired sets
// rather than the stored ones; otherwise a run that fixes a role would leave
// its users pointing at the pre-repair set and the next run would not be
// clean. A timeout aborts with partial progress, which is safe to re-run.
func (a *AuditorImpl) ValidateAndFixConsistency(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	started := time.Now()

	keys, err := a.Catalog.Keys(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := a.Roles.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var ops []database.Op
	now := time.Now()

	// Phase 1: strip orphaned permission keys out of roles.
	repaired := make(map[string][]string, len(roles))
	for _, role := range roles {
		kept := make([]string, 0, len(role.Permissions))
		for _, p := range role.Permissions {
			if _, ok := keys[p]; ok {
				kept = append(kept, p)
			}
		}
		kept = normalizeSet(kept)
		repaired[role.ID] = kept
		if len(kept) != len(role.Permissions) {
			ops = append(ops, database.Op{
				Collection: rolesCollection,
				ID:         role.ID,
				Set:        bson.M{"permissions": kept, "updated_at": now},
			})
			report.FixedRoles++
		}
	}

	// Phase 2: verify every user's cached set against its repaired role.
	users, err := a.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	fallback, haveFallback := repaired[DefaultRoleID]
	for _, u := range users {
		expected, ok := repaired[u.Role]
		if !ok {
			// Role no longer resolves: reassign to the default role.
			if !haveFallback {
				a.Log.Error("consistency: user has unresolvable role and default role is missing",
					zap.String("user_id", u.ID), zap.String("role", u.Role))
				continue
			}
			ops = append(ops, database.Op{
				Collection: usersCollection,
				ID:         u.ID,
				Set:        bson.M{"role": DefaultRoleID, "permissions": fallback, "updated_at": now},
			})
			report.FixedUsers++
			continue
		}
		if !equalSets(u.Permissions, expected) {
			ops = append(ops, database.Op{
				Collection: usersCollection,
				ID:         u.ID,
				Set:        bson.M{"permissions": expected, "updated_at": now},
			})
			report.FixedUsers++
		}
	}

	if err := a.Batch.Commit(ctx, ops); err != nil {
		return nil, err
	}

	a.Log.Info("consistency audit finished",
		zap.Int("fixed_users", report.FixedUsers),
		zap.Int("fixed_roles", report.FixedRoles),
		zap.Duration("took", time.Since(started)))

	return report, nil
}
