package sync

import (
	"context"
	"fmt"
	"sort"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/database"

	"go.uber.org/zap"
)

// fakeRoleStore keeps roles in a map and records SetPermissions calls.
type fakeRoleStore struct {
	roles    map[string]*common_models.Role
	setCalls []string
	failFind map[string]error
}

func newFakeRoleStore(roles ...*common_models.Role) *fakeRoleStore {
	s := &fakeRoleStore{roles: make(map[string]*common_models.Role)}
	for _, r := range roles {
		s.roles[r.ID] = r
	}
	return s
}

func (s *fakeRoleStore) List(ctx context.Context) ([]common_models.Role, error) {
	out := make([]common_models.Role, 0, len(s.roles))
	for _, id := range sortedRoleIDs(s.roles) {
		out = append(out, *s.roles[id])
	}
	return out, nil
}

func (s *fakeRoleStore) FindByID(ctx context.Context, id string) (*common_models.Role, error) {
	if err, ok := s.failFind[id]; ok {
		return nil, err
	}
	r, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (s *fakeRoleStore) SetPermissions(ctx context.Context, id string, permissions []string) error {
	r, ok := s.roles[id]
	if !ok {
		return fmt.Errorf("role %q not found", id)
	}
	r.Permissions = permissions
	s.setCalls = append(s.setCalls, id)
	return nil
}

func sortedRoleIDs(m map[string]*common_models.Role) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fakeUserStore keeps users in a map keyed by id.
type fakeUserStore struct {
	users map[string]*common_models.User
}

func newFakeUserStore(users ...*common_models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*common_models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) List(ctx context.Context) ([]common_models.User, error) {
	out := make([]common_models.User, 0, len(s.users))
	for _, id := range sortedUserIDs(s.users) {
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *fakeUserStore) FindByRole(ctx context.Context, roleID string) ([]common_models.User, error) {
	var out []common_models.User
	for _, id := range sortedUserIDs(s.users) {
		if s.users[id].Role == roleID {
			out = append(out, *s.users[id])
		}
	}
	return out, nil
}

func sortedUserIDs(m map[string]*common_models.User) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// fakeCatalog serves a fixed key set.
type fakeCatalog struct {
	keys map[string]struct{}
}

func newFakeCatalog(keys ...string) *fakeCatalog {
	c := &fakeCatalog{keys: make(map[string]struct{})}
	for _, k := range keys {
		c.keys[k] = struct{}{}
	}
	return c
}

func (c *fakeCatalog) Keys(ctx context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(c.keys))
	for k := range c.keys {
		out[k] = struct{}{}
	}
	return out, nil
}

// fakeBatch records committed ops and applies them to the fakes, so repeated
// runs observe the repaired state.
type fakeBatch struct {
	commits [][]database.Op
	roles   *fakeRoleStore
	users   *fakeUserStore
	err     error
}

func (b *fakeBatch) Commit(ctx context.Context, ops []database.Op) error {
	if b.err != nil {
		return b.err
	}
	b.commits = append(b.commits, ops)
	for _, op := range ops {
		switch op.Collection {
		case usersCollection:
			if b.users == nil {
				continue
			}
			u, ok := b.users.users[op.ID]
			if !ok {
				continue
			}
			if v, ok := op.Set["permissions"].([]string); ok {
				u.Permissions = v
			}
			if v, ok := op.Set["role"].(string); ok {
				u.Role = v
			}
		case rolesCollection:
			if b.roles == nil {
				continue
			}
			r, ok := b.roles.roles[op.ID]
			if !ok {
				continue
			}
			if v, ok := op.Set["permissions"].([]string); ok {
				r.Permissions = v
			}
		}
	}
	return nil
}

func (b *fakeBatch) allOps() []database.Op {
	var out []database.Op
	for _, c := range b.commits {
		out = append(out, c...)
	}
	return out
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
