package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
)

type Store struct {
	mu sync.RWMutex

	roles       map[string]entities.Role
	assignments map[string]map[string]entities.RoleAssignment
}

// NewStore seeds the builtin role catalog. When initialAdmin is non-empty it
// receives both default_admin and admin, mirroring deployment-time
// initializer semantics.
func NewStore(initialAdmin string) *Store {
	roles := make(map[string]entities.Role)
	for _, role := range entities.BuiltinRoles() {
		roles[role.RoleName] = role
	}
	store := &Store{
		roles:       roles,
		assignments: make(map[string]map[string]entities.RoleAssignment),
	}
	initialAdmin = strings.TrimSpace(initialAdmin)
	if initialAdmin != "" {
		now := time.Now().UTC()
		for _, roleName := range []string{entities.RoleDefaultAdmin, entities.RoleAdmin} {
			store.assign(entities.RoleAssignment{
				Account:   initialAdmin,
				RoleName:  roleName,
				GrantedBy: initialAdmin,
				GrantedAt: now,
			})
		}
	}
	return store
}

func (s *Store) GetRole(_ context.Context, roleName string) (entities.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[strings.ToLower(strings.TrimSpace(roleName))]
	if !ok {
		return entities.Role{}, domainerrors.ErrRoleNotFound
	}
	return role, nil
}

func (s *Store) ListAccountRoles(_ context.Context, account string) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignments[strings.TrimSpace(account)] {
		items = append(items, assignment)
	}
	sortAssignments(items)
	return items, nil
}

func (s *Store) ListEffectivePermissions(_ context.Context, account string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	permissions := make([]string, 0)
	for roleName := range s.assignments[strings.TrimSpace(account)] {
		role, ok := s.roles[roleName]
		if !ok {
			continue
		}
		for _, permission := range role.Permissions {
			if seen[permission] {
				continue
			}
			seen[permission] = true
			permissions = append(permissions, permission)
		}
	}
	return permissions, nil
}

func (s *Store) AssignRole(_ context.Context, assignment entities.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account := strings.TrimSpace(assignment.Account)
	roleName := strings.ToLower(strings.TrimSpace(assignment.RoleName))
	if _, ok := s.assignments[account][roleName]; ok {
		return domainerrors.ErrRoleAlreadyAssigned
	}
	assignment.Account = account
	assignment.RoleName = roleName
	s.assign(assignment)
	return nil
}

func (s *Store) RemoveRole(_ context.Context, account string, roleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account = strings.TrimSpace(account)
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	if _, ok := s.assignments[account][roleName]; !ok {
		return domainerrors.ErrRoleNotAssigned
	}
	delete(s.assignments[account], roleName)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) assign(assignment entities.RoleAssignment) {
	if s.assignments[assignment.Account] == nil {
		s.assignments[assignment.Account] = make(map[string]entities.RoleAssignment)
	}
	s.assignments[assignment.Account][assignment.RoleName] = assignment
}

func sortAssignments(items []entities.RoleAssignment) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].RoleName < items[j].RoleName
	})
}
