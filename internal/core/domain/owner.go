package domain

import "slices"

// Principal is the acting identity resolved by the identity provider.
type Principal struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

// CanAccess reports whether the principal may act on entries of the given owner.
func (p Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin || p.ID == ownerID
}

// Owner is a ledger partition. Owners are recorded lazily on their first write.
type Owner struct {
	OwnerID     string `json:"ownerID"`
	DisplayName string `json:"displayName"`
}

// OwnerScope selects the set of owners a read covers.
// The zero value covers no owner at all; use AllOwners for the unrestricted scope.
type OwnerScope struct {
	all      bool
	ownerIDs []string
}

// SingleOwner scopes a read to one owner.
func SingleOwner(ownerID string) OwnerScope {
	return OwnerScope{ownerIDs: []string{ownerID}}
}

// AllOwners scopes a read to every owner. Only administrators should obtain this scope.
func AllOwners() OwnerScope {
	return OwnerScope{all: true}
}

// IsAll reports whether the scope is unrestricted.
func (s OwnerScope) IsAll() bool { return s.all }

// OwnerIDs returns the owners in scope; nil when the scope is unrestricted.
func (s OwnerScope) OwnerIDs() []string {
	if s.all {
		return nil
	}
	return slices.Clone(s.ownerIDs)
}

// Includes reports whether ownerID falls inside the scope.
func (s OwnerScope) Includes(ownerID string) bool {
	return s.all || slices.Contains(s.ownerIDs, ownerID)
}

// ScopeFor applies the visibility rule: non-administrators always see only their own
// ledger, administrators see the requested owner or everyone when none is requested.
func ScopeFor(p Principal, requestedOwnerID string) OwnerScope {
	if !p.IsAdmin {
		return SingleOwner(p.ID)
	}
	if requestedOwnerID == "" {
		return AllOwners()
	}
	return SingleOwner(requestedOwnerID)
}
