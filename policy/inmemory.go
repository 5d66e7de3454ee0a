package policy

import (
	"context"
	"sync"
)

// SupplierLink is one supplier-list row: a factory and one of its buyers.
type SupplierLink struct {
	Factory string
	Buyer   string
}

// CompanyPolicies holds one company's documented policies by category.
type CompanyPolicies struct {
	Company  string
	Policies map[string]Ref
}

// InMemoryStore is a table-backed Store. The tables are loaded once at
// construction and read-only afterwards, so lookups are safe across
// sessions.
type InMemoryStore struct {
	mu        sync.RWMutex
	suppliers []SupplierLink
	policies  map[string]map[string]Ref // normalized company name -> category -> ref
}

// NewInMemoryStore creates a store from supplier links and company policies.
func NewInMemoryStore(suppliers []SupplierLink, companies []CompanyPolicies) *InMemoryStore {
	policies := make(map[string]map[string]Ref, len(companies))
	for _, cp := range companies {
		if cp.Company == "" || len(cp.Policies) == 0 {
			continue
		}
		key := NormalizeName(cp.Company)
		refs := make(map[string]Ref, len(cp.Policies))
		for category, ref := range cp.Policies {
			refs[category] = ref
		}
		policies[key] = refs
	}
	return &InMemoryStore{
		suppliers: append([]SupplierLink(nil), suppliers...),
		policies:  policies,
	}
}

// BuyersForFactory resolves buyers by exact and/or partial factory-name
// match, deduplicated in first-seen order.
func (s *InMemoryStore) BuyersForFactory(ctx context.Context, factoryName string, mode MatchMode) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var buyers []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		buyers = append(buyers, name)
	}

	exact := mode == MatchExact || mode == MatchBoth
	partial := mode == MatchPartial || mode == MatchBoth

	for _, link := range s.suppliers {
		if exact && NamesEqual(link.Factory, factoryName) {
			add(link.Buyer)
			continue
		}
		if partial && NameContains(link.Factory, factoryName) {
			add(link.Buyer)
		}
	}
	return buyers, nil
}

// PoliciesForCompany returns the company's documented policies by category.
func (s *InMemoryStore) PoliciesForCompany(ctx context.Context, companyName string) (map[string]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs, ok := s.policies[NormalizeName(companyName)]
	if !ok {
		return map[string]Ref{}, nil
	}
	out := make(map[string]Ref, len(refs))
	for category, ref := range refs {
		out[category] = ref
	}
	return out, nil
}
