package inmemory

import "github.com/tdex-network/aawalletd/internal/core/domain"

// Entities are stored by value, slices and maps must be copied so that
// callers can't mutate the store.

func copySessionKey(k domain.SessionKey) domain.SessionKey {
	perms := make([]domain.Permission, 0, len(k.Permissions))
	for _, p := range k.Permissions {
		p.AllowedFunctions = append([]string{}, p.AllowedFunctions...)
		perms = append(perms, p)
	}
	k.Permissions = perms

	spent := make(map[string]string, len(k.Spent))
	for target, amount := range k.Spent {
		spent[target] = amount
	}
	k.Spent = spent
	return k
}

func copyRecoveryRequest(r domain.RecoveryRequest) domain.RecoveryRequest {
	r.Guardians = append([]string{}, r.Guardians...)
	r.Approvals = append([]string{}, r.Approvals...)
	return r
}
