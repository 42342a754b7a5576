package reconcile

import (
	"strings"

	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
)

// Institution describes how feed user identifiers map onto directory email.
type Institution struct {
	// ShortDomain is the legacy account domain ("onid").
	ShortDomain string
	// EmailDomain is the institutional mail domain ("oregonstate.edu").
	EmailDomain string
}

// DefaultInstitution returns the deployment defaults.
func DefaultInstitution() Institution {
	return Institution{
		ShortDomain: constants.DefaultShortDomain,
		EmailDomain: constants.DefaultEmailDomain,
	}
}

// NormalizeUser lowercases a feed user identifier and rewrites the two
// short-domain forms, "onid\name" and "name@onid...", to "name@<EmailDomain>".
func (i Institution) NormalizeUser(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || i.ShortDomain == "" {
		return s
	}
	short := strings.ToLower(i.ShortDomain)
	if rest, ok := strings.CutPrefix(s, short+`\`); ok {
		if rest == "" {
			return ""
		}
		return rest + "@" + i.EmailDomain
	}
	if at := strings.Index(s, "@"+short); at > 0 {
		return s[:at] + "@" + i.EmailDomain
	}
	return s
}

// StudentRule decides whether a directory user is excluded from ownership.
type StudentRule func(assets.User) bool

// IsStudent flags users whose default account name contains marker.
// The account name is a stand-in for a real enrollment attribute.
func IsStudent(marker string) StudentRule {
	marker = strings.ToLower(marker)
	return func(u assets.User) bool {
		return marker != "" && strings.Contains(strings.ToLower(u.DefaultAccountName), marker)
	}
}

// Directory is the registry user list indexed for email lookup.
type Directory struct {
	users []assets.User
}

// NewDirectory wraps users for lookup.
func NewDirectory(users []assets.User) *Directory {
	return &Directory{users: users}
}

// Lookup returns the first user whose primary or alert email equals email,
// ignoring case.
func (d *Directory) Lookup(email string) (assets.User, bool) {
	if d == nil || email == "" {
		return assets.User{}, false
	}
	for _, u := range d.users {
		if u.MatchesEmail(email) {
			return u, true
		}
	}
	return assets.User{}, false
}

// resolvedUser is a feed user identifier after normalization and lookup.
type resolvedUser struct {
	Normalized string
	User       assets.User
	Found      bool
}

func (p *Planner) resolveUser(raw string, dir *Directory) resolvedUser {
	normalized := p.cfg.Institution.NormalizeUser(raw)
	u, ok := dir.Lookup(normalized)
	return resolvedUser{Normalized: normalized, User: u, Found: ok}
}

// eligibleOwner is true when a user may be recorded as the owning customer.
func (p *Planner) eligibleOwner(u assets.User) bool {
	return u.HasDepartment() && !p.isStudent(u)
}
