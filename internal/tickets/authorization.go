package tickets

import (
	"strings"

	"github.com/THEREALVANHEL/coalbot/pkg/models"
)

// Member is the caller's identity as the platform reports it.
type Member struct {
	UserID    int64
	Username  string
	IsAdmin   bool
	RoleIDs   []int64
	RoleNames []string
}

// Authorizer decides who counts as ticket staff. A member qualifies
// through the platform admin flag, the configured admin role, a
// per-guild support role, or a role whose name contains one of the
// staff keywords.
type Authorizer struct {
	adminRoleID int64
	keywords    []string
}

// NewAuthorizer creates the staff check. Keywords are matched
// case-insensitively as substrings of role names.
func NewAuthorizer(adminRoleID int64, staffKeywords []string) *Authorizer {
	keywords := make([]string, 0, len(staffKeywords))
	for _, k := range staffKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Authorizer{adminRoleID: adminRoleID, keywords: keywords}
}

// IsStaff reports whether the member may act on tickets they did not
// create.
func (a *Authorizer) IsStaff(m Member, settings *models.GuildSettings) bool {
	if m.IsAdmin {
		return true
	}
	if a.adminRoleID != 0 {
		for _, id := range m.RoleIDs {
			if id == a.adminRoleID {
				return true
			}
		}
	}
	if settings != nil {
		for _, supportID := range settings.TicketSupportRoles {
			for _, id := range m.RoleIDs {
				if id == supportID {
					return true
				}
			}
		}
	}
	for _, name := range m.RoleNames {
		lower := strings.ToLower(name)
		for _, kw := range a.keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
