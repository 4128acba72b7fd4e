package session

// User mirrors the backend's user DTO. All fields are non-sensitive and may
// be cached unencrypted.
type User struct {
	ID                  string   `json:"id"`
	Email               string   `json:"email"`
	FirstName           string   `json:"firstName,omitempty"`
	LastName            string   `json:"lastName,omitempty"`
	AvatarURL           string   `json:"avatarUrl,omitempty"`
	IsEmailVerified     bool     `json:"isEmailVerified"`
	TwoFactorEnabled    bool     `json:"twoFactorEnabled"`
	Timezone            string   `json:"timezone,omitempty"`
	DefaultOrgID        string   `json:"defaultOrgId,omitempty"`
	PlatformRole        string   `json:"platformRole,omitempty"`
	PlatformPermissions []string `json:"platformPermissions,omitempty"`
	CreatedAt           string   `json:"createdAt"`
}

// Membership is the user's role within one organization.
type Membership struct {
	OrganizationID   string `json:"organizationId"`
	OrganizationName string `json:"organizationName"`
	OrganizationSlug string `json:"organizationSlug"`
	RoleName         string `json:"roleName"`
	RoleHierarchy    int    `json:"roleHierarchy"`
	Status           string `json:"status"`
}
