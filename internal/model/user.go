package model

// Role determines what a back-office account may do. Only RoleAdmin passes
// the admin gate; the other values exist so accounts can be parked without
// deleting them.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleGuest  Role = "guest"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleGuest
}

// User is the stored form of a back-office account, including credential
// material. It never leaves the repository layer as-is; handlers work with
// the PublicUser projection.
//
// Fields:
//
//	ID           – opaque unique identifier, assigned at creation, immutable.
//	Name         – display name.
//	Email        – unique (case-insensitive), also the session token subject.
//	Role         – admin | editor | guest.
//	Active       – inactive accounts fail every privileged check even with a valid token.
//	CreatedAt    – ISO-8601 creation timestamp.
//	UpdatedAt    – ISO-8601 timestamp, refreshed on every mutation.
//	PasswordHash – PBKDF2-SHA256 digest of password+salt, hex encoded.
//	PasswordSalt – per-user random salt; regenerated together with the hash.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	PasswordHash string `json:"passwordHash"`
	PasswordSalt string `json:"passwordSalt"`
}

// PublicUser is the credential-free projection of a User. Everything the
// admin UI needs, nothing it must not see.
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Public strips the credential fields from u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch carries a partial update for a user. Nil pointers mean "leave
// unchanged". A non-nil Password triggers a full salt+hash rotation.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}
