package account

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/orris-inc/licensing/internal/shared/authorization"
	"github.com/orris-inc/licensing/internal/shared/biztime"
)

// AuthManual marks accounts that log in with a local password.
const AuthManual = "manual"

var lowerCaser = cases.Lower(language.Und)

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return lowerCaser.String(strings.TrimSpace(username))
}

// RosterFields are the identity columns a roster row carries.
type RosterFields struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	IDNumber  string
}

func (f RosterFields) normalized() RosterFields {
	return RosterFields{
		Username:  NormalizeUsername(f.Username),
		Email:     strings.TrimSpace(f.Email),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		IDNumber:  strings.TrimSpace(f.IDNumber),
	}
}

// User is a platform account.
type User struct {
	id           uint
	username     string
	email        string
	firstName    string
	lastName     string
	idNumber     string
	auth         string
	confirmed    bool
	locale       string
	host         string
	role         authorization.UserRole
	passwordHash string
	profile      map[string]string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUserParams carries everything needed to create an account.
type NewUserParams struct {
	Fields       RosterFields
	PasswordHash string
	Locale       string
	Host         string
	Role         authorization.UserRole
	Profile      map[string]string
}

// NewUser creates a confirmed, manually authenticated account.
func NewUser(p NewUserParams) (*User, error) {
	f := p.Fields.normalized()
	if f.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if f.IDNumber == "" {
		return nil, fmt.Errorf("id number is required")
	}
	if p.PasswordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	role := p.Role
	if role == "" {
		role = authorization.RoleLearner
	}

	now := biztime.NowUTC()
	return &User{
		username:     f.Username,
		email:        f.Email,
		firstName:    f.FirstName,
		lastName:     f.LastName,
		idNumber:     f.IDNumber,
		auth:         AuthManual,
		confirmed:    true,
		locale:       p.Locale,
		host:         p.Host,
		role:         role,
		passwordHash: p.PasswordHash,
		profile:      p.Profile,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUserParams mirrors the persisted columns.
type ReconstructUserParams struct {
	ID           uint
	Username     string
	Email        string
	FirstName    string
	LastName     string
	IDNumber     string
	Auth         string
	Confirmed    bool
	Locale       string
	Host         string
	Role         string
	PasswordHash string
	Profile      map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconstructUser reconstructs a User from persistence
func ReconstructUser(p ReconstructUserParams) *User {
	return &User{
		id:           p.ID,
		username:     p.Username,
		email:        p.Email,
		firstName:    p.FirstName,
		lastName:     p.LastName,
		idNumber:     p.IDNumber,
		auth:         p.Auth,
		confirmed:    p.Confirmed,
		locale:       p.Locale,
		host:         p.Host,
		role:         authorization.ParseUserRole(p.Role),
		passwordHash: p.PasswordHash,
		profile:      p.Profile,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}
}

func (u *User) ID() uint                     { return u.id }
func (u *User) Username() string             { return u.username }
func (u *User) Email() string                { return u.email }
func (u *User) FirstName() string            { return u.firstName }
func (u *User) LastName() string             { return u.lastName }
func (u *User) IDNumber() string             { return u.idNumber }
func (u *User) Auth() string                 { return u.auth }
func (u *User) Confirmed() bool              { return u.confirmed }
func (u *User) Locale() string               { return u.locale }
func (u *User) Host() string                 { return u.host }
func (u *User) Role() authorization.UserRole { return u.role }
func (u *User) PasswordHash() string         { return u.passwordHash }
func (u *User) Profile() map[string]string   { return u.profile }
func (u *User) CreatedAt() time.Time         { return u.createdAt }
func (u *User) UpdatedAt() time.Time         { return u.updatedAt }

// SetID sets the user ID (only for persistence layer use)
func (u *User) SetID(id uint) {
	u.id = id
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

// ApplyRoster overwrites identity fields that differ from the roster row and
// returns the names of the changed fields. Blank roster values are ignored.
func (u *User) ApplyRoster(fields RosterFields) []string {
	f := fields.normalized()
	var changed []string
	set := func(name string, dst *string, value string) {
		if value == "" || *dst == value {
			return
		}
		*dst = value
		changed = append(changed, name)
	}
	set("email", &u.email, f.Email)
	set("firstname", &u.firstName, f.FirstName)
	set("lastname", &u.lastName, f.LastName)
	set("username", &u.username, f.Username)
	set("idnumber", &u.idNumber, f.IDNumber)

	if len(changed) > 0 {
		u.updatedAt = biztime.NowUTC()
	}
	return changed
}

// MergeProfile copies extra roster columns into the profile. It reports
// whether anything changed.
func (u *User) MergeProfile(extra map[string]string) bool {
	changed := false
	for k, v := range extra {
		if v == "" {
			continue
		}
		if u.profile == nil {
			u.profile = make(map[string]string, len(extra))
		}
		if u.profile[k] != v {
			u.profile[k] = v
			changed = true
		}
	}
	if changed {
		u.updatedAt = biztime.NowUTC()
	}
	return changed
}

// IsDistributor reports whether the user may receive distributor mail.
func (u *User) IsDistributor() bool {
	return u.role == authorization.RoleDistributor || u.role == authorization.RoleAdmin
}
