package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Subscription string

const (
	SubscriptionFree    Subscription = "free"
	SubscriptionPremium Subscription = "premium"
	SubscriptionFamily  Subscription = "family"
)

type Language string

const (
	LanguageNorwegian Language = "nb"
	LanguageEnglish   Language = "en"
)

type AudioQuality string

const (
	AudioQualityStandard AudioQuality = "standard"
	AudioQualityHigh     AudioQuality = "high"
)

type PermissionType string

const (
	PermissionView     PermissionType = "view"
	PermissionListen   PermissionType = "listen"
	PermissionDownload PermissionType = "download"
	PermissionComment  PermissionType = "comment"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

var (
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrMemberNotFound    = errors.New("family member not found")
	ErrInviteAnswered    = errors.New("invite already answered")
	ErrInvalidPermission = errors.New("invalid permission")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Preferences holds the per-user client settings.
type Preferences struct {
	Language      Language     `json:"language"`
	Notifications bool         `json:"notifications"`
	AutoSave      bool         `json:"autoSave"`
	AudioQuality  AudioQuality `json:"audioQuality"`
}

// FamilyMember is someone a user has invited to listen to their stories.
type FamilyMember struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Relationship string           `json:"relationship"`
	Permissions  []PermissionType `json:"permissions"`
	InviteStatus InviteStatus     `json:"inviteStatus"`
	InvitedAt    time.Time        `json:"invitedAt"`
}

// User is the profile record of a storyteller.
type User struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Subscription  Subscription   `json:"subscription"`
	Preferences   Preferences    `json:"preferences"`
	FamilyMembers []FamilyMember `json:"familyMembers"`
	VoiceID       string         `json:"voiceId,omitempty"`
}

// ProfileUpdate carries the fields a user may change about themselves.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string       `json:"name,omitempty"`
	Avatar       *string       `json:"avatar,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
	Preferences  *Preferences  `json:"preferences,omitempty"`
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// NameFromEmail returns the local part of an email address.
func NameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

func DefaultPreferences() Preferences {
	return Preferences{
		Language:      LanguageNorwegian,
		Notifications: true,
		AutoSave:      true,
		AudioQuality:  AudioQualityStandard,
	}
}

// NewUser creates a free account for a first-time email sign in.
func NewUser(email string, now time.Time) *User {
	return &User{
		ID:            uuid.NewString(),
		Email:         email,
		Name:          NameFromEmail(email),
		CreatedAt:     now.UTC(),
		Subscription:  SubscriptionFree,
		Preferences:   DefaultPreferences(),
		FamilyMembers: []FamilyMember{},
	}
}

// ApplyProfile merges update into the user. Identity fields are never touched.
func (u *User) ApplyProfile(update ProfileUpdate) error {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		u.Name = name
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	if update.Subscription != nil {
		switch *update.Subscription {
		case SubscriptionFree, SubscriptionPremium, SubscriptionFamily:
			u.Subscription = *update.Subscription
		default:
			return fmt.Errorf("unknown subscription %q", *update.Subscription)
		}
	}
	if update.Preferences != nil {
		p := *update.Preferences
		if p.Language != LanguageNorwegian && p.Language != LanguageEnglish {
			return fmt.Errorf("unknown language %q", p.Language)
		}
		if p.AudioQuality != AudioQualityStandard && p.AudioQuality != AudioQualityHigh {
			return fmt.Errorf("unknown audio quality %q", p.AudioQuality)
		}
		u.Preferences = p
	}
	return nil
}

func ParsePermissions(values []string) ([]PermissionType, error) {
	perms := make([]PermissionType, 0, len(values))
	for _, v := range values {
		p := PermissionType(strings.TrimSpace(v))
		switch p {
		case PermissionView, PermissionListen, PermissionDownload, PermissionComment:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidPermission, v)
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// NewFamilyMember builds a pending invite.
func NewFamilyMember(email, relationship string, permissions []PermissionType, now time.Time) (FamilyMember, error) {
	if err := ValidateEmail(email); err != nil {
		return FamilyMember{}, err
	}
	for _, p := range permissions {
		if _, err := ParsePermissions([]string{string(p)}); err != nil {
			return FamilyMember{}, err
		}
	}
	if permissions == nil {
		permissions = []PermissionType{}
	}
	return FamilyMember{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         NameFromEmail(email),
		Relationship: relationship,
		Permissions:  permissions,
		InviteStatus: InvitePending,
		InvitedAt:    now.UTC(),
	}, nil
}

func (u *User) AddFamilyMember(m FamilyMember) {
	u.FamilyMembers = append(u.FamilyMembers, m)
}

func (u *User) FamilyMember(id string) (*FamilyMember, bool) {
	for i := range u.FamilyMembers {
		if u.FamilyMembers[i].ID == id {
			return &u.FamilyMembers[i], true
		}
	}
	return nil, false
}

// RespondToInvite moves a pending invite to accepted or declined.
func (u *User) RespondToInvite(memberID string, accept bool) (*FamilyMember, error) {
	m, ok := u.FamilyMember(memberID)
	if !ok {
		return nil, ErrMemberNotFound
	}
	if m.InviteStatus != InvitePending {
		return nil, ErrInviteAnswered
	}
	if accept {
		m.InviteStatus = InviteAccepted
	} else {
		m.InviteStatus = InviteDeclined
	}
	return m, nil
}

func (u *User) RemoveFamilyMember(memberID string) error {
	for i := range u.FamilyMembers {
		if u.FamilyMembers[i].ID == memberID {
			u.FamilyMembers = append(u.FamilyMembers[:i], u.FamilyMembers[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

func (u *User) PendingInvites() int {
	n := 0
	for _, m := range u.FamilyMembers {
		if m.InviteStatus == InvitePending {
			n++
		}
	}
	return n
}

// HasPermission reports whether an accepted family member with the given
// email holds perm.
func (u *User) HasPermission(email string, perm PermissionType) bool {
	for _, m := range u.FamilyMembers {
		if !strings.EqualFold(m.Email, email) || m.InviteStatus != InviteAccepted {
			continue
		}
		for _, p := range m.Permissions {
			if p == perm {
				return true
			}
		}
	}
	return false
}
