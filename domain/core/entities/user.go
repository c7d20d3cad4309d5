package entities

import (
	"time"

	pkgerrors "hackmate-backend/pkg/errors"
)

// TeamStatus represents whether a user is looking for a team
type TeamStatus string

const (
	TeamStatusLooking    TeamStatus = "looking_for_team"
	TeamStatusInTeam     TeamStatus = "in_team"
	TeamStatusNotLooking TeamStatus = "not_looking"
)

// ExperienceLevel represents a user's self-reported experience
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Profile holds the editable profile attributes of a user.
// Skills is free text (comma separated), matching the onboarding form.
type Profile struct {
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	Skills   string `json:"skills,omitempty"`
	College  string `json:"college,omitempty"`
	Course   string `json:"course,omitempty"`
	Branch   string `json:"branch,omitempty"`
	Semester string `json:"semester,omitempty"`
	Role     string `json:"role,omitempty"`
	LinkedIn string `json:"linkedIn,omitempty"`
	GitHub   string `json:"github,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// TeamPreferences holds the team-matching attributes of a user
type TeamPreferences struct {
	TeamStatus               TeamStatus      `json:"teamStatus,omitempty"`
	ExperienceLevel          ExperienceLevel `json:"experienceLevel,omitempty"`
	ProjectInterests         []string        `json:"projectInterests,omitempty"`
	HackathonInterests       []string        `json:"hackathonInterests,omitempty"`
	PreferredTeamSize        string          `json:"preferredTeamSize,omitempty"`
	AvailabilityPreference   string          `json:"availabilityPreference,omitempty"`
	CommunicationPreferences []string        `json:"communicationPreferences,omitempty"`
}

// User is a student profile. The id is the identity provider's subject and is
// immutable; a stub record is created on first sign-in and completed during
// onboarding. Users are never deleted in-app.
type User struct {
	id                  string
	email               string
	profile             Profile
	preferences         TeamPreferences
	onboardingCompleted bool
	createdAt           time.Time
	updatedAt           time.Time
}

// NewUserStub creates the record written on first sign-in, carrying only
// what the identity provider supplies.
func NewUserStub(id, email, name, photoURL string) (*User, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("user id cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		id:    id,
		email: email,
		profile: Profile{
			Name:     name,
			PhotoURL: photoURL,
		},
		onboardingCompleted: false,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructUser rebuilds a user from repository data
func ReconstructUser(
	id, email string,
	profile Profile,
	preferences TeamPreferences,
	onboardingCompleted bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:                  id,
		email:               email,
		profile:             profile,
		preferences:         preferences,
		onboardingCompleted: onboardingCompleted,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

func (u *User) ID() string                    { return u.id }
func (u *User) Email() string                 { return u.email }
func (u *User) Profile() Profile              { return u.profile }
func (u *User) Preferences() TeamPreferences  { return u.preferences }
func (u *User) OnboardingCompleted() bool     { return u.onboardingCompleted }
func (u *User) CreatedAt() time.Time          { return u.createdAt }
func (u *User) UpdatedAt() time.Time          { return u.updatedAt }

// UpdateProfile applies an onboarding or profile edit. Completing the profile
// marks onboarding done; there is no way back to the stub state.
func (u *User) UpdateProfile(profile Profile, preferences TeamPreferences) error {
	if profile.Name == "" {
		return pkgerrors.NewValidationError("name cannot be empty")
	}
	if err := validateTeamStatus(preferences.TeamStatus); err != nil {
		return err
	}
	if err := validateExperienceLevel(preferences.ExperienceLevel); err != nil {
		return err
	}

	u.profile = profile
	u.preferences = preferences
	u.onboardingCompleted = true
	u.updatedAt = time.Now().UTC()
	return nil
}

// SetPhotoURL records a freshly uploaded profile photo
func (u *User) SetPhotoURL(url string) {
	u.profile.PhotoURL = url
	u.updatedAt = time.Now().UTC()
}

func validateTeamStatus(s TeamStatus) error {
	switch s {
	case "", TeamStatusLooking, TeamStatusInTeam, TeamStatusNotLooking:
		return nil
	}
	return pkgerrors.NewValidationError("invalid team status")
}

func validateExperienceLevel(l ExperienceLevel) error {
	switch l {
	case "", ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return nil
	}
	return pkgerrors.NewValidationError("invalid experience level")
}
