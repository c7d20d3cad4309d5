package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserStub(t *testing.T) {
	user, err := NewUserStub("uid-1", "a@example.com", "Ada", "https://img/a.png")
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.ID())
	assert.Equal(t, "Ada", user.Profile().Name)
	assert.Equal(t, "https://img/a.png", user.Profile().PhotoURL)
	assert.False(t, user.OnboardingCompleted())
}

func TestNewUserStub_RequiresID(t *testing.T) {
	_, err := NewUserStub("", "a@example.com", "Ada", "")
	assert.Error(t, err)
}

func TestUpdateProfile_CompletesOnboarding(t *testing.T) {
	user, err := NewUserStub("uid-1", "a@example.com", "Ada", "")
	require.NoError(t, err)

	err = user.UpdateProfile(
		Profile{Name: "Ada Lovelace", College: "IIT Delhi", Skills: "go, ml"},
		TeamPreferences{TeamStatus: TeamStatusLooking, ExperienceLevel: ExperienceAdvanced},
	)
	require.NoError(t, err)

	assert.True(t, user.OnboardingCompleted())
	assert.Equal(t, "Ada Lovelace", user.Profile().Name)
	assert.Equal(t, TeamStatusLooking, user.Preferences().TeamStatus)
}

func TestUpdateProfile_Validation(t *testing.T) {
	user, err := NewUserStub("uid-1", "a@example.com", "Ada", "")
	require.NoError(t, err)

	err = user.UpdateProfile(Profile{}, TeamPreferences{TeamStatus: TeamStatusLooking, ExperienceLevel: ExperienceBeginner})
	assert.Error(t, err, "name is required")

	err = user.UpdateProfile(Profile{Name: "Ada"}, TeamPreferences{TeamStatus: "forming", ExperienceLevel: ExperienceBeginner})
	assert.Error(t, err, "unknown team status")

	err = user.UpdateProfile(Profile{Name: "Ada"}, TeamPreferences{TeamStatus: TeamStatusInTeam, ExperienceLevel: "expert"})
	assert.Error(t, err, "unknown experience level")

	assert.False(t, user.OnboardingCompleted())
}

func TestSetPhotoURL(t *testing.T) {
	user, err := NewUserStub("uid-1", "a@example.com", "Ada", "")
	require.NoError(t, err)

	user.SetPhotoURL("https://photos/uid-1")
	assert.Equal(t, "https://photos/uid-1", user.Profile().PhotoURL)
	assert.False(t, user.OnboardingCompleted(), "photo upload alone does not complete onboarding")
}
