package users

import "time"

// Profile is the self-described part of a user record.
type Profile struct {
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	Headline        string   `json:"headline"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experienceYears"`
}

// User is a signed-in account. Identity fields come from the OAuth provider.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileInput is the body of a profile update; it replaces every field.
type ProfileInput struct {
	Phone           string   `json:"phone" validate:"omitempty,phone"`
	Location        string   `json:"location" validate:"max=100"`
	Headline        string   `json:"headline" validate:"max=120"`
	Bio             string   `json:"bio" validate:"max=2000"`
	Skills          []string `json:"skills" validate:"max=50,dive,max=60"`
	ExperienceYears int      `json:"experienceYears" validate:"min=0,max=60"`
}
