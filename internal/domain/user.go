package domain

import (
	"encoding/json"
	"time"
)

// Gender values accepted on a profile. The zero value means unset.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// IsValidGender reports whether g is empty or one of the accepted values.
func IsValidGender(g string) bool {
	return g == "" || g == GenderMale || g == GenderFemale
}

// User is a registered account together with its public profile.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Profile        string     `json:"profile"`
	Bio            string     `json:"bio"`
	Gender         string     `json:"gender,omitempty"`
	DOB            *time.Time `json:"dob,omitempty"`
	FollowersCount int        `json:"followers_count"`
	FollowingCount int        `json:"following_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Reset state is persisted with the row and never serialized.
	ResetPasswordToken   string     `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
}

// AgeAt returns full years between DOB and now, or 0 when DOB is unset.
func (u *User) AgeAt(now time.Time) int {
	if u.DOB == nil {
		return 0
	}
	dob := u.DOB.UTC()
	now = now.UTC()

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return max(age, 0)
}

// Age is AgeAt(time.Now()).
func (u *User) Age() int {
	return u.AgeAt(time.Now())
}

// MarshalJSON adds the derived age to the encoded user.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		Age int `json:"age"`
	}{plain: plain(u), Age: u.Age()})
}

// UpdateProfileParams carries the optional fields of a profile update. Nil
// fields are left unchanged.
type UpdateProfileParams struct {
	Username *string
	Email    *string
	Bio      *string
	Profile  *string
	Gender   *string
	DOB      *time.Time
}

// Empty reports whether no field would change.
func (p UpdateProfileParams) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Bio == nil &&
		p.Profile == nil && p.Gender == nil && p.DOB == nil
}
