package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/telemetry"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// International E.164 or an Indonesian local number with a leading zero.
	phonePattern = regexp.MustCompile(`^(\+[1-9][0-9]{7,14}|0[0-9]{8,13})$`)
	validate     = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

type Service struct {
	Repo      Repo
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{
		Repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpsertFromAuth records the identity from a Google sign-in so history and
// usage stay attached to one stable ID.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile sanitizes free text, validates the result and replaces the profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (User, error) {
	in = s.clean(in)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return User{}, fmt.Errorf("%w: %s failed %s", ErrInvalidInput, jsonField(verrs[0].StructField()), verrs[0].Tag())
		}
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p := Profile{
		Phone:           in.Phone,
		Location:        in.Location,
		Headline:        in.Headline,
		Bio:             in.Bio,
		Skills:          in.Skills,
		ExperienceYears: in.ExperienceYears,
	}
	if err := s.Repo.UpdateProfile(ctx, userID, p, s.now()); err != nil {
		return User{}, err
	}
	telemetry.Info("user.profile_updated", map[string]any{"user_id": userID, "skills": len(p.Skills)})
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) clean(in ProfileInput) ProfileInput {
	out := ProfileInput{
		Phone:           strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(in.Phone)),
		Location:        s.text(in.Location),
		Headline:        s.text(in.Headline),
		Bio:             strings.TrimSpace(s.sanitizer.Sanitize(in.Bio)),
		ExperienceYears: in.ExperienceYears,
		Skills:          []string{},
	}
	seen := make(map[string]bool, len(in.Skills))
	for _, skill := range in.Skills {
		skill = s.text(skill)
		key := strings.ToLower(skill)
		if skill == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Skills = append(out.Skills, skill)
	}
	return out
}

// text sanitizes a single-line field and collapses whitespace.
func (s *Service) text(raw string) string {
	return strings.Join(strings.Fields(s.sanitizer.Sanitize(raw)), " ")
}

func jsonField(name string) string {
	switch name {
	case "ExperienceYears":
		return "experienceYears"
	default:
		return strings.ToLower(name[:1]) + name[1:]
	}
}
