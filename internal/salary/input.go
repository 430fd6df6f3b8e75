package salary

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize trims and collapses whitespace, upper-cases the currency and
// de-duplicates skills case-insensitively, then validates the result.
func normalize(in Input) (Input, error) {
	out := Input{
		JobTitle:        collapse(in.JobTitle),
		Location:        collapse(in.Location),
		ExperienceYears: in.ExperienceYears,
		Industry:        collapse(in.Industry),
		Education:       collapse(in.Education),
		Currency:        strings.ToUpper(strings.TrimSpace(in.Currency)),
	}
	if out.Currency == "" {
		out.Currency = DefaultCurrency
	}
	seen := make(map[string]bool, len(in.Skills))
	for _, s := range in.Skills {
		s = collapse(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Skills = append(out.Skills, s)
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]FieldIssue, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, FieldIssue{Field: jsonField(fe.StructField()), Issue: fe.Tag()})
			}
			return Input{}, &ValidationError{Issues: issues}
		}
		return Input{}, err
	}
	return out, nil
}

// cacheParts is the order-insensitive identity of a normalized input.
func cacheParts(in Input) []string {
	skills := make([]string, len(in.Skills))
	for i, s := range in.Skills {
		skills[i] = strings.ToLower(s)
	}
	sort.Strings(skills)
	return []string{
		strings.ToLower(in.JobTitle),
		strings.ToLower(in.Location),
		strconv.Itoa(in.ExperienceYears),
		strings.ToLower(in.Industry),
		strings.ToLower(in.Education),
		strings.Join(skills, ","),
		in.Currency,
	}
}

// retrievalQuery phrases the input the way salary guides are written.
func retrievalQuery(in Input) string {
	parts := []string{"salary", in.JobTitle, in.Location}
	if in.Industry != "" {
		parts = append(parts, in.Industry)
	}
	parts = append(parts, strconv.Itoa(in.ExperienceYears)+" years experience")
	if len(in.Skills) > 0 {
		parts = append(parts, strings.Join(in.Skills, " "))
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func jsonField(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}
