package salary

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalizeInput(t *testing.T) {
	got, err := normalize(Input{
		JobTitle:        "  Backend   Engineer ",
		Location:        "Jakarta",
		ExperienceYears: 3,
		Skills:          []string{"Go", " go ", "PostgreSQL", ""},
		Currency:        "idr",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.JobTitle != "Backend Engineer" || got.Currency != "IDR" {
		t.Fatalf("unexpected normalized input: %+v", got)
	}
	if !reflect.DeepEqual(got.Skills, []string{"Go", "PostgreSQL"}) {
		t.Fatalf("skills = %v", got.Skills)
	}

	defaulted, err := normalize(Input{JobTitle: "Nurse", Location: "Bandung"})
	if err != nil || defaulted.Currency != DefaultCurrency {
		t.Fatalf("expected default currency, got %+v err=%v", defaulted, err)
	}
}

func TestNormalizeInputValidation(t *testing.T) {
	_, err := normalize(Input{Location: "  ", ExperienceYears: 51, Currency: "RP"})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, is := range verr.Issues {
		fields[is.Field] = true
	}
	for _, f := range []string{"jobTitle", "location", "experienceYears", "currency"} {
		if !fields[f] {
			t.Fatalf("expected issue for %s, got %+v", f, verr.Issues)
		}
	}
}

func TestCacheKeyIgnoresSkillOrderAndCase(t *testing.T) {
	a, _ := normalize(Input{JobTitle: "Data Analyst", Location: "Jakarta", Skills: []string{"SQL", "Python"}})
	b, _ := normalize(Input{JobTitle: "data analyst", Location: "JAKARTA", Skills: []string{"python", "sql"}})
	if !reflect.DeepEqual(cacheParts(a), cacheParts(b)) {
		t.Fatalf("cache parts differ: %v vs %v", cacheParts(a), cacheParts(b))
	}
	c, _ := normalize(Input{JobTitle: "Data Analyst", Location: "Jakarta", ExperienceYears: 5, Skills: []string{"SQL", "Python"}})
	if reflect.DeepEqual(cacheParts(a), cacheParts(c)) {
		t.Fatalf("experience must change the cache identity")
	}
}

func TestRetrievalQuery(t *testing.T) {
	q := retrievalQuery(Input{JobTitle: "Backend Engineer", Location: "Jakarta", Industry: "Fintech", ExperienceYears: 4, Skills: []string{"Go", "Kafka"}})
	want := "salary Backend Engineer Jakarta Fintech 4 years experience Go Kafka"
	if q != want {
		t.Fatalf("retrievalQuery = %q, want %q", q, want)
	}
}
