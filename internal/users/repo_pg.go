package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, picture, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  picture = EXCLUDED.picture,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Email),
		nullableString(user.Name),
		nullableString(user.Picture),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, name, picture, phone, location, headline, bio, skills, experience_years, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var (
		user                           User
		email, name, picture           sql.NullString
		phone, location, headline, bio sql.NullString
		skills                         []byte
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&email,
		&name,
		&picture,
		&phone,
		&location,
		&headline,
		&bio,
		&skills,
		&user.ExperienceYears,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Email = email.String
	user.Name = name.String
	user.Picture = picture.String
	user.Phone = phone.String
	user.Location = location.String
	user.Headline = headline.String
	user.Bio = bio.String
	user.Skills = []string{}
	if len(skills) > 0 {
		if err := json.Unmarshal(skills, &user.Skills); err != nil {
			return User{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	return user, nil
}

func (r *PGRepo) UpdateProfile(ctx context.Context, userID string, p Profile, at time.Time) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	const query = `
UPDATE users
SET phone = $2, location = $3, headline = $4, bio = $5, skills = $6::jsonb, experience_years = $7, updated_at = $8
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		userID,
		nullableString(p.Phone),
		nullableString(p.Location),
		nullableString(p.Headline),
		nullableString(p.Bio),
		string(raw),
		p.ExperienceYears,
		at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
