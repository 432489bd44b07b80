package user

import (
	"database/sql"
	"fmt"
)

const (
	getByIDQuery = `
		SELECT user_id, email, password, full_name, phone, created_at
		FROM users
		WHERE user_id = $1`

	getByEmailQuery = `
		SELECT user_id, email, password, full_name, phone, created_at
		FROM users
		WHERE email = $1`

	createQuery = `
		INSERT INTO users (email, password, full_name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id`

	updateQuery = `
		UPDATE users
		SET full_name = $2,
		    phone = $3,
		    email = CASE WHEN $4 <> '' THEN $4 ELSE email END,
		    password = CASE WHEN $5 <> '' THEN $5 ELSE password END
		WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	return r.scanOne(r.db.QueryRow(getByIDQuery, id))
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return r.scanOne(r.db.QueryRow(getByEmailQuery, email))
}

func (r *PostgresRepository) Create(user User) (User, error) {
	err := r.db.QueryRow(createQuery,
		user.Email, user.Password, user.FullName, user.Phone, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Update(id int, userUpdate User) (User, error) {
	res, err := r.db.Exec(updateQuery,
		id, userUpdate.FullName, userUpdate.Phone, userUpdate.Email, userUpdate.Password)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (User, error) {
	var u User
	var fullName, phone, createdAt sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Password, &fullName, &phone, &createdAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.FullName = fullName.String
	u.Phone = phone.String
	u.CreatedAt = createdAt.String
	return u, nil
}

var _ Repository = (*PostgresRepository)(nil)
