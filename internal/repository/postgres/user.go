package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/logger"

	"github.com/doug-martin/goqu/v9"
)

const userColumns = `id, email, COALESCE(name, ''), created_at, updated_at`

type userRepository struct {
	db      *sql.DB
	t       tables
	dialect goqu.DialectWrapper

	insertQuery     string
	selectByIDQuery string
	listQuery       string
	deleteQuery     string
}

func newUserRepository(db *sql.DB, t tables) *userRepository {
	return &userRepository{
		db:              db,
		t:               t,
		dialect:         goqu.Dialect("postgres"),
		insertQuery:     fmt.Sprintf(`INSERT INTO %s (name, email) VALUES ($1, $2) RETURNING %s`, t.user, userColumns),
		selectByIDQuery: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, t.user),
		listQuery:       fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, userColumns, t.user),
		deleteQuery:     fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, t.user, userColumns),
	}
}

func scanUser(row rowScanner, u *domain.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.EnterMethod(ctx, "userRepository.Create", "email", u.Email)

	u.Email = strings.ToLower(u.Email)
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return scanUser(tx.QueryRowContext(ctx, r.insertQuery, u.Name, u.Email), u)
	})
	if err != nil {
		err = translateError("create user", err)
		logger.ExitMethodWithError(ctx, "userRepository.Create", err, "email", u.Email)
		return err
	}

	logger.ExitMethod(ctx, "userRepository.Create", "userID", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, r.selectByIDQuery, id), u); err != nil {
		return nil, translateError(fmt.Sprintf("get user %d", id), err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, r.listQuery)
	if err != nil {
		return nil, translateError("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, translateError("list users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list users", err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, id int32, upd domain.UserUpdate) (*domain.User, error) {
	logger.EnterMethod(ctx, "userRepository.Update", "userID", id)

	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	if upd.Name != nil {
		rec["name"] = *upd.Name
	}
	if upd.Email != nil {
		rec["email"] = strings.ToLower(*upd.Email)
	}

	query, args, err := r.dialect.
		Update(goqu.S(r.t.schema).Table("user")).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		Returning(goqu.C("id"), goqu.C("email"), goqu.COALESCE(goqu.C("name"), ""), goqu.C("created_at"), goqu.C("updated_at")).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user update: %w", err)
	}

	u := &domain.User{}
	err = inTx(ctx, r.db, func(tx *sql.Tx) error {
		logger.DatabaseCall(ctx, "update_user", query, "userID", id)
		return scanUser(tx.QueryRowContext(ctx, query, args...), u)
	})
	if err != nil {
		err = translateError(fmt.Sprintf("update user %d", id), err)
		logger.ExitMethodWithError(ctx, "userRepository.Update", err, "userID", id)
		return nil, err
	}

	logger.ExitMethod(ctx, "userRepository.Update", "userID", id)
	return u, nil
}

func (r *userRepository) Delete(ctx context.Context, id int32) (*domain.User, error) {
	logger.EnterMethod(ctx, "userRepository.Delete", "userID", id)

	u := &domain.User{}
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		return scanUser(tx.QueryRowContext(ctx, r.deleteQuery, id), u)
	})
	if err != nil {
		err = translateError(fmt.Sprintf("delete user %d", id), err)
		logger.ExitMethodWithError(ctx, "userRepository.Delete", err, "userID", id)
		return nil, err
	}

	logger.ExitMethod(ctx, "userRepository.Delete", "userID", id)
	return u, nil
}
