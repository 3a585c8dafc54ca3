package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
)

func TestCompanyRepository_Insert(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			assert.Equal(t, []any{"acme", "sales@acme.io", "$2a$hash"}, args)
			return valuesRow(int64(7), testNow)
		},
	}
	company := &model.Company{Name: "acme", Email: "sales@acme.io", Password: "$2a$hash"}

	err := NewCompanyRepositoryWithPool(mock).Insert(context.Background(), company)

	require.NoError(t, err)
	assert.Equal(t, int64(7), company.ID)
}

func TestCompanyRepository_Insert_Duplicate(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(uniqueViolation()) },
	}

	err := NewCompanyRepositoryWithPool(mock).Insert(context.Background(), &model.Company{Name: "acme"})

	assert.ErrorIs(t, err, service.ErrCompanyExists)
}

func TestCompanyRepository_GetByEmail(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			if args[0] == "sales@acme.io" {
				return valuesRow(int64(7), "acme", "sales@acme.io", "$2a$hash", testNow)
			}
			return errRow(pgx.ErrNoRows)
		},
	}
	repo := NewCompanyRepositoryWithPool(mock)

	company, err := repo.GetByEmail(context.Background(), "sales@acme.io")
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "acme", company.Name)
	assert.Equal(t, "$2a$hash", company.Password)

	company, err = repo.GetByEmail(context.Background(), "ghost@acme.io")
	require.NoError(t, err)
	assert.Nil(t, company)
}

func TestCompanyRepository_GetByID_DatabaseError(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(dbErr) },
	}

	company, err := NewCompanyRepositoryWithPool(mock).GetByID(context.Background(), 7)

	assert.Nil(t, company)
	assert.ErrorIs(t, err, dbErr)
}

func TestCompanyRepository_ExistsChecks(t *testing.T) {
	var capturedSQL []string
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = append(capturedSQL, sql)
			return valuesRow(false)
		},
	}
	repo := NewCompanyRepositoryWithPool(mock)

	exists, err := repo.ExistsByNameOrEmail(context.Background(), "acme", "sales@acme.io")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmailExcluding(context.Background(), "sales@acme.io", 7)
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, capturedSQL, 2)
	assert.Contains(t, capturedSQL[0], "name = $1 OR email = $2")
	assert.Contains(t, capturedSQL[1], "id <> $2")
}

func TestCompanyRepository_Update_KeepsName(t *testing.T) {
	var capturedSQL string
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}

	err := NewCompanyRepositoryWithPool(mock).Update(context.Background(), &model.Company{ID: 7, Name: "renamed", Email: "x@acme.io"})

	require.NoError(t, err)
	assert.NotContains(t, capturedSQL, "name")
}

func TestCompanyRepository_Update_NotFound(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		},
	}

	err := NewCompanyRepositoryWithPool(mock).Update(context.Background(), &model.Company{ID: 99})

	assert.ErrorIs(t, err, service.ErrCompanyNotFound)
}

func TestCompanyRepository_DeleteAndList(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, sql, "ORDER BY id")
			return &mockRows{data: [][]any{
				{int64(1), "acme", "a@acme.io", "h1", testNow},
				{int64(2), "globex", "g@globex.io", "h2", testNow},
			}}, nil
		},
	}
	repo := NewCompanyRepositoryWithPool(mock)

	deleted, err := repo.Delete(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, deleted)

	companies, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "globex", companies[1].Name)
}

func TestCustomerRepository_Insert_Duplicate(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(uniqueViolation()) },
	}

	err := NewCustomerRepositoryWithPool(mock).Insert(context.Background(), &model.Customer{Email: "dana@example.com"})

	assert.ErrorIs(t, err, service.ErrCustomerExists)
}

func TestCustomerRepository_GetByEmail(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return valuesRow(int64(42), "dana", "levi", "dana@example.com", "$2a$hash", testNow)
		},
	}

	customer, err := NewCustomerRepositoryWithPool(mock).GetByEmail(context.Background(), "dana@example.com")

	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "dana levi", customer.FullName())
}

func TestCustomerRepository_GetByID_NotFound(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(pgx.ErrNoRows) },
	}

	customer, err := NewCustomerRepositoryWithPool(mock).GetByID(context.Background(), 42)

	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestCustomerRepository_Update(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		err     error
		wantErr error
	}{
		{"success", "UPDATE 1", nil, nil},
		{"not found", "UPDATE 0", nil, service.ErrCustomerNotFound},
		{"email taken", "", uniqueViolation(), service.ErrCustomerExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPool{
				execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
					return pgconn.NewCommandTag(tt.tag), tt.err
				},
			}
			err := NewCustomerRepositoryWithPool(mock).Update(context.Background(), &model.Customer{ID: 42})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCustomerRepository_List_Empty(t *testing.T) {
	customers, err := NewCustomerRepositoryWithPool(&mockPool{}).List(context.Background())

	require.NoError(t, err)
	require.NotNil(t, customers)
	assert.Len(t, customers, 0)
}

func TestCustomerRepository_Delete(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}

	deleted, err := NewCustomerRepositoryWithPool(mock).Delete(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, deleted)
}
