package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/sentinel"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "primary key violation", err: mssql.Error{Number: 2627}, want: true},
		{name: "unique index violation", err: mssql.Error{Number: 2601}, want: true},
		{name: "wrapped duplicate", err: fmt.Errorf("exec: %w", mssql.Error{Number: 2627}), want: true},
		{name: "foreign key violation", err: mssql.Error{Number: 547}, want: false},
		{name: "plain error", err: errors.New("connection reset"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

func TestSQLServerInsertMapsDriverErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "duplicate wallet", err: mssql.Error{Number: 2627, Message: "Violation of PRIMARY KEY constraint"}, wantErr: sentinel.ErrAlreadyUsed},
		{name: "duplicate via unique index", err: mssql.Error{Number: 2601}, wantErr: sentinel.ErrAlreadyUsed},
		{name: "constraint failure", err: mssql.Error{Number: 547}, wantErr: sentinel.ErrUnavailable},
		{name: "network failure", err: errors.New("read tcp: i/o timeout"), wantErr: sentinel.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := sql.OpenDB(failingConnector{err: tt.err})
			t.Cleanup(func() { _ = db.Close() })

			err := NewSQLServer(db).Insert(context.Background(), &models.Record{
				WalletAddress: "0xabc",
				Name:          "Alice",
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr == sentinel.ErrAlreadyUsed {
				assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
			}
		})
	}
}

// failingConnector is a database/sql connector whose every query fails with err.
type failingConnector struct{ err error }

func (c failingConnector) Connect(context.Context) (driver.Conn, error) { return failingConn(c), nil }
func (c failingConnector) Driver() driver.Driver                        { return nil }

type failingConn struct{ err error }

func (c failingConn) Prepare(string) (driver.Stmt, error) { return nil, c.err }
func (c failingConn) Close() error                        { return nil }
func (c failingConn) Begin() (driver.Tx, error)           { return nil, c.err }

func (c failingConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return nil, c.err
}
