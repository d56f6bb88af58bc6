package crm

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/crm-api/internal/contacts"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresCascader_DeletesInOneTransaction(t *testing.T) {
	mock := newMock(t)
	cascader := NewPostgresCascader(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM leads WHERE contact_id = \$1`).
		WithArgs("c-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("c-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	removed, err := cascader.DeleteContact(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCascader_MissingContactRollsBack(t *testing.T) {
	mock := newMock(t)
	cascader := NewPostgresCascader(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM leads WHERE contact_id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	_, err := cascader.DeleteContact(context.Background(), "missing")
	assert.ErrorIs(t, err, contacts.ErrContactNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCascader_LeadDeleteFailureRollsBack(t *testing.T) {
	mock := newMock(t)
	cascader := NewPostgresCascader(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM leads WHERE contact_id = \$1`).
		WithArgs("c-1").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := cascader.DeleteContact(context.Background(), "c-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, contacts.ErrContactNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCascader_BeginFailure(t *testing.T) {
	mock := newMock(t)
	cascader := NewPostgresCascader(mock)

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	_, err := cascader.DeleteContact(context.Background(), "c-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceUsesInjectedCascader(t *testing.T) {
	mock := newMock(t)
	f := newFixture(t)
	svc := NewService(f.contacts, f.leads, WithCascader(NewPostgresCascader(mock)), WithRecorder(f.recorder))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM leads`).WithArgs("c-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM contacts`).WithArgs("c-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteContact(context.Background(), "c-1"))
	assert.Equal(t, 1, f.recorder.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
