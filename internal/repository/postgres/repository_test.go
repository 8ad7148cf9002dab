package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock
}

func TestPatientGet_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPatientRepository(db)
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "file_number", "first_name", "last_name", "gender",
		"parental_consanguinity", "created_at", "updated_at",
	}).AddRow(id, "F-1001", "Ada", "Yilmaz", "female", true, now, now)

	mock.ExpectQuery(`SELECT \* FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)

	patient, err := repo.Get(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, patient.ID)
	assert.Equal(t, "F-1001", patient.FileNumber)
	assert.Equal(t, model.GenderFemale, patient.Gender)
	assert.True(t, patient.ParentalConsanguinity)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientGet_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPatientRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), id)

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientDelete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPatientRepository(db)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM patients WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainingSampleDelete_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewTrainingSampleRepository(db)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM training_samples WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLabCreateBatch_InsertsAllColumns(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewLabResultRepository(db)
	patientID := uuid.New()
	testDate := time.Now()

	results := []*model.LabResult{
		{PatientID: patientID, TestName: model.AssayIgG, Value: 450, Unit: "mg/dL", TestDate: testDate},
		{PatientID: patientID, TestName: model.AssayIgA, Value: 40, Unit: "mg/dL", TestDate: testDate},
	}

	// one statement, eight columns per row so SELECT * scans cleanly
	mock.ExpectExec(`INSERT INTO lab_results \(id, patient_id, test_name, value, unit, test_date, created_at, updated_at\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.CreateBatch(context.Background(), results))
	for _, res := range results {
		assert.NotEqual(t, uuid.Nil, res.ID)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_AssignsID(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewUserRepository(db)
	user := &model.User{
		Email:        "doctor@clinic.example",
		Username:     "doctor1",
		PasswordHash: "hash",
		Role:         model.RoleDoctor,
		IsActive:     true,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkRead(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewNotificationRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE notifications SET read = true`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenCreate_ReplacesExisting(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewResetTokenRepository(NewBaseRepository(db))
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM password_reset_tokens WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO password_reset_tokens`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	token := &model.PasswordResetToken{
		UserID:    userID,
		Code:      "482913",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), token))
	assert.NotEqual(t, uuid.Nil, token.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetTokenRedeem_SingleUse(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewResetTokenRepository(NewBaseRepository(db))
	userID := uuid.New()

	mock.ExpectExec(`UPDATE password_reset_tokens`).
		WithArgs(userID, "482913").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE password_reset_tokens`).
		WithArgs(userID, "482913").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Redeem(context.Background(), userID, "482913"))

	err := repo.Redeem(context.Background(), userID, "482913")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid or expired")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRowCount_QuotesIdentifier(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewAdminRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "patients"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.RowCount(context.Background(), "patients")

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
