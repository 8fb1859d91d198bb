package repositories

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/migrations"
	"as-system/pkg/constants"
	"as-system/pkg/database/postgresql"
	"as-system/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД и применяет миграции. Если
// TEST_DATABASE_URL не задан, интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	testDbUrl := os.Getenv("TEST_DATABASE_URL")
	if testDbUrl == "" {
		os.Exit(m.Run())
	}

	var err error
	testPool, err = pgxpool.New(context.Background(), testDbUrl)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	defer testPool.Close()

	if err := postgresql.RunMigrations(testPool, migrations.FS); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	os.Exit(m.Run())
}

func requireTestDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

// cleanupTables очищает таблицы для обеспечения изоляции тестов.
func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE assignment_logs, requests, customer_products, customers, employees RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

// seedData создает сотрудников, клиента и изделие, необходимые для тестов.
func seedData(t *testing.T) (staffID, engineerID, customerID, productID int) {
	t.Helper()
	ctx := context.Background()

	err := testPool.QueryRow(ctx,
		`INSERT INTO employees (fio, login, password, role) VALUES ('Тестовый Приемщик', 'staff', 'x', 'STAFF') RETURNING id`).
		Scan(&staffID)
	require.NoError(t, err)

	err = testPool.QueryRow(ctx,
		`INSERT INTO employees (fio, login, password, role) VALUES ('Тестовый Инженер', 'engineer', 'x', 'ENGINEER') RETURNING id`).
		Scan(&engineerID)
	require.NoError(t, err)

	err = testPool.QueryRow(ctx,
		`INSERT INTO customers (name, phone) VALUES ('Тестовый Клиент', '010-1234-5678') RETURNING id`).
		Scan(&customerID)
	require.NoError(t, err)

	err = testPool.QueryRow(ctx,
		`INSERT INTO customer_products (customer_id, product_name, model_code) VALUES ($1, 'Телевизор', 'TV-55') RETURNING id`,
		customerID).
		Scan(&productID)
	require.NoError(t, err)

	return
}

// createRequestWithAssignment заводит заявку с первой PENDING-записью журнала,
// как это делает сервисный слой.
func createRequestWithAssignment(t *testing.T, staffID, engineerID, customerID, productID int) int {
	t.Helper()
	ctx := context.Background()
	requestRepo := NewRequestRepository(testPool)
	assignmentRepo := NewAssignmentRepository(testPool)

	var requestID int
	err := NewTxManager(testPool).RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, requestNo, err := requestRepo.CreateRequestInTx(ctx, tx, staffID, dto.CreateRequestDTO{
			EngineerID:        engineerID,
			CustomerID:        customerID,
			CustomerProductID: productID,
			Content:           "не включается",
		})
		if err != nil {
			return err
		}
		require.Regexp(t, `^AS-\d{8}-\d+$`, requestNo)
		requestID = id

		_, err = assignmentRepo.CreateAssignmentInTx(ctx, tx, entities.AssignmentLog{
			RequestID:      id,
			EngineerID:     engineerID,
			OfferedByID:    null.IntFrom(staffID),
			AssignmentType: constants.AssignmentTypeManual,
		})
		return err
	})
	require.NoError(t, err)
	return requestID
}

func TestRequestRepository_Integration_CreateAndFind(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	staffID, engineerID, customerID, productID := seedData(t)

	requestID := createRequestWithAssignment(t, staffID, engineerID, customerID, productID)

	found, err := NewRequestRepository(testPool).FindRequest(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, constants.RequestStatusReceived, found.Status)
	assert.Equal(t, constants.AssignmentStatusPending, found.AssignmentStatus)
	assert.Equal(t, staffID, found.Receiver.ID)
	require.NotNil(t, found.Engineer)
	assert.Equal(t, engineerID, found.Engineer.ID)
	assert.Nil(t, found.CompletedAt)
}

func TestRequestRepository_Integration_ScopeFiltering(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	staffID, engineerID, customerID, productID := seedData(t)

	var otherStaffID int
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO employees (fio, login, password, role) VALUES ('Второй Приемщик', 'staff2', 'x', 'STAFF') RETURNING id`).
		Scan(&otherStaffID)
	require.NoError(t, err)

	createRequestWithAssignment(t, staffID, engineerID, customerID, productID)
	createRequestWithAssignment(t, otherStaffID, engineerID, customerID, productID)

	repo := NewRequestRepository(testPool)

	mine, total, err := repo.GetRequests(context.Background(), types.Filter{}, RequestScope{ReceiverID: staffID})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, staffID, mine[0].Receiver.ID)

	all, total, err := repo.GetRequests(context.Background(), types.Filter{}, RequestScope{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
	assert.Len(t, all, 2)
}

func TestAssignmentRepository_Integration_ResolveTwice(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	staffID, engineerID, customerID, productID := seedData(t)
	requestID := createRequestWithAssignment(t, staffID, engineerID, customerID, productID)

	ctx := context.Background()
	assignmentRepo := NewAssignmentRepository(testPool)
	txManager := NewTxManager(testPool)

	err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		entry, err := assignmentRepo.FindCurrentPendingInTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		return assignmentRepo.ResolveAssignmentInTx(ctx, tx, entry.ID, constants.AssignmentStatusAccepted, null.String{})
	})
	require.NoError(t, err)

	// Второго PENDING нет, повторное разрешение должно упереться в конфликт.
	err = txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		_, err := assignmentRepo.FindCurrentPendingInTx(ctx, tx, requestID)
		return err
	})
	require.Error(t, err)
}

func TestRequestRepository_Integration_CompletedAt(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	staffID, engineerID, customerID, productID := seedData(t)
	requestID := createRequestWithAssignment(t, staffID, engineerID, customerID, productID)

	ctx := context.Background()
	repo := NewRequestRepository(testPool)
	txManager := NewTxManager(testPool)

	for _, status := range []string{constants.RequestStatusRepairing, constants.RequestStatusCompleted} {
		err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return repo.ChangeStatusInTx(ctx, tx, requestID, status)
		})
		require.NoError(t, err)
	}

	found, err := repo.FindRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, constants.RequestStatusCompleted, found.Status)
	require.NotNil(t, found.CompletedAt)

	// Повторное открытие заявки сбрасывает отметку завершения.
	err = txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return repo.ChangeStatusInTx(ctx, tx, requestID, constants.RequestStatusRepairing)
	})
	require.NoError(t, err)

	found, err = repo.FindRequest(ctx, requestID)
	require.NoError(t, err)
	assert.Nil(t, found.CompletedAt)
}
