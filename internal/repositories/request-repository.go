package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	db "as-system/internal/infrastructure/bd"
	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/pkg/constants"
	apperrors "as-system/pkg/errors"
	"as-system/pkg/types"
)

// RequestScope сужает выборку по владельцу: ненулевой ReceiverID ограничивает
// заявки принявшим сотрудником, ненулевой EngineerID - назначенным инженером.
// Для администратора оба поля нулевые.
type RequestScope struct {
	ReceiverID int
	EngineerID int
}

type RequestRepositoryInterface interface {
	GetRequests(ctx context.Context, filter types.Filter, scope RequestScope) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, id int) (*dto.RequestDTO, error)
	CreateRequestInTx(ctx context.Context, tx pgx.Tx, receiverID int, payload dto.CreateRequestDTO) (int, string, error)
	FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id int) (*entities.Request, error)
	UpdateRequestInTx(ctx context.Context, tx pgx.Tx, id int, payload dto.UpdateRequestDTO) error
	ChangeStatusInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string) error
	SetEngineerInTx(ctx context.Context, tx pgx.Tx, id int, engineerID int) error
	DeleteRequestInTx(ctx context.Context, tx pgx.Tx, id int) error
}

type RequestRepository struct {
	storage *pgxpool.Pool
}

func NewRequestRepository(storage *pgxpool.Pool) RequestRepositoryInterface {
	return &RequestRepository{storage: storage}
}

// la - последняя запись журнала назначений на заявку (максимальный assigned_at).
const latestAssignmentJoin = `assignment_logs la ON la.request_id = r.id AND la.assigned_at = (
	SELECT MAX(a2.assigned_at) FROM assignment_logs a2 WHERE a2.request_id = r.id)`

// assignmentPriorityOrder сортирует "сначала самое актуальное": PENDING выше всех.
const assignmentPriorityOrder = `CASE la.status
	WHEN 'PENDING' THEN 5
	WHEN 'ACCEPTED' THEN 4
	WHEN 'CANCELLED' THEN 3
	WHEN 'REJECTED' THEN 2
	WHEN 'EXPIRED' THEN 1
	ELSE 0 END DESC`

var requestFilterColumns = map[string]string{
	"status":            "r.status",
	"assignment_status": "la.status",
	"engineer_id":       "r.engineer_id",
	"customer_id":       "r.customer_id",
	"created_at":        "r.created_at",
	"request_no":        "r.request_no",
}

// applyRequestFilters добавляет join'ы и общие условия поиска;
// используется и списочным, и счетным запросом, чтобы они не расходились.
func applyRequestFilters(builder sq.SelectBuilder, filter types.Filter, scope RequestScope) sq.SelectBuilder {
	builder = builder.
		From("requests r").
		Join("employees recv ON r.receiver_id = recv.id").
		LeftJoin("employees eng ON r.engineer_id = eng.id").
		Join("customers c ON r.customer_id = c.id").
		Join("customer_products cp ON r.customer_product_id = cp.id").
		LeftJoin(latestAssignmentJoin)

	if scope.ReceiverID > 0 {
		builder = builder.Where(sq.Eq{"r.receiver_id": scope.ReceiverID})
	}
	if scope.EngineerID > 0 {
		builder = builder.Where(sq.Eq{"r.engineer_id": scope.EngineerID})
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"c.name": like},
			sq.ILike{"cp.product_name": like},
			sq.ILike{"cp.model_code": like},
		})
	}

	// employee, date_from и date_to не входят в requestFilterColumns,
	// поэтому ApplyListParams их не тронет; обрабатываем здесь.
	if raw, ok := filter.Filter["employee"]; ok {
		builder = builder.Where(sq.ILike{"eng.fio": fmt.Sprintf("%%%v%%", raw)})
	}
	if raw, ok := filter.Filter["date_from"]; ok {
		builder = builder.Where(sq.GtOrEq{"r.created_at": raw})
	}
	if raw, ok := filter.Filter["date_to"]; ok {
		builder = builder.Where(sq.LtOrEq{"r.created_at": raw})
	}

	return builder
}

func (r *RequestRepository) GetRequests(ctx context.Context, filter types.Filter, scope RequestScope) ([]dto.RequestDTO, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := applyRequestFilters(psql.Select("COUNT(*)"), filter, scope)
	countBuilder = db.ApplyListParams(countBuilder, types.Filter{Filter: filter.Filter}, requestFilterColumns)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения счетного запроса: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}

	listBuilder := applyRequestFilters(psql.Select(
		"r.id", "r.request_no", "r.status", "r.content", "r.completed_at", "r.created_at",
		"recv.id", "recv.fio",
		"eng.id", "eng.fio",
		"c.id", "c.name", "c.phone",
		"cp.id", "cp.product_name", "cp.model_code",
		"la.status",
	), filter, scope)
	listBuilder = db.ApplyListParams(listBuilder, filter, requestFilterColumns)

	// Единый порядок "сначала самое актуальное", если сортировка не задана явно.
	if len(filter.Sort) == 0 {
		listBuilder = listBuilder.OrderBy(assignmentPriorityOrder, "r.created_at DESC")
	}

	listSQL, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения списочного запроса: %w", err)
	}

	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	requests := make([]dto.RequestDTO, 0)
	for rows.Next() {
		req, err := scanRequestRow(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	return requests, total, nil
}

func (r *RequestRepository) FindRequest(ctx context.Context, id int) (*dto.RequestDTO, error) {
	query := `
		SELECT
			r.id, r.request_no, r.status, r.content, r.completed_at, r.created_at,
			recv.id, recv.fio,
			eng.id, eng.fio,
			c.id, c.name, c.phone,
			cp.id, cp.product_name, cp.model_code,
			la.status
		FROM requests r
		JOIN employees recv ON r.receiver_id = recv.id
		LEFT JOIN employees eng ON r.engineer_id = eng.id
		JOIN customers c ON r.customer_id = c.id
		JOIN customer_products cp ON r.customer_product_id = cp.id
		LEFT JOIN ` + latestAssignmentJoin + `
		WHERE r.id = $1`

	req, err := scanRequestRow(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("заявка %d не найдена", id)
		}
		return nil, err
	}
	return req, nil
}

// scanRequestRow сканирует одну строку общей списочной проекции.
func scanRequestRow(row pgx.Row) (*dto.RequestDTO, error) {
	var req dto.RequestDTO
	var completedAt sql.NullTime
	var createdAt time.Time
	var engID sql.NullInt64
	var engFio, assignmentStatus sql.NullString

	err := row.Scan(
		&req.ID, &req.RequestNo, &req.Status, &req.Content, &completedAt, &createdAt,
		&req.Receiver.ID, &req.Receiver.Fio,
		&engID, &engFio,
		&req.Customer.ID, &req.Customer.Name, &req.Customer.Phone,
		&req.CustomerProduct.ID, &req.CustomerProduct.ProductName, &req.CustomerProduct.ModelCode,
		&assignmentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}

	if engID.Valid {
		req.Engineer = &dto.ShortEmployeeDTO{ID: int(engID.Int64), Fio: engFio.String}
	}
	if assignmentStatus.Valid {
		req.AssignmentStatus = assignmentStatus.String
	}
	if completedAt.Valid {
		s := completedAt.Time.Local().Format("2006-01-02 15:04:05")
		req.CompletedAt = &s
	}
	req.CreatedAt = createdAt.Local().Format("2006-01-02 15:04:05")
	return &req, nil
}

// CreateRequestInTx вставляет заявку в статусе RECEIVED и сразу, зная id,
// присваивает ей номер вида AS-YYYYMMDD-<id>. Номер больше не меняется.
func (r *RequestRepository) CreateRequestInTx(ctx context.Context, tx pgx.Tx, receiverID int, payload dto.CreateRequestDTO) (int, string, error) {
	var newID int
	insertQuery := `
		INSERT INTO requests (request_no, receiver_id, engineer_id, customer_id, customer_product_id, content, status, created_at, updated_at)
		VALUES ('', $1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`
	err := tx.QueryRow(ctx, insertQuery,
		receiverID, payload.EngineerID, payload.CustomerID, payload.CustomerProductID,
		payload.Content, constants.RequestStatusReceived,
	).Scan(&newID)
	if err != nil {
		return 0, "", fmt.Errorf("ошибка создания заявки: %w", err)
	}

	var requestNo string
	numberQuery := `
		UPDATE requests
		SET request_no = 'AS-' || to_char(created_at, 'YYYYMMDD') || '-' || id
		WHERE id = $1
		RETURNING request_no`
	if err := tx.QueryRow(ctx, numberQuery, newID).Scan(&requestNo); err != nil {
		return 0, "", fmt.Errorf("ошибка генерации номера заявки: %w", err)
	}
	return newID, requestNo, nil
}

// FindRequestForUpdateInTx блокирует строку заявки (FOR UPDATE), сериализуя
// конкурирующие изменения журнала назначений по одной заявке.
func (r *RequestRepository) FindRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, id int) (*entities.Request, error) {
	query := `
		SELECT id, request_no, receiver_id, engineer_id, customer_id, customer_product_id, content, status, completed_at
		FROM requests WHERE id = $1 FOR UPDATE`

	var req entities.Request
	err := tx.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.RequestNo, &req.ReceiverID, &req.EngineerID,
		&req.CustomerID, &req.CustomerProductID, &req.Content, &req.Status, &req.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("заявка %d не найдена", id)
		}
		return nil, fmt.Errorf("не удалось найти заявку для обновления: %w", err)
	}
	return &req, nil
}

func (r *RequestRepository) UpdateRequestInTx(ctx context.Context, tx pgx.Tx, id int, payload dto.UpdateRequestDTO) error {
	updateQuery := "UPDATE requests SET updated_at = NOW()"
	args := []interface{}{}
	argCounter := 1

	if payload.EngineerID != nil {
		updateQuery += fmt.Sprintf(", engineer_id = $%d", argCounter)
		args = append(args, *payload.EngineerID)
		argCounter++
	}
	if payload.CustomerID != nil {
		updateQuery += fmt.Sprintf(", customer_id = $%d", argCounter)
		args = append(args, *payload.CustomerID)
		argCounter++
	}
	if payload.CustomerProductID != nil {
		updateQuery += fmt.Sprintf(", customer_product_id = $%d", argCounter)
		args = append(args, *payload.CustomerProductID)
		argCounter++
	}
	if payload.Content != nil {
		updateQuery += fmt.Sprintf(", content = $%d", argCounter)
		args = append(args, *payload.Content)
		argCounter++
	}

	updateQuery += fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	if _, err := tx.Exec(ctx, updateQuery, args...); err != nil {
		return fmt.Errorf("ошибка при обновлении заявки: %w", err)
	}
	return nil
}

// ChangeStatusInTx переписывает статус. completed_at живет строго в паре со
// статусом COMPLETED: ставится при входе в него (если еще не стоял) и
// сбрасывается при любом другом статусе.
func (r *RequestRepository) ChangeStatusInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string) error {
	query := `
		UPDATE requests
		SET status = $2,
		    completed_at = CASE WHEN $2 = 'COMPLETED' THEN COALESCE(completed_at, NOW()) ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1`
	tag, err := tx.Exec(ctx, query, id, newStatus)
	if err != nil {
		return fmt.Errorf("ошибка смены статуса заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("заявка %d не найдена", id)
	}
	return nil
}

func (r *RequestRepository) SetEngineerInTx(ctx context.Context, tx pgx.Tx, id int, engineerID int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE requests SET engineer_id = $2, updated_at = NOW() WHERE id = $1`, id, engineerID)
	if err != nil {
		return fmt.Errorf("ошибка смены инженера заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("заявка %d не найдена", id)
	}
	return nil
}

// DeleteRequestInTx удаляет заявку вместе с журналом назначений:
// сначала журнал, потом сама заявка.
func (r *RequestRepository) DeleteRequestInTx(ctx context.Context, tx pgx.Tx, id int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM assignment_logs WHERE request_id = $1`, id); err != nil {
		return fmt.Errorf("ошибка удаления журнала назначений: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("заявка %d не найдена", id)
	}
	return nil
}
