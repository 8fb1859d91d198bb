package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"as-system/internal/dto"
	"as-system/internal/entities"
	"as-system/pkg/constants"
	apperrors "as-system/pkg/errors"
)

type AssignmentRepositoryInterface interface {
	GetAssignmentsByRequest(ctx context.Context, requestID int) ([]dto.AssignmentLogDTO, error)
	CreateAssignmentInTx(ctx context.Context, tx pgx.Tx, entry entities.AssignmentLog) (int, error)
	FindCurrentPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (*entities.AssignmentLog, error)
	ResolveAssignmentInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string, reason null.String) error
	CancelPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (int64, error)
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
}

func NewAssignmentRepository(storage *pgxpool.Pool) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage}
}

// GetAssignmentsByRequest возвращает журнал назначений заявки,
// самые свежие записи первыми.
func (r *AssignmentRepository) GetAssignmentsByRequest(ctx context.Context, requestID int) ([]dto.AssignmentLogDTO, error) {
	query := `
		SELECT
			al.id, al.request_id, al.assignment_type, al.status,
			al.assigned_at, al.status_changed_at, al.rejection_reason,
			eng.id, eng.fio,
			offerer.id, offerer.fio
		FROM assignment_logs al
		JOIN employees eng ON al.engineer_id = eng.id
		LEFT JOIN employees offerer ON al.offered_by_id = offerer.id
		WHERE al.request_id = $1
		ORDER BY al.assigned_at DESC, al.id DESC`

	rows, err := r.storage.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала назначений: %w", err)
	}
	defer rows.Close()

	entries := make([]dto.AssignmentLogDTO, 0)
	for rows.Next() {
		var e dto.AssignmentLogDTO
		var assignedAt time.Time
		var statusChangedAt sql.NullTime
		var rejectionReason sql.NullString
		var offererID sql.NullInt64
		var offererFio sql.NullString

		err := rows.Scan(
			&e.ID, &e.RequestID, &e.AssignmentType, &e.Status,
			&assignedAt, &statusChangedAt, &rejectionReason,
			&e.Engineer.ID, &e.Engineer.Fio,
			&offererID, &offererFio,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}

		if offererID.Valid {
			e.OfferedBy = &dto.ShortEmployeeDTO{ID: int(offererID.Int64), Fio: offererFio.String}
		}
		if rejectionReason.Valid {
			e.RejectionReason = &rejectionReason.String
		}
		if statusChangedAt.Valid {
			s := statusChangedAt.Time.Local().Format("2006-01-02 15:04:05")
			e.StatusChangedAt = &s
		}
		e.AssignedAt = assignedAt.Local().Format("2006-01-02 15:04:05")
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *AssignmentRepository) CreateAssignmentInTx(ctx context.Context, tx pgx.Tx, entry entities.AssignmentLog) (int, error) {
	query := `
		INSERT INTO assignment_logs (request_id, engineer_id, offered_by_id, assignment_type, status, assigned_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`

	var newID int
	err := tx.QueryRow(ctx, query,
		entry.RequestID, entry.EngineerID, entry.OfferedByID,
		entry.AssignmentType, constants.AssignmentStatusPending,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания записи о назначении: %w", err)
	}
	return newID, nil
}

// FindCurrentPendingInTx возвращает самую свежую PENDING-запись заявки.
// Отсутствие такой записи - Conflict: разрешать нечего.
// Выборка всегда через ORDER BY assigned_at DESC LIMIT 1, "последняя
// запись побеждает" - явный контракт журнала.
func (r *AssignmentRepository) FindCurrentPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (*entities.AssignmentLog, error) {
	query := `
		SELECT id, request_id, engineer_id, offered_by_id, assignment_type, status, assigned_at, status_changed_at, rejection_reason
		FROM assignment_logs
		WHERE request_id = $1 AND status = 'PENDING'
		ORDER BY assigned_at DESC, id DESC
		LIMIT 1`

	var e entities.AssignmentLog
	err := tx.QueryRow(ctx, query, requestID).Scan(
		&e.ID, &e.RequestID, &e.EngineerID, &e.OfferedByID,
		&e.AssignmentType, &e.Status, &e.AssignedAt, &e.StatusChangedAt, &e.RejectionReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflictError("по заявке %d нет ожидающего назначения", requestID)
		}
		return nil, fmt.Errorf("ошибка поиска текущего назначения: %w", err)
	}
	return &e, nil
}

// ResolveAssignmentInTx переводит PENDING-запись в терминальный статус.
// Условие status = 'PENDING' в WHERE защищает от повторного разрешения:
// ноль затронутых строк - Conflict.
func (r *AssignmentRepository) ResolveAssignmentInTx(ctx context.Context, tx pgx.Tx, id int, newStatus string, reason null.String) error {
	query := `
		UPDATE assignment_logs
		SET status = $2, status_changed_at = NOW(), rejection_reason = $3
		WHERE id = $1 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, id, newStatus, reason)
	if err != nil {
		return fmt.Errorf("ошибка разрешения назначения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("назначение %d уже разрешено", id)
	}
	return nil
}

// CancelPendingInTx гасит все еще ожидающие предложения по заявке перед
// созданием нового, чтобы в журнале не копились устаревшие PENDING-записи.
func (r *AssignmentRepository) CancelPendingInTx(ctx context.Context, tx pgx.Tx, requestID int) (int64, error) {
	query := `
		UPDATE assignment_logs
		SET status = 'CANCELLED', status_changed_at = NOW()
		WHERE request_id = $1 AND status = 'PENDING'`

	tag, err := tx.Exec(ctx, query, requestID)
	if err != nil {
		return 0, fmt.Errorf("ошибка отмены ожидающих назначений: %w", err)
	}
	return tag.RowsAffected(), nil
}
