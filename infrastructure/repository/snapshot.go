package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/vfg2006/marketing-reports/infrastructure/database"
	"github.com/vfg2006/marketing-reports/internal/domain"
)

const (
	snapshotsTable   = "report_snapshots"
	snapshotColumns  = "id, report, data_fingerprint, payload, created_at"
	defaultListLimit = 20
)

//go:generate mockgen -source=snapshot.go -destination=mocks/snapshot.go -package=mocks
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *domain.ReportSnapshot) error
	GetLatest(ctx context.Context, report string) (*domain.ReportSnapshot, error)
	List(ctx context.Context, report string, limit int) ([]*domain.ReportSnapshot, error)
}

type snapshotRepository struct {
	conn database.Conn
}

func NewSnapshotRepository(conn database.Conn) SnapshotRepository {
	return &snapshotRepository{
		conn: conn,
	}
}

func (r *snapshotRepository) Save(ctx context.Context, snapshot *domain.ReportSnapshot) error {
	query, args, err := r.conn.Builder().
		Insert(snapshotsTable).
		Columns(snapshotColumns).
		Values(snapshot.ID, snapshot.Report, snapshot.DataFingerprint, string(snapshot.Payload), snapshot.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao salvar snapshot: %w", err)
	}

	return nil
}

// GetLatest retorna nil quando ainda não há snapshot do relatório
func (r *snapshotRepository) GetLatest(ctx context.Context, report string) (*domain.ReportSnapshot, error) {
	query, args, err := r.selectByReport(report).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRowContext(ctx, query, args...)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear snapshot: %w", err)
	}

	return snapshot, nil
}

func (r *snapshotRepository) List(ctx context.Context, report string, limit int) ([]*domain.ReportSnapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query, args, err := r.selectByReport(report).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.ReportSnapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return snapshots, nil
}

func (r *snapshotRepository) selectByReport(report string) squirrel.SelectBuilder {
	return r.conn.Builder().
		Select(snapshotColumns).
		From(snapshotsTable).
		Where(squirrel.Eq{"report": report}).
		OrderBy("created_at DESC", "id DESC")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*domain.ReportSnapshot, error) {
	var (
		snapshot domain.ReportSnapshot
		payload  string
	)

	if err := s.Scan(&snapshot.ID, &snapshot.Report, &snapshot.DataFingerprint, &payload, &snapshot.CreatedAt); err != nil {
		return nil, err
	}

	snapshot.Payload = []byte(payload)
	return &snapshot, nil
}
