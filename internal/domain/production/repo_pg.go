package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bpasys/bpasys/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, patient_id, procedure_code, service_date, schedule_date, status,
	cancel_date, delivery_date, processed_sia, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.ProcedureCode, &rec.ServiceDate, &rec.ScheduleDate,
		&rec.Status, &rec.CancelDate, &rec.DeliveryDate, &rec.ProcessedSIA, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) insert(ctx context.Context, q queryable, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO production_records (id, patient_id, procedure_code, service_date,
			service_day, schedule_date, status, cancel_date, delivery_date, processed_sia)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.PatientID, rec.ProcedureCode, rec.ServiceDate, rec.ServiceDay(),
		rec.ScheduleDate, rec.Status, rec.CancelDate, rec.DeliveryDate, rec.ProcessedSIA)
	return err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	return r.insert(ctx, r.conn(ctx), rec)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM production_records WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE production_records SET procedure_code=$2, service_date=$3, service_day=$4,
			schedule_date=$5, status=$6, cancel_date=$7, delivery_date=$8, processed_sia=$9,
			updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.ProcedureCode, rec.ServiceDate, rec.ServiceDay(),
		rec.ScheduleDate, rec.Status, rec.CancelDate, rec.DeliveryDate, rec.ProcessedSIA)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM production_records WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Record, int, error) {
	where := ``
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM production_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cols + ` FROM production_records` + where + ` ORDER BY service_date DESC`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	return r.queryRecords(ctx, query, total, args...)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM production_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return r.queryRecords(ctx,
		`SELECT `+cols+` FROM production_records WHERE patient_id = $1 ORDER BY service_date DESC LIMIT $2 OFFSET $3`,
		total, patientID, limit, offset)
}

func (r *repoPG) queryRecords(ctx context.Context, query string, total int, args ...interface{}) ([]*Record, int, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) InsertBatch(ctx context.Context, recs []*Record) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, rec := range recs {
			if err := r.insert(ctx, r.conn(ctx), rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) ExistingKeys(ctx context.Context, patientIDs []uuid.UUID) ([]DuplicateKey, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT patient_id, procedure_code, service_day::text
		FROM production_records WHERE patient_id = ANY($1)`, patientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []DuplicateKey
	for rows.Next() {
		var k DuplicateKey
		if err := rows.Scan(&k.PatientID, &k.ProcedureCode, &k.ServiceDay); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
