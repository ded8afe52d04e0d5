package patient

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

const cols = `id, cns, name, birth_date, sex, nationality, race, ethnicity, postal_code,
	city, district, street_type, street, number, complement, phone, email,
	active, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.CNS, &p.Name, &p.BirthDate, &p.Sex, &p.Nationality,
		&p.Race, &p.Ethnicity, &p.PostalCode, &p.City, &p.District, &p.StreetType,
		&p.Street, &p.Number, &p.Complement, &p.Phone, &p.Email,
		&p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, cns, name, birth_date, sex, nationality, race, ethnicity,
			postal_code, city, district, street_type, street, number, complement,
			phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.CNS, p.Name, p.BirthDate, p.Sex, p.Nationality, p.Race, p.Ethnicity,
		p.PostalCode, p.City, p.District, p.StreetType, p.Street, p.Number, p.Complement,
		p.Phone, p.Email, p.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByCNS(ctx context.Context, cns string) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM patients WHERE cns = $1`, cns))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET cns=$2, name=$3, birth_date=$4, sex=$5, nationality=$6,
			race=$7, ethnicity=$8, postal_code=$9, city=$10, district=$11,
			street_type=$12, street=$13, number=$14, complement=$15, phone=$16,
			email=$17, active=$18, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.CNS, p.Name, p.BirthDate, p.Sex, p.Nationality, p.Race, p.Ethnicity,
		p.PostalCode, p.City, p.District, p.StreetType, p.Street, p.Number, p.Complement,
		p.Phone, p.Email, p.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	where := ``
	args := []interface{}{}
	if name != "" {
		where = ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, name)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + cols + ` FROM patients` + where + ` ORDER BY name`
	if name != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ResolveCNS(ctx context.Context, cns []string) (map[string]uuid.UUID, error) {
	if len(cns) == 0 {
		return map[string]uuid.UUID{}, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT cns, id FROM patients WHERE cns = ANY($1)`, cns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]uuid.UUID, len(cns))
	for rows.Next() {
		var number string
		var id uuid.UUID
		if err := rows.Scan(&number, &id); err != nil {
			return nil, err
		}
		out[number] = id
	}
	return out, rows.Err()
}

func (r *repoPG) UpsertBatch(ctx context.Context, patients []*Patient) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, p := range patients {
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			_, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO patients (id, cns, name, birth_date, sex, nationality, race,
					ethnicity, postal_code, city, district, street_type, street, number,
					complement, phone, email, active)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
				ON CONFLICT (cns) DO UPDATE SET
					name = EXCLUDED.name,
					birth_date = COALESCE(EXCLUDED.birth_date, patients.birth_date),
					sex = COALESCE(EXCLUDED.sex, patients.sex),
					nationality = COALESCE(EXCLUDED.nationality, patients.nationality),
					race = COALESCE(EXCLUDED.race, patients.race),
					ethnicity = COALESCE(EXCLUDED.ethnicity, patients.ethnicity),
					postal_code = COALESCE(EXCLUDED.postal_code, patients.postal_code),
					city = COALESCE(EXCLUDED.city, patients.city),
					district = COALESCE(EXCLUDED.district, patients.district),
					street_type = COALESCE(EXCLUDED.street_type, patients.street_type),
					street = COALESCE(EXCLUDED.street, patients.street),
					number = COALESCE(EXCLUDED.number, patients.number),
					complement = COALESCE(EXCLUDED.complement, patients.complement),
					phone = COALESCE(EXCLUDED.phone, patients.phone),
					email = COALESCE(EXCLUDED.email, patients.email),
					active = EXCLUDED.active,
					updated_at = NOW()`,
				p.ID, p.CNS, p.Name, p.BirthDate, p.Sex, p.Nationality, p.Race, p.Ethnicity,
				p.PostalCode, p.City, p.District, p.StreetType, p.Street, p.Number, p.Complement,
				p.Phone, p.Email, p.Active)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
