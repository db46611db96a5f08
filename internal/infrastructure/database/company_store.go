package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/saminvoice/internal/domain/entity"
	"github.com/jhoicas/saminvoice/internal/domain/repository"
)

var _ repository.CompanyStore = (*CompanyRepo)(nil)

// CompanyRepo guarda la empresa como valor único: solo se usa la primera fila de la tabla.
type CompanyRepo struct {
	db *sqlx.DB
}

// NewCompanyStore construye el adaptador de persistencia para la empresa.
func NewCompanyStore(s *Store) *CompanyRepo {
	return &CompanyRepo{db: s.DB}
}

const selectCompany = `SELECT id, name, address, email, phone, logo FROM company ORDER BY id LIMIT 1`

// Get devuelve la empresa guardada o (nil, nil) si nunca se guardó.
func (r *CompanyRepo) Get(ctx context.Context) (*entity.Company, error) {
	c, err := r.first(ctx, r.db)
	if err != nil {
		return nil, classify("get company", err)
	}
	return c, nil
}

// GetOrDefault devuelve una Company vacía si nunca se guardó.
func (r *CompanyRepo) GetOrDefault(ctx context.Context) (*entity.Company, error) {
	c, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &entity.Company{}, nil
	}
	return c, nil
}

func (r *CompanyRepo) first(ctx context.Context, q sqlx.QueryerContext) (*entity.Company, error) {
	var rows []entity.Company
	if err := sqlx.SelectContext(ctx, q, &rows, selectCompany); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Save crea la empresa si no existe o la actualiza. El logo actual se conserva cuando in.Logo es nil.
func (r *CompanyRepo) Save(ctx context.Context, in entity.Company) (*entity.Company, error) {
	in.Normalize()
	if err := entity.Validate(&in); err != nil {
		return nil, err
	}

	var out *entity.Company
	err := withTx(ctx, r.db, "save company", func(tx *sqlx.Tx) error {
		cur, err := r.first(ctx, tx)
		if err != nil {
			return err
		}
		if cur == nil {
			_, err = tx.ExecContext(ctx, r.db.Rebind(
				`INSERT INTO company (name, address, email, phone, logo) VALUES (?, ?, ?, ?, ?)`),
				in.Name, in.Address, in.Email, in.Phone, in.Logo)
		} else {
			logo := cur.Logo
			if in.Logo != nil {
				logo = in.Logo
			}
			_, err = tx.ExecContext(ctx, r.db.Rebind(
				`UPDATE company SET name = ?, address = ?, email = ?, phone = ?, logo = ? WHERE id = ?`),
				in.Name, in.Address, in.Email, in.Phone, logo, cur.ID)
		}
		if err != nil {
			return err
		}
		out, err = r.first(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Logo devuelve la imagen del logo o nil.
func (r *CompanyRepo) Logo(ctx context.Context) ([]byte, error) {
	c, err := r.Get(ctx)
	if err != nil || c == nil {
		return nil, err
	}
	return c.Logo, nil
}
