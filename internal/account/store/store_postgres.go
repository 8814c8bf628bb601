package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"deales/internal/account/models"
	"deales/pkg/domain"
	"deales/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists account records with pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, role, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(user.ID), user.Email, string(user.Role), user.PasswordHash, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.findUser(ctx, `WHERE id = $1`, uuid.UUID(id))
}

func (s *PostgresStore) findUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		u    models.User
		id   uuid.UUID
		role string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, role, password_hash, is_active, created_at
		FROM users `+where, arg,
	).Scan(&id, &u.Email, &role, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.Role = domain.ResolveRole(role)
	return &u, nil
}

// CreateDealership inserts the dealership and its primary location in one
// transaction.
func (s *PostgresStore) CreateDealership(ctx context.Context, d *models.Dealership, primary *models.Location) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin dealership tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO dealerships (
			id, owner_user_id, legal_name, operating_name, business_type, province,
			dealer_license_number, issuing_authority, primary_contact_name, phone, website, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.UUID(d.ID), uuid.UUID(d.OwnerUserID), d.LegalName, d.OperatingName, d.BusinessType, d.Province,
		d.DealerLicenseNumber, d.IssuingAuthority, d.PrimaryContactName, d.Phone, d.Website, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dealership: %w", err)
	}

	if primary != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO dealership_locations (
				id, dealership_id, street_address, city, province, postal_code, timezone, is_primary
			) VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
			uuid.New(), uuid.UUID(d.ID), primary.StreetAddress, primary.City, primary.Province,
			primary.PostalCode, primary.Timezone,
		)
		if err != nil {
			return fmt.Errorf("insert dealership location: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Locations(ctx context.Context, id domain.DealershipID) ([]models.Location, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT street_address, city, province, postal_code, timezone
		FROM dealership_locations
		WHERE dealership_id = $1
		ORDER BY is_primary DESC`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Location])
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, p *models.SalespersonProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO salesperson_profiles (
			user_id, full_name, province, issuing_authority, license_number, license_expiry, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			province = EXCLUDED.province,
			issuing_authority = EXCLUDED.issuing_authority,
			license_number = EXCLUDED.license_number,
			license_expiry = EXCLUDED.license_expiry,
			updated_at = EXCLUDED.updated_at`,
		uuid.UUID(p.UserID), p.FullName, p.Province, p.IssuingAuthority, p.LicenseNumber, p.LicenseExpiry, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert salesperson profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindProfile(ctx context.Context, userID domain.UserID) (*models.SalespersonProfile, error) {
	p := models.SalespersonProfile{UserID: userID}
	err := s.pool.QueryRow(ctx, `
		SELECT full_name, province, issuing_authority, license_number, license_expiry, updated_at
		FROM salesperson_profiles WHERE user_id = $1`, uuid.UUID(userID),
	).Scan(&p.FullName, &p.Province, &p.IssuingAuthority, &p.LicenseNumber, &p.LicenseExpiry, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find salesperson profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) AddMembership(ctx context.Context, m models.Membership) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO salesperson_memberships (salesperson_user_id, dealership_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (salesperson_user_id, dealership_id) DO UPDATE SET status = EXCLUDED.status`,
		uuid.UUID(m.SalespersonUserID), uuid.UUID(m.DealershipID), string(m.Status), m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMemberships(ctx context.Context, userID domain.UserID, statuses []models.MembershipStatus) ([]models.Membership, error) {
	raw := make([]string, len(statuses))
	for i, st := range statuses {
		raw[i] = string(st)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT m.dealership_id, COALESCE(NULLIF(d.operating_name, ''), d.legal_name), m.status, m.created_at
		FROM salesperson_memberships m
		JOIN dealerships d ON d.id = m.dealership_id
		WHERE m.salesperson_user_id = $1 AND m.status = ANY($2)
		ORDER BY m.created_at`, uuid.UUID(userID), raw)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	out := make([]models.Membership, 0)
	for rows.Next() {
		var (
			m      models.Membership
			dealer uuid.UUID
			status string
		)
		if err := rows.Scan(&dealer, &m.DealershipName, &status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		m.SalespersonUserID = userID
		m.DealershipID = domain.DealershipID(dealer)
		m.Status = models.MembershipStatus(status)
		out = append(out, m)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
