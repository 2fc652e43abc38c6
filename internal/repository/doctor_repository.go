package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-adp-api/internal/models"
)

// DoctorRepository manages persistence for doctor catalog entries.
type DoctorRepository struct {
	db *sqlx.DB
}

// NewDoctorRepository constructs a DoctorRepository.
func NewDoctorRepository(db *sqlx.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

const doctorWithUserColumns = `d.id, d.user_id, d.employee_id, d.active, d.can_work_nights, d.is_pediatrics_certified,
	d.created_at, d.updated_at, u.name, u.email, u.nationality`

const doctorWithUserJoin = `FROM doctors d JOIN users u ON u.id = d.user_id`

// List returns doctors matching filters along with total count.
func (r *DoctorRepository) List(ctx context.Context, filter models.DoctorFilter) ([]models.DoctorWithUser, int, error) {
	base := doctorWithUserJoin + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("d.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.name) LIKE $%d OR LOWER(u.email) LIKE $%d OR LOWER(d.employee_id) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY u.name ASC LIMIT %d OFFSET %d", doctorWithUserColumns, base, size, offset)
	var doctors []models.DoctorWithUser
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list doctors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count doctors: %w", err)
	}
	return doctors, total, nil
}

// ListActive returns every active doctor joined with its user row, the
// catalog snapshot the auto-builder and validator iterate over.
func (r *DoctorRepository) ListActive(ctx context.Context) ([]models.DoctorWithUser, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE d.active = TRUE ORDER BY d.id ASC", doctorWithUserColumns, doctorWithUserJoin)
	var doctors []models.DoctorWithUser
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("list active doctors: %w", err)
	}
	return doctors, nil
}

// FindByID fetches a doctor joined with its user row.
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*models.DoctorWithUser, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE d.id = $1", doctorWithUserColumns, doctorWithUserJoin)
	var doctor models.DoctorWithUser
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// FindByUserID fetches the doctor record owned by a user account.
func (r *DoctorRepository) FindByUserID(ctx context.Context, userID string) (*models.DoctorWithUser, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE d.user_id = $1", doctorWithUserColumns, doctorWithUserJoin)
	var doctor models.DoctorWithUser
	if err := r.db.GetContext(ctx, &doctor, query, userID); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// Create inserts a new doctor record. Unique (user_id) violations surface as
// ErrDuplicateKey.
func (r *DoctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID == "" {
		doctor.ID = uuid.NewString()
	}
	const query = `INSERT INTO doctors (id, user_id, employee_id, active, can_work_nights, is_pediatrics_certified, created_at, updated_at)
		VALUES (:id, :user_id, :employee_id, :active, :can_work_nights, :is_pediatrics_certified, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doctor); err != nil {
		return translateUniqueViolation(err, "a doctor record already exists for this user")
	}
	return nil
}

// Update modifies an existing doctor record.
func (r *DoctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	const query = `UPDATE doctors SET employee_id = :employee_id, active = :active, can_work_nights = :can_work_nights,
		is_pediatrics_certified = :is_pediatrics_certified, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, doctor); err != nil {
		return fmt.Errorf("update doctor: %w", err)
	}
	return nil
}

// Delete removes a doctor record.
func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM doctors WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}
