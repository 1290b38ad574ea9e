package masterdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed reads over the reference tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCenters returns all centers ordered by id.
func (r *Repository) ListCenters(ctx context.Context) ([]Center, error) {
	rows, err := r.pool.Query(ctx, `SELECT center_id, center_name, status FROM centers ORDER BY center_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var centers []Center
	for rows.Next() {
		var c Center
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			return nil, err
		}
		centers = append(centers, c)
	}
	return centers, rows.Err()
}

// ListLocations returns all locations ordered by id.
func (r *Repository) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := r.pool.Query(ctx, `SELECT location_id, center_id, location_name, status FROM locations ORDER BY location_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.CenterID, &l.Name, &l.Status); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// ListDepartments returns all departments ordered by id.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT department_id, center_id, location_id, department_name, status FROM departments ORDER BY department_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CenterID, &d.LocationID, &d.Name, &d.Status); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// ListEmployees returns all employees ordered by serial.
func (r *Repository) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT employee_serial, employee_name, status FROM employees ORDER BY employee_serial`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.Serial, &e.Name, &e.Status); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// ListSuppliers returns all suppliers ordered by id.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT supplier_id, supplier_name, status FROM suppliers ORDER BY supplier_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Status); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// CenterNames returns center id to name pairs.
func (r *Repository) CenterNames(ctx context.Context) (map[string]string, error) {
	return r.namePairs(ctx, `SELECT center_id, center_name FROM centers`)
}

// LocationNames returns location id to name pairs.
func (r *Repository) LocationNames(ctx context.Context) (map[string]string, error) {
	return r.namePairs(ctx, `SELECT location_id, location_name FROM locations`)
}

// DepartmentNames returns department id to name pairs.
func (r *Repository) DepartmentNames(ctx context.Context) (map[string]string, error) {
	return r.namePairs(ctx, `SELECT department_id, department_name FROM departments`)
}

// EmployeeNames returns employee serial to name pairs.
func (r *Repository) EmployeeNames(ctx context.Context) (map[string]string, error) {
	return r.namePairs(ctx, `SELECT employee_serial, employee_name FROM employees`)
}

func (r *Repository) namePairs(ctx context.Context, query string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		pairs[id] = name
	}
	return pairs, rows.Err()
}
