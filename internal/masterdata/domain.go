package masterdata

import "errors"

// Reference rows consumed read-only by the approval core. Intake and other
// back-office systems own the writes.

// Center is an organizational center (station).
type Center struct {
	ID     string `json:"center_id"`
	Name   string `json:"center_name"`
	Status string `json:"status"`
}

// Location is a physical location within a center.
type Location struct {
	ID       string `json:"location_id"`
	CenterID string `json:"center_id"`
	Name     string `json:"location_name"`
	Status   string `json:"status"`
}

// Department belongs to a center/location pair.
type Department struct {
	ID         string `json:"department_id"`
	CenterID   string `json:"center_id"`
	LocationID string `json:"location_id"`
	Name       string `json:"department_name"`
	Status     string `json:"status"`
}

// Employee is the custodian an asset can be assigned to.
type Employee struct {
	Serial string `json:"employee_serial"`
	Name   string `json:"employee_name"`
	Status string `json:"status"`
}

// Supplier is a procurement counterparty.
type Supplier struct {
	ID     string `json:"supplier_id"`
	Name   string `json:"supplier_name"`
	Status string `json:"status"`
}

// NameTable maps reference identifiers to display names. Missing entries and
// empty identifiers resolve to nil.
type NameTable struct {
	Centers     map[string]string `json:"centers"`
	Locations   map[string]string `json:"locations"`
	Departments map[string]string `json:"departments"`
	Employees   map[string]string `json:"employees"`
}

// Center resolves a center id to its display name.
func (t NameTable) Center(id string) *string { return lookup(t.Centers, id) }

// Location resolves a location id to its display name.
func (t NameTable) Location(id string) *string { return lookup(t.Locations, id) }

// Department resolves a department id to its display name.
func (t NameTable) Department(id string) *string { return lookup(t.Departments, id) }

// Employee resolves an employee serial to its display name.
func (t NameTable) Employee(id string) *string { return lookup(t.Employees, id) }

func lookup(m map[string]string, id string) *string {
	if id == "" || m == nil {
		return nil
	}
	name, ok := m[id]
	if !ok {
		return nil
	}
	return &name
}

// ErrNotFound indicates a missing reference row.
var ErrNotFound = errors.New("masterdata: not found")
