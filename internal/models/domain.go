package models

import "time"

// Domain is a namespace for short codes. Exactly one non-deleted domain
// has IsDefault set at any time; shorten requests that omit a domain
// resolve against it.
type Domain struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	IsDefault   bool       `json:"is_default"`
	IsActive    bool       `json:"is_active"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the domain has been soft-deleted.
func (d *Domain) IsDeleted() bool {
	return d.DeletedAt != nil
}

// Resolvable reports whether the domain may serve redirects: active and
// not soft-deleted.
func (d *Domain) Resolvable() bool {
	return d.IsActive && !d.IsDeleted()
}

// NewDomain is the input to DomainStore.Create.
type NewDomain struct {
	Name        string
	IsDefault   bool
	Description *string
}

// DomainPatch is a partial update to a domain row. Nil fields are left
// unchanged; Description uses a double-optional to distinguish "leave
// unchanged" from "clear".
type DomainPatch struct {
	Name        *string
	IsActive    *bool
	IsDefault   *bool
	Description **string
}
