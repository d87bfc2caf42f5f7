package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

// DomainService implements the domain-management operations of spec
// §4.1: every domain name is case-folded before it touches the store so
// "Example.com" and "example.com" can never coexist.
type DomainService struct {
	domains repository.DomainStore
	links   repository.LinkStore
}

func NewDomainService(domains repository.DomainStore, links repository.LinkStore) *DomainService {
	return &DomainService{domains: domains, links: links}
}

func normalizeDomainName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *DomainService) Create(ctx context.Context, name string, isDefault bool, description *string) (*models.Domain, error) {
	name = normalizeDomainName(name)
	if name == "" {
		return nil, ValidationError("domain name must not be empty", nil)
	}

	d, err := s.domains.Create(ctx, &models.NewDomain{Name: name, IsDefault: isDefault, Description: description})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolate) {
			return nil, ConflictError("domain already exists", map[string]any{"name": name})
		}
		return nil, WrapInternal("create domain", err)
	}
	return d, nil
}

func (s *DomainService) Get(ctx context.Context, id int64) (*models.Domain, error) {
	d, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "domain")
	}
	return d, nil
}

func (s *DomainService) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	d, err := s.domains.GetByName(ctx, normalizeDomainName(name))
	if err != nil {
		return nil, translateNotFound(err, "domain")
	}
	return d, nil
}

// Default resolves the domain a request should bind to when the caller
// does not name one explicitly (spec §4.1/§9).
func (s *DomainService) Default(ctx context.Context) (*models.Domain, error) {
	d, err := s.domains.GetDefault(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, WrapInternal("default domain resolution", errors.New("no default domain configured"))
		}
		return nil, WrapInternal("resolve default domain", err)
	}
	return d, nil
}

func (s *DomainService) List(ctx context.Context) ([]models.Domain, error) {
	list, err := s.domains.List(ctx)
	if err != nil {
		return nil, WrapInternal("list domains", err)
	}
	return list, nil
}

func (s *DomainService) Patch(ctx context.Context, id int64, patch models.DomainPatch) (*models.Domain, error) {
	if patch.Name != nil {
		normalized := normalizeDomainName(*patch.Name)
		patch.Name = &normalized
	}
	d, err := s.domains.Patch(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolate) {
			return nil, ConflictError("domain name already in use", nil)
		}
		return nil, translateNotFound(err, "domain")
	}
	return d, nil
}

// Delete soft-deletes a domain. It is refused if the domain is the
// current default, or if it still owns any non-deleted link (spec
// §4.4): both surface as a conflict rather than a generic not-found so
// callers know the domain exists but can't be removed yet.
func (s *DomainService) Delete(ctx context.Context, id int64) error {
	d, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, "domain")
	}
	if d.IsDefault {
		return ConflictError("cannot delete the default domain", map[string]any{"domain_id": id})
	}

	count, err := s.links.CountByDomain(ctx, id)
	if err != nil {
		return WrapInternal("count domain links", err)
	}
	if count > 0 {
		return ConflictError("domain still has active links", map[string]any{"domain_id": id, "link_count": count})
	}

	if err := s.domains.SoftDelete(ctx, id); err != nil {
		return translateNotFound(err, "domain")
	}
	return nil
}

func (s *DomainService) SetDefault(ctx context.Context, id int64) error {
	if err := s.domains.SetDefault(ctx, id); err != nil {
		return translateNotFound(err, "domain")
	}
	return nil
}

func translateNotFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NotFoundError(what+" not found", nil)
	}
	return WrapInternal("lookup "+what, err)
}
