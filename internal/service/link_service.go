package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shortlinkhq/shortlink/internal/metrics"
	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

// maxCodeGenerationAttempts bounds the auto-generated-code collision
// retry loop. Five attempts against an 11-char, 62-char-alphabet code
// space makes repeated collisions astronomically unlikely; exhausting
// the budget means something else is wrong and should surface as an
// internal error rather than loop forever.
const maxCodeGenerationAttempts = 5

// LinkService implements link creation, redirection and lifecycle
// management (spec §4.2/§4.3).
type LinkService struct {
	links   repository.LinkStore
	domains repository.DomainStore
	cache   repository.Cache
}

func NewLinkService(links repository.LinkStore, domains repository.DomainStore, cache repository.Cache) *LinkService {
	return &LinkService{links: links, domains: domains, cache: cache}
}

func (s *LinkService) resolveDomain(ctx context.Context, name *string) (*models.Domain, error) {
	if name == nil || *name == "" {
		d, err := s.domains.GetDefault(ctx)
		if err != nil {
			return nil, WrapInternal("resolve default domain", err)
		}
		return d, nil
	}
	d, err := s.domains.GetByName(ctx, normalizeDomainName(*name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundError("domain not found", map[string]any{"domain": *name})
		}
		return nil, WrapInternal("resolve domain", err)
	}
	if !d.IsActive {
		return nil, ConflictError("domain is not active", map[string]any{"domain": d.Name})
	}
	return d, nil
}

// Shorten creates a link for one item, deduplicating against an
// existing non-deleted link for the same normalized URL in the same
// domain when the caller did not ask for a specific custom code (spec
// §4.2).
func (s *LinkService) Shorten(ctx context.Context, item models.ShortenItem) (*models.ShortenResult, error) {
	domain, err := s.resolveDomain(ctx, item.Domain)
	if err != nil {
		return nil, err
	}

	normalized, err := NormalizeURL(item.URL)
	if err != nil {
		return nil, ValidationError("invalid url", map[string]any{"url": item.URL, "reason": err.Error()})
	}

	if item.CustomCode == nil {
		if existing, err := s.links.GetByNormalizedURL(ctx, domain.ID, normalized); err == nil {
			return s.toResult(domain, existing), nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, WrapInternal("dedup lookup", err)
		}
	}

	link, err := s.createWithCode(ctx, domain, normalized, item)
	if err != nil {
		return nil, err
	}
	return s.toResult(domain, link), nil
}

func (s *LinkService) createWithCode(ctx context.Context, domain *models.Domain, normalized string, item models.ShortenItem) (*models.Link, error) {
	if item.CustomCode != nil {
		if err := ValidateCustomCode(*item.CustomCode); err != nil {
			return nil, err
		}
		link, err := s.links.Create(ctx, &models.NewLink{
			Code: *item.CustomCode, LongURL: item.URL, NormalizedURL: normalized,
			DomainID: domain.ID, Permanent: item.Permanent, ExpiresAt: item.ExpiresAt,
		})
		if err != nil {
			if errors.Is(err, repository.ErrUniqueViolate) {
				return nil, ConflictError("custom code already in use", map[string]any{"code": *item.CustomCode})
			}
			return nil, WrapInternal("create link", err)
		}
		return link, nil
	}

	for attempt := 0; attempt < maxCodeGenerationAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, WrapInternal("generate code", err)
		}
		link, err := s.links.Create(ctx, &models.NewLink{
			Code: code, LongURL: item.URL, NormalizedURL: normalized,
			DomainID: domain.ID, Permanent: item.Permanent, ExpiresAt: item.ExpiresAt,
		})
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repository.ErrUniqueViolate) {
			return nil, WrapInternal("create link", err)
		}
	}
	return nil, InternalError("exhausted code generation attempts", map[string]any{"attempts": maxCodeGenerationAttempts})
}

func (s *LinkService) toResult(domain *models.Domain, link *models.Link) *models.ShortenResult {
	return &models.ShortenResult{
		ID:       link.ID,
		LongURL:  link.LongURL,
		Code:     link.Code,
		ShortURL: fmt.Sprintf("https://%s/%s", domain.Name, link.Code),
	}
}

// Resolve looks up the redirect target for domain+code, consulting the
// cache first (spec §4.6). A cache miss falls through to the store and
// populates the cache — positively on a hit, negatively on a genuine
// not-found — before returning.
func (s *LinkService) Resolve(ctx context.Context, domainName, code string) (*models.Link, error) {
	domain, err := s.resolveDomain(ctx, &domainName)
	if err != nil {
		return nil, err
	}

	link, cacheErr := s.cache.GetLink(ctx, domain.ID, code)
	switch {
	case cacheErr == nil:
		return s.checkRedirectable(link)
	case errors.Is(cacheErr, repository.ErrNotFound):
		return nil, NotFoundError("link not found", nil)
	case !errors.Is(cacheErr, repository.ErrCacheMiss):
		// The cache is an optimization, never a correctness dependency
		// (spec §4.6): a broken Redis falls through to Postgres instead
		// of failing the redirect.
		metrics.CacheErrors.Inc()
	}

	link, err = s.links.GetByCode(ctx, domain.ID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.cache.SetNegative(ctx, domain.ID, code)
			return nil, NotFoundError("link not found", nil)
		}
		return nil, WrapInternal("resolve link", err)
	}

	_ = s.cache.SetLink(ctx, domain.ID, code, link)
	return s.checkRedirectable(link)
}

func (s *LinkService) checkRedirectable(link *models.Link) (*models.Link, error) {
	if !link.Redirectable(time.Now()) {
		if link.IsDeleted() {
			return nil, GoneError("link has been deleted")
		}
		return nil, GoneError("link has expired")
	}
	return link, nil
}

func (s *LinkService) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "link")
	}
	return link, nil
}

// Patch applies a partial update and invalidates any cached entry for
// the link's old code so the next redirect re-reads the store.
func (s *LinkService) Patch(ctx context.Context, id int64, patch models.LinkPatch) (*models.Link, error) {
	current, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, "link")
	}

	if patch.URL != nil {
		normalized, err := NormalizeURL(*patch.URL)
		if err != nil {
			return nil, ValidationError("invalid url", map[string]any{"url": *patch.URL})
		}
		patch.NormalizedURL = &normalized
	}

	updated, err := s.links.Patch(ctx, id, patch)
	if err != nil {
		return nil, translateNotFound(err, "link")
	}

	_ = s.cache.Invalidate(ctx, current.DomainID, current.Code)
	return updated, nil
}

func (s *LinkService) Delete(ctx context.Context, id int64) error {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, "link")
	}
	if err := s.links.SoftDelete(ctx, id); err != nil {
		return translateNotFound(err, "link")
	}
	_ = s.cache.Invalidate(ctx, link.DomainID, link.Code)
	return nil
}

func (s *LinkService) List(ctx context.Context, filter models.LinkFilter) ([]models.LinkWithStats, int64, error) {
	results, total, err := s.links.List(ctx, filter)
	if err != nil {
		return nil, 0, WrapInternal("list links", err)
	}
	return results, total, nil
}
