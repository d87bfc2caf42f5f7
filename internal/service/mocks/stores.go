// Package mocks provides in-memory store doubles used by the service
// layer's unit tests, mirroring the interfaces in internal/repository
// without touching Postgres or Redis.
package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

type LinkStore struct {
	mu      sync.RWMutex
	byID    map[int64]*models.Link
	nextID  int64
}

func NewLinkStore() *LinkStore {
	return &LinkStore{byID: make(map[int64]*models.Link)}
}

func (m *LinkStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[int64]*models.Link)
	m.nextID = 0
}

func (m *LinkStore) Create(ctx context.Context, link *models.NewLink) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.byID {
		if l.DeletedAt == nil && l.DomainID == link.DomainID && l.Code == link.Code {
			return nil, repository.ErrUniqueViolate
		}
	}
	m.nextID++
	l := &models.Link{
		ID:            m.nextID,
		Code:          link.Code,
		LongURL:       link.LongURL,
		NormalizedURL: link.NormalizedURL,
		DomainID:      link.DomainID,
		Permanent:     link.Permanent,
		ExpiresAt:     link.ExpiresAt,
		CreatedAt:     time.Now(),
	}
	m.byID[l.ID] = l
	return l, nil
}

func (m *LinkStore) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

// GetByCode returns soft-deleted rows too, matching the pgx-backed
// store: callers distinguish "deleted" from "never existed" themselves.
func (m *LinkStore) GetByCode(ctx context.Context, domainID int64, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.byID {
		if l.DomainID == domainID && l.Code == code {
			copied := *l
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *LinkStore) GetByNormalizedURL(ctx context.Context, domainID int64, normalizedURL string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.byID {
		if l.DomainID == domainID && l.NormalizedURL == normalizedURL && l.DeletedAt == nil {
			copied := *l
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *LinkStore) Patch(ctx context.Context, id int64, patch models.LinkPatch) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.URL != nil {
		l.LongURL = *patch.URL
	}
	if patch.NormalizedURL != nil {
		l.NormalizedURL = *patch.NormalizedURL
	}
	if patch.ExpiresAt != nil {
		l.ExpiresAt = *patch.ExpiresAt
	}
	if patch.Permanent != nil {
		l.Permanent = *patch.Permanent
	}
	if patch.Restore {
		l.DeletedAt = nil
	}
	copied := *l
	return &copied, nil
}

func (m *LinkStore) SoftDelete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.byID[id]
	if !ok || l.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	l.DeletedAt = &now
	return nil
}

func (m *LinkStore) List(ctx context.Context, filter models.LinkFilter) ([]models.LinkWithStats, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.LinkWithStats
	for _, l := range m.byID {
		if l.DeletedAt != nil {
			continue
		}
		out = append(out, models.LinkWithStats{Link: *l})
	}
	return out, int64(len(out)), nil
}

func (m *LinkStore) CountByDomain(ctx context.Context, domainID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, l := range m.byID {
		if l.DomainID == domainID && l.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

type DomainStore struct {
	mu     sync.RWMutex
	byID   map[int64]*models.Domain
	nextID int64
}

func NewDomainStore() *DomainStore {
	return &DomainStore{byID: make(map[int64]*models.Domain)}
}

func (m *DomainStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[int64]*models.Domain)
	m.nextID = 0
}

func (m *DomainStore) Create(ctx context.Context, nd *models.NewDomain) (*models.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.byID {
		if d.DeletedAt == nil && d.Name == nd.Name {
			return nil, repository.ErrUniqueViolate
		}
	}
	if nd.IsDefault {
		for _, d := range m.byID {
			if d.DeletedAt == nil {
				d.IsDefault = false
			}
		}
	}
	m.nextID++
	now := time.Now()
	d := &models.Domain{
		ID: m.nextID, Name: nd.Name, IsDefault: nd.IsDefault, IsActive: true,
		Description: nd.Description, CreatedAt: now, UpdatedAt: now,
	}
	m.byID[d.ID] = d
	return d, nil
}

func (m *DomainStore) GetByID(ctx context.Context, id int64) (*models.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.byID[id]
	if !ok || d.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *DomainStore) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.byID {
		if d.Name == name && d.DeletedAt == nil {
			copied := *d
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *DomainStore) GetDefault(ctx context.Context) (*models.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.byID {
		if d.IsDefault && d.DeletedAt == nil {
			copied := *d
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *DomainStore) List(ctx context.Context) ([]models.Domain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Domain
	for _, d := range m.byID {
		if d.DeletedAt == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *DomainStore) Patch(ctx context.Context, id int64, patch models.DomainPatch) (*models.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok || d.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		d.Name = *patch.Name
	}
	if patch.IsActive != nil {
		d.IsActive = *patch.IsActive
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	d.UpdatedAt = time.Now()
	copied := *d
	return &copied, nil
}

func (m *DomainStore) SoftDelete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok || d.DeletedAt != nil || d.IsDefault {
		return repository.ErrNotFound
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

func (m *DomainStore) SetDefault(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.byID[id]
	if !ok || target.DeletedAt != nil {
		return repository.ErrNotFound
	}
	for _, d := range m.byID {
		if d.DeletedAt == nil {
			d.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

type ClickStore struct {
	mu     sync.RWMutex
	clicks []*models.Click
	nextID int64
}

func NewClickStore() *ClickStore {
	return &ClickStore{}
}

func (m *ClickStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = nil
	m.nextID = 0
}

func (m *ClickStore) Record(ctx context.Context, click *models.NewClick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.clicks = append(m.clicks, &models.Click{
		ID: m.nextID, LinkID: click.LinkID, ClickedAt: time.Now(),
		IP: click.IP, UserAgent: click.UserAgent, Referer: click.Referer,
	})
	return nil
}

func (m *ClickStore) Stats(ctx context.Context, linkID int64) (*models.ClickStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &models.ClickStats{LinkID: linkID}
	seen := map[string]bool{}
	for _, c := range m.clicks {
		if c.LinkID != linkID {
			continue
		}
		stats.TotalClicks++
		if c.IP != nil && !seen[*c.IP] {
			seen[*c.IP] = true
			stats.UniqueClicks++
		}
	}
	return stats, nil
}

func (m *ClickStore) DailyStats(ctx context.Context, linkID int64, days int) ([]models.DailyClickStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	byDay := map[string]int64{}
	for _, c := range m.clicks {
		if c.LinkID != linkID || c.ClickedAt.Before(cutoff) {
			continue
		}
		key := c.ClickedAt.Format("2006-01-02")
		byDay[key]++
	}
	var out []models.DailyClickStats
	for day, count := range byDay {
		d, _ := time.Parse("2006-01-02", day)
		out = append(out, models.DailyClickStats{Date: d, Clicks: count})
	}
	return out, nil
}

type TokenStore struct {
	mu     sync.RWMutex
	byID   map[int64]*models.ApiToken
	nextID int64
}

func NewTokenStore() *TokenStore {
	return &TokenStore{byID: make(map[int64]*models.ApiToken)}
}

func (m *TokenStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[int64]*models.ApiToken)
	m.nextID = 0
}

func (m *TokenStore) Create(ctx context.Context, name, tokenHash string) (*models.ApiToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byID {
		if t.TokenHash == tokenHash {
			return nil, repository.ErrUniqueViolate
		}
	}
	m.nextID++
	t := &models.ApiToken{ID: m.nextID, Name: name, TokenHash: tokenHash, CreatedAt: time.Now()}
	m.byID[t.ID] = t
	return t, nil
}

func (m *TokenStore) GetByHash(ctx context.Context, tokenHash string) (*models.ApiToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.byID {
		if t.TokenHash == tokenHash {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *TokenStore) TouchLastUsed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	t.LastUsedAt = &now
	return nil
}

func (m *TokenStore) Revoke(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.RevokedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	t.RevokedAt = &now
	return nil
}

func (m *TokenStore) List(ctx context.Context) ([]models.ApiToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.ApiToken
	for _, t := range m.byID {
		out = append(out, *t)
	}
	return out, nil
}

type Cache struct {
	mu        sync.RWMutex
	positives map[string]*models.Link
	negatives map[string]bool
}

func NewCache() *Cache {
	return &Cache{positives: make(map[string]*models.Link), negatives: make(map[string]bool)}
}

func (m *Cache) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positives = make(map[string]*models.Link)
	m.negatives = make(map[string]bool)
}

func key(domainID int64, code string) string {
	return fmt.Sprintf("%d:%s", domainID, code)
}

func (m *Cache) GetLink(ctx context.Context, domainID int64, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := key(domainID, code)
	if l, ok := m.positives[k]; ok {
		copied := *l
		return &copied, nil
	}
	if m.negatives[k] {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrCacheMiss
}

func (m *Cache) SetLink(ctx context.Context, domainID int64, code string, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *link
	m.positives[key(domainID, code)] = &copied
	return nil
}

func (m *Cache) SetNegative(ctx context.Context, domainID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.negatives[key(domainID, code)] = true
	return nil
}

func (m *Cache) Invalidate(ctx context.Context, domainID int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(domainID, code)
	delete(m.positives, k)
	delete(m.negatives, k)
	return nil
}

func (m *Cache) Ping(ctx context.Context) error { return nil }
