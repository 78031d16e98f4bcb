package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/resiflow/manifest/cmd/manifest/models"
)

// memStore is an in-memory implementation of every store interface,
// with transaction rollback emulated by snapshot-and-restore.
type memStore struct {
	mu        sync.Mutex
	versions  map[uuid.UUID]*models.ManifestVersion
	lines     map[uuid.UUID][]*models.WasteLine
	snapshots map[uuid.UUID]*models.HistorySnapshot
	seq       int64

	// failure injection: method name -> error
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		versions:  make(map[uuid.UUID]*models.ManifestVersion),
		lines:     make(map[uuid.UUID][]*models.WasteLine),
		snapshots: make(map[uuid.UUID]*models.HistorySnapshot),
		failures:  make(map[string]error),
	}
}

func (m *memStore) failOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

func (m *memStore) failure(method string) error {
	return m.failures[method]
}

func (m *memStore) CreateVersion(ctx context.Context, v *models.ManifestVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("CreateVersion"); err != nil {
		return err
	}
	for _, existing := range m.versions {
		if existing.LineageRootID == v.LineageRootID && existing.IsCurrent && v.IsCurrent {
			return fmt.Errorf("%w: lineage %s already has a current version", models.ErrNotCurrentVersion, v.LineageRootID)
		}
		if existing.VersionIndex == 1 && v.VersionIndex == 1 && existing.InternalSequence == v.InternalSequence {
			return models.ErrDuplicateSequence
		}
	}
	cp := *v
	m.versions[v.ID] = &cp
	return nil
}

func (m *memStore) GetVersion(ctx context.Context, id uuid.UUID) (*models.ManifestVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[id]
	if !ok {
		return nil, fmt.Errorf("%w: version %s", models.ErrNotFound, id)
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) CurrentVersion(ctx context.Context, lineageRootID uuid.UUID) (*models.ManifestVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions {
		if v.LineageRootID == lineageRootID && v.IsCurrent {
			cp := *v
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: no current version in lineage %s", models.ErrNotFound, lineageRootID)
}

func (m *memStore) ListLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.ManifestVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ManifestVersion
	for _, v := range m.versions {
		if v.LineageRootID == lineageRootID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionIndex > out[j].VersionIndex })
	return out, nil
}

func (m *memStore) UpdateHeader(ctx context.Context, v *models.ManifestVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("UpdateHeader"); err != nil {
		return err
	}
	if _, ok := m.versions[v.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *v
	m.versions[v.ID] = &cp
	return nil
}

func (m *memStore) SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("SetStatus"); err != nil {
		return err
	}
	v, ok := m.versions[id]
	if !ok {
		return models.ErrNotFound
	}
	v.Status = status
	return nil
}

func (m *memStore) Deactivate(ctx context.Context, id uuid.UUID, status models.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("Deactivate"); err != nil {
		return false, err
	}
	v, ok := m.versions[id]
	if !ok || !v.IsCurrent {
		return false, nil
	}
	v.IsCurrent = false
	v.Status = status
	return true, nil
}

func (m *memStore) SetPhysicalDocument(ctx context.Context, id uuid.UUID, doc []byte, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[id]
	if !ok {
		return models.ErrNotFound
	}
	v.PhysicalDocument = append([]byte(nil), doc...)
	v.PhysicalDocumentName = name
	return nil
}

func (m *memStore) CountByNumberPrefix(ctx context.Context, base string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, v := range m.versions {
		if v.VersionIndex == 1 && strings.HasPrefix(v.PublicNumber, base) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) NextInternalSequence(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("NextInternalSequence"); err != nil {
		return 0, err
	}
	m.seq++
	return m.seq, nil
}

func (m *memStore) LockNumberBase(ctx context.Context, base string) error {
	return nil
}

func (m *memStore) CreateLines(ctx context.Context, lines []*models.WasteLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("CreateLines"); err != nil {
		return err
	}
	for _, l := range lines {
		cp := *l
		m.lines[l.VersionID] = append(m.lines[l.VersionID], &cp)
	}
	return nil
}

func (m *memStore) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.WasteLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.WasteLine
	for _, l := range m.lines[versionID] {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStore) CreateSnapshot(ctx context.Context, s *models.HistorySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("CreateSnapshot"); err != nil {
		return err
	}
	for _, existing := range m.snapshots {
		if existing.LineageRootID == s.LineageRootID && existing.VersionNumber == s.VersionNumber {
			return fmt.Errorf("snapshot for version %d of lineage %s already exists", s.VersionNumber, s.LineageRootID)
		}
	}
	cp := *s
	m.snapshots[s.ID] = &cp
	return nil
}

func (m *memStore) GetSnapshot(ctx context.Context, id uuid.UUID) (*models.HistorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot %s", models.ErrNotFound, id)
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListByLineage(ctx context.Context, lineageRootID uuid.UUID) ([]*models.HistorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.HistorySnapshot
	for _, s := range m.snapshots {
		if s.LineageRootID == lineageRootID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (m *memStore) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return fmt.Errorf("%w: snapshot %s", models.ErrNotFound, id)
	}
	if s.VersionNumber == 1 {
		return models.ErrProtectedRecord
	}
	delete(m.snapshots, id)
	return nil
}

// WithinTx emulates transactional rollback: on error the entire store
// state is restored to the pre-transaction snapshot.
func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	versions := make(map[uuid.UUID]*models.ManifestVersion, len(m.versions))
	for k, v := range m.versions {
		cp := *v
		versions[k] = &cp
	}
	lines := make(map[uuid.UUID][]*models.WasteLine, len(m.lines))
	for k, ls := range m.lines {
		cps := make([]*models.WasteLine, len(ls))
		for i, l := range ls {
			cp := *l
			cps[i] = &cp
		}
		lines[k] = cps
	}
	snapshots := make(map[uuid.UUID]*models.HistorySnapshot, len(m.snapshots))
	for k, s := range m.snapshots {
		cp := *s
		snapshots[k] = &cp
	}
	seq := m.seq
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.versions = versions
		m.lines = lines
		m.snapshots = snapshots
		m.seq = seq
		m.mu.Unlock()
		return err
	}
	return nil
}
