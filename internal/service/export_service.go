package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/repository/storage"
	"github.com/google/uuid"
)

// DefaultExportURLExpiry is how long an export download link stays valid
const DefaultExportURLExpiry = 15 * time.Minute

// ErrExportNotConfigured is returned when no object store is set up
var ErrExportNotConfigured = errors.New("export storage not configured")

// ExportResult points at an uploaded snapshot
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type exportFile struct {
	ExportedAt time.Time                 `json:"exportedAt"`
	Dashboard  *domain.DashboardDocument `json:"dashboard"`
	Summary    *domain.DashboardSummary  `json:"summary"`
}

// ExportService uploads ledger snapshots to object storage
type ExportService struct {
	ledger *LedgerService
	store  storage.ObjectStore
	expiry time.Duration
	now    func() time.Time
}

// NewExportService creates a new ExportService. store may be nil, which disables export.
func NewExportService(ledger *LedgerService, store storage.ObjectStore, expiry time.Duration) *ExportService {
	if expiry <= 0 {
		expiry = DefaultExportURLExpiry
	}
	return &ExportService{
		ledger: ledger,
		store:  store,
		expiry: expiry,
		now:    time.Now,
	}
}

// IsEnabled indicates whether export is available
func (s *ExportService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// Export uploads the caller's current snapshot and returns a temporary download link
func (s *ExportService) Export(ctx context.Context, cred domain.Credential) (*ExportResult, error) {
	if !s.IsEnabled() {
		return nil, ErrExportNotConfigured
	}

	snapshot, err := s.ledger.Snapshot(ctx, cred)
	if err != nil {
		return nil, err
	}
	doc, err := domain.NewDashboardDocument(snapshot)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(exportFile{
		ExportedAt: now,
		Dashboard:  doc,
		Summary:    BuildSummary(snapshot),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := exportKey(cred.Subject, now)
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(body), "application/json", int64(len(body))); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.store.GeneratePresignedURL(ctx, key, s.expiry)
	if err != nil {
		return nil, err
	}

	return &ExportResult{Key: key, URL: url, ExpiresAt: now.Add(s.expiry)}, nil
}

// exportKey builds exports/<subject>/<timestamp>-<id>.json with the subject reduced to safe characters
func exportKey(subject string, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
	return fmt.Sprintf("exports/%s/%s-%s.json", safe, at.Format("20060102T150405Z"), uuid.NewString()[:8])
}
