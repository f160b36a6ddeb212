package bmlt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
)

type stubFetcher struct {
	records    []models.ServiceBodyRecord
	err        error
	configured bool
	calls      int
}

func (s *stubFetcher) Configured() bool { return s.configured }

func (s *stubFetcher) GetServiceBodies(_ context.Context) ([]models.ServiceBodyRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestResolveNameSpecialIDs(t *testing.T) {
	r := NewResolver(&stubFetcher{configured: true}, 0, zap.NewNop())

	assert.Equal(t, NameUnaffiliated, r.ResolveName(context.Background(), "0", models.SourceLocal))
	assert.Equal(t, NameUnknown, r.ResolveName(context.Background(), "", models.SourceLocal))
}

func TestResolveNameFromLocalFetch(t *testing.T) {
	fetcher := &stubFetcher{
		configured: true,
		records: []models.ServiceBodyRecord{
			{ID: "12", Name: "River Area"},
			{ID: "47", Name: "Hill Area"},
		},
	}
	r := NewResolver(fetcher, 0, zap.NewNop())

	assert.Equal(t, "River Area", r.ResolveName(context.Background(), "12", models.SourceLocal))
	assert.Equal(t, NameUnknown, r.ResolveName(context.Background(), "99", models.SourceLocal))

	// Single fetch per cache lifetime.
	r.ResolveName(context.Background(), "47", models.SourceLocal)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolveFailsClosed(t *testing.T) {
	fetcher := &stubFetcher{configured: true, err: errors.New("boom")}
	r := NewResolver(fetcher, 0, zap.NewNop())

	assert.Equal(t, NameUnknown, r.ResolveName(context.Background(), "12", models.SourceLocal))
	assert.Empty(t, r.GetAll(context.Background(), models.SourceLocal))

	// The failure is cached too; no retry storm.
	r.ResolveName(context.Background(), "12", models.SourceLocal)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolveUnconfiguredRootServer(t *testing.T) {
	fetcher := &stubFetcher{}
	r := NewResolver(fetcher, 0, zap.NewNop())

	assert.Empty(t, r.GetAll(context.Background(), models.SourceLocal))
	assert.Equal(t, 0, fetcher.calls)
}

func TestExternalServiceBodies(t *testing.T) {
	r := NewResolver(&stubFetcher{configured: true}, 0, zap.NewNop())

	r.UpdateExternalServiceBodies("src-1", []models.ServiceBodyRecord{{ID: "5", Name: "Coastal Area"}})

	assert.Equal(t, "Coastal Area", r.ResolveName(context.Background(), "5", "src-1"))
	assert.Equal(t, NameUnknown, r.ResolveName(context.Background(), "5", "src-2"))
	assert.Len(t, r.GetAll(context.Background(), "src-1"), 1)
}

func TestClearCacheForcesRefetch(t *testing.T) {
	fetcher := &stubFetcher{
		configured: true,
		records:    []models.ServiceBodyRecord{{ID: "1", Name: "Area One"}},
	}
	r := NewResolver(fetcher, 0, zap.NewNop())

	r.ResolveName(context.Background(), "1", models.SourceLocal)
	r.ClearCache()
	r.ResolveName(context.Background(), "1", models.SourceLocal)

	assert.Equal(t, 2, fetcher.calls)
}
