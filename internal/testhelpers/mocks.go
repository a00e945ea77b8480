package testhelpers

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

// MockTokenValidator is a testify mock of the auth middleware's validator.
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// MockArchiver stands in for the S3 export archive.
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) error {
	args := m.Called(ctx, objectKey, body, contentType)
	return args.Error(0)
}

func (m *MockArchiver) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expiration)
	return args.String(0), args.Error(1)
}

// MockSummaryCache records kitchen summary invalidations.
type MockSummaryCache struct {
	mock.Mock
}

func (m *MockSummaryCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}
