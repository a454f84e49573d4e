// internal/domain/voucher/store.go
package voucher

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// RuleStore looks vouchers up by their normalized code. A missing code is
// reported as a NotFoundError.
type RuleStore interface {
	FindByCode(ctx context.Context, code string) (*Voucher, error)
}

// GormStore reads vouchers from the vouchers table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database backed rule store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByCode(ctx context.Context, code string) (*Voucher, error) {
	var v Voucher
	err := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("voucher", code)
		}
		return nil, apperror.Persistence("find voucher", err)
	}
	return &v, nil
}

// MemoryStore holds vouchers in memory
type MemoryStore struct {
	mu       sync.RWMutex
	vouchers map[string]Voucher
}

// NewMemoryStore creates a store holding the given vouchers
func NewMemoryStore(vouchers ...Voucher) *MemoryStore {
	s := &MemoryStore{vouchers: make(map[string]Voucher, len(vouchers))}
	for _, v := range vouchers {
		s.Put(v)
	}
	return s
}

// Put adds or replaces a voucher
func (s *MemoryStore) Put(v Voucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Code = NormalizeCode(v.Code)
	s.vouchers[v.Code] = v
}

func (s *MemoryStore) FindByCode(_ context.Context, code string) (*Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[NormalizeCode(code)]
	if !ok {
		return nil, apperror.NotFound("voucher", code)
	}
	return &v, nil
}

// DefaultVouchers is the seed set: a single ten percent code
func DefaultVouchers() []Voucher {
	return []Voucher{
		{
			Code:        "SAVE10",
			Description: "10% off your order",
			Kind:        KindPercentage,
			Value:       decimal.NewFromInt(10),
			IsActive:    true,
		},
	}
}

// FallbackStore consults primary first and falls back to secondary only for
// codes primary does not know. A code present in primary, even inactive,
// is never overridden.
type FallbackStore struct {
	primary   RuleStore
	secondary RuleStore
}

// NewFallbackStore chains two rule stores
func NewFallbackStore(primary, secondary RuleStore) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) FindByCode(ctx context.Context, code string) (*Voucher, error) {
	v, err := s.primary.FindByCode(ctx, code)
	var notFound *apperror.NotFoundError
	if err == nil || !errors.As(err, &notFound) {
		return v, err
	}
	return s.secondary.FindByCode(ctx, code)
}
