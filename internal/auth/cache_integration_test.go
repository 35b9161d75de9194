//go:build integration

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"botregistry/internal/auth"
	id "botregistry/pkg/domain"
	"botregistry/pkg/testutil/containers"
)

// countingProvider records how often the inner provider is consulted.
type countingProvider struct {
	identity *auth.Identity
	calls    int
}

func (p *countingProvider) GetIdentity(_ context.Context, apiKey string) (*auth.Identity, error) {
	p.calls++
	if apiKey == "known-key" {
		return p.identity, nil
	}
	return nil, nil
}

type CacheSuite struct {
	suite.Suite
	ctx   context.Context
	redis *containers.RedisContainer
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *CacheSuite) newCached(inner auth.ClaimsProvider, ttl time.Duration) *auth.CachedProvider {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewCachedProvider(inner, s.redis.Client, ttl, logger)
}

func (s *CacheSuite) TestHitSkipsInnerProvider() {
	inner := &countingProvider{identity: &auth.Identity{ParticipantID: id.NewParticipantID()}}
	cached := s.newCached(inner, time.Minute)

	first, err := cached.GetIdentity(s.ctx, "known-key")
	s.Require().NoError(err)
	s.Require().NotNil(first)

	second, err := cached.GetIdentity(s.ctx, "known-key")
	s.Require().NoError(err)
	s.Require().NotNil(second)
	s.Equal(first.ParticipantID, second.ParticipantID)
	s.Equal(1, inner.calls)
}

func (s *CacheSuite) TestUnknownKeyIsNeverCached() {
	inner := &countingProvider{}
	cached := s.newCached(inner, time.Minute)

	for i := 0; i < 3; i++ {
		identity, err := cached.GetIdentity(s.ctx, "unknown-key")
		s.Require().NoError(err)
		s.Nil(identity)
	}
	s.Equal(3, inner.calls)
}

func (s *CacheSuite) TestEntryExpires() {
	inner := &countingProvider{identity: &auth.Identity{Admin: true}}
	cached := s.newCached(inner, 100*time.Millisecond)

	_, err := cached.GetIdentity(s.ctx, "known-key")
	s.Require().NoError(err)

	time.Sleep(200 * time.Millisecond)

	identity, err := cached.GetIdentity(s.ctx, "known-key")
	s.Require().NoError(err)
	s.Require().NotNil(identity)
	s.True(identity.IsAdmin())
	s.Equal(2, inner.calls)
}

func (s *CacheSuite) TestRawKeyNeverStored() {
	inner := &countingProvider{identity: &auth.Identity{Admin: true}}
	cached := s.newCached(inner, time.Minute)

	_, err := cached.GetIdentity(s.ctx, "known-key")
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(s.ctx, "*known-key*").Result()
	s.Require().NoError(err)
	s.Empty(keys)

	keys, err = s.redis.Client.Keys(s.ctx, "botregistry:identity:*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1)
}
