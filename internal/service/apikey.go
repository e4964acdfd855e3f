package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"userhub/internal/config"
	"userhub/internal/logger"
	"userhub/pkg/timer"
	"userhub/pkg/util"
)

// apiKeyCacheEntry with expiration
type apiKeyCacheEntry struct {
	expiresAt time.Time
}

// APIKeyService checks the service API key against its configured bcrypt
// hash. Successful checks are cached so bcrypt runs once per key per TTL.
type APIKeyService struct {
	hash          string
	log           *logger.Logger
	keyCache      map[string]*apiKeyCacheEntry // sha256(plainKey) -> cached result
	keyCacheMutex sync.RWMutex
	cacheTTL      time.Duration
	now           func() time.Time
}

// DefaultAPIKeyCacheTTL bounds how long a verified key skips bcrypt.
const DefaultAPIKeyCacheTTL = 5 * time.Minute

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(cfg *config.Config, log *logger.Logger) *APIKeyService {
	if log == nil {
		log = logger.Nop()
	}
	return &APIKeyService{
		hash:     cfg.Auth.APIKeyHash,
		log:      log.With("service", "APIKeyService"),
		keyCache: make(map[string]*apiKeyCacheEntry),
		cacheTTL: DefaultAPIKeyCacheTTL,
		now:      time.Now,
	}
}

// Enabled reports whether a key hash is configured.
func (s *APIKeyService) Enabled() bool {
	return s.hash != ""
}

// ValidateKey verifies a plain key against the configured hash.
func (s *APIKeyService) ValidateKey(plainKey string) bool {
	defer timer.Track(s.log, "ValidateKey")()
	if !s.Enabled() {
		return true
	}
	if plainKey == "" {
		return false
	}

	id := cacheID(plainKey)
	s.keyCacheMutex.RLock()
	entry, exists := s.keyCache[id]
	s.keyCacheMutex.RUnlock()
	if exists && s.now().Before(entry.expiresAt) {
		return true
	}

	if !util.VerifyAPIKey(plainKey, s.hash) {
		s.log.Warn("api key rejected")
		return false
	}

	s.keyCacheMutex.Lock()
	s.keyCache[id] = &apiKeyCacheEntry{expiresAt: s.now().Add(s.cacheTTL)}
	s.keyCacheMutex.Unlock()
	return true
}

// InvalidateCache drops every cached verification.
func (s *APIKeyService) InvalidateCache() {
	s.keyCacheMutex.Lock()
	s.keyCache = make(map[string]*apiKeyCacheEntry)
	s.keyCacheMutex.Unlock()
}

func cacheID(plainKey string) string {
	sum := sha256.Sum256([]byte(plainKey))
	return hex.EncodeToString(sum[:])
}
