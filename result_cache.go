package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Should be safe to use concurrently.
type ResultCache interface {
	// Store the serialized extraction result under the given digest.
	// Should not return an error when the value already exists,
	// it should just overwrite in that case.
	StoreResult(digest string, payload string) error

	// Retrieve the serialized result for the given digest and return an
	// error in any case where it fails to do so, including a cache miss.
	RetrieveResult(digest string) (string, error)

	// Remove the cached result. A missing value is also an error.
	RemoveResult(digest string) error
}

// ContentDigest is the cache key for a document: the document type plus a
// hash over the upload and any supplied OCR text, so the same bytes sent for
// a different document type never collide.
func ContentDigest(docType string, content []byte, ocrText string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte(ocrText))
	return fmt.Sprintf("%s:%s", docType, hex.EncodeToString(h.Sum(nil)))
}

// ------------------------------------------------------------------------------

type InMemoryResultCache struct {
	ResultMap map[string]string
	mutex     sync.Mutex
}

func NewInMemoryResultCache() *InMemoryResultCache {
	return &InMemoryResultCache{
		ResultMap: make(map[string]string),
	}
}

func (c *InMemoryResultCache) StoreResult(digest string, payload string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.ResultMap[digest] = payload
	return nil
}

func (c *InMemoryResultCache) RetrieveResult(digest string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if payload, ok := c.ResultMap[digest]; ok {
		return payload, nil
	}
	return "", fmt.Errorf("no cached result for %s", digest)
}

func (c *InMemoryResultCache) RemoveResult(digest string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.ResultMap[digest]; ok {
		delete(c.ResultMap, digest)
		return nil
	}
	return fmt.Errorf("failed to remove result for %s, because it wasn't there", digest)
}

// ------------------------------------------------------------------------------

type RedisResultCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisResultCache(client *redis.Client, namespace string, ttl time.Duration) *RedisResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &RedisResultCache{client: client, namespace: namespace, ttl: ttl}
}

const DefaultResultTTL time.Duration = 24 * time.Hour

func createKey(namespace, digest string) string {
	return fmt.Sprintf("%s:result:%s", namespace, digest)
}

func (c *RedisResultCache) StoreResult(digest string, payload string) error {
	ctx := context.Background()
	return c.client.Set(ctx, createKey(c.namespace, digest), payload, c.ttl).Err()
}

func (c *RedisResultCache) RetrieveResult(digest string) (string, error) {
	ctx := context.Background()
	return c.client.Get(ctx, createKey(c.namespace, digest)).Result()
}

func (c *RedisResultCache) RemoveResult(digest string) error {
	ctx := context.Background()
	return c.client.Del(ctx, createKey(c.namespace, digest)).Err()
}
