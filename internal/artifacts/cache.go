package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
)

// ErrMiss is returned when no artifact is cached for a document ID.
var ErrMiss = errors.New("artifacts: cache miss")

const (
	pdfKeyPrefix  = "invoice:pdf:"
	metaKeyPrefix = "invoice:meta:"
)

type meta struct {
	Filename    string          `json:"filename"`
	ContentType string          `json:"contentType"`
	Variant     invoice.Variant `json:"variant"`
	Pages       int             `json:"pages"`
}

// Cache keeps rendered invoices in Redis keyed by document ID. A nil Cache
// or one without a client always misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func pdfKey(id uuid.UUID) string  { return pdfKeyPrefix + id.String() }
func metaKey(id uuid.UUID) string { return metaKeyPrefix + id.String() }

// Get loads a cached artifact.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (export.Artifact, error) {
	if c == nil || c.client == nil {
		return export.Artifact{}, ErrMiss
	}
	values, err := c.client.MGet(ctx, metaKey(id), pdfKey(id)).Result()
	if err != nil {
		return export.Artifact{}, fmt.Errorf("artifacts: get %s: %w", id, err)
	}
	rawMeta, okMeta := values[0].(string)
	rawPDF, okPDF := values[1].(string)
	if !okMeta || !okPDF {
		return export.Artifact{}, ErrMiss
	}
	var m meta
	if err := json.Unmarshal([]byte(rawMeta), &m); err != nil {
		return export.Artifact{}, fmt.Errorf("artifacts: decode meta %s: %w", id, err)
	}
	return export.Artifact{
		ID:          id,
		Filename:    m.Filename,
		ContentType: m.ContentType,
		Data:        []byte(rawPDF),
		Variant:     m.Variant,
		Pages:       m.Pages,
	}, nil
}

// Put stores the artifact bytes and metadata with the cache TTL.
func (c *Cache) Put(ctx context.Context, art export.Artifact) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(meta{
		Filename:    art.Filename,
		ContentType: art.ContentType,
		Variant:     art.Variant,
		Pages:       art.Pages,
	})
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, pdfKey(art.ID), art.Data, c.ttl)
		pipe.Set(ctx, metaKey(art.ID), raw, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("artifacts: put %s: %w", art.ID, err)
	}
	return nil
}

// Invalidate drops a cached artifact.
func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, pdfKey(id), metaKey(id)).Err()
}
