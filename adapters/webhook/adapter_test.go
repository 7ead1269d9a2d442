package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanquote/core/pricing"
)

func testSnapshot(t *testing.T) *pricing.Snapshot {
	t.Helper()
	store, err := pricing.NewStore(pricing.DefaultSettings(), nil, pricing.SourceDefault)
	require.NoError(t, err)
	return store.Snapshot()
}

func testConfig(endpoint string, provider Provider) *Config {
	cfg := DefaultConfig(provider)
	cfg.Endpoint = endpoint
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestSendCustomSigned(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.True(t, VerifySignature(body, r.Header.Get(SignatureHeader), "s3cret"))
		assert.NoError(t, json.Unmarshal(body, &got))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, ProviderCustom)
	cfg.Secret = "s3cret"
	snap := testSnapshot(t)

	err := New(cfg).Send(context.Background(), NewPayload(snap, []pricing.Section{pricing.SectionGlass}))
	require.NoError(t, err)
	assert.Equal(t, EventPublished, got.Event)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, snap.ContentHash().Hex(), got.ContentHash)
	assert.Equal(t, []string{"glass"}, got.Sections)
}

func TestSendRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	err := New(testConfig(srv.URL, ProviderCustom)).Send(context.Background(), NewPayload(testSnapshot(t), nil))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, ProviderCustom)
	cfg.RetryCount = 1
	err := New(cfg).Send(context.Background(), NewPayload(testSnapshot(t), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestSlackFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL, ProviderSlack)
	cfg.Secret = "ignored"
	err := New(cfg).Send(context.Background(), NewPayload(testSnapshot(t), []pricing.Section{pricing.SectionPV}))
	require.NoError(t, err)

	attachments := got["attachments"].([]any)
	require.Len(t, attachments, 1)
	assert.Equal(t, "Pricing version 1 published (pv)", attachments[0].(map[string]any)["title"])
}

// Publishing through a store delivers a notification without blocking the write.
func TestPublishHookDelivers(t *testing.T) {
	delivered := make(chan Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		delivered <- p
	}))
	defer srv.Close()

	adapter := New(testConfig(srv.URL, ProviderCustom))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go adapter.Run(ctx)

	store, err := pricing.NewStore(pricing.DefaultSettings(), nil, pricing.SourceDefault,
		pricing.WithPublishHook(adapter.ObservePublish))
	require.NoError(t, err)
	_, err = store.CreateCity(ctx, pricing.CityPricing{CityName: "Bonn"})
	require.NoError(t, err)

	select {
	case p := <-delivered:
		assert.Equal(t, uint64(2), p.Version)
		assert.Equal(t, []string{"cities"}, p.Sections)
		assert.Equal(t, 1, p.Cities)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestQueueFullDrops(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0", ProviderCustom)
	cfg.QueueSize = 1
	adapter := New(cfg)
	snap := testSnapshot(t)

	adapter.ObservePublish(snap, nil)
	adapter.ObservePublish(snap, nil)
	assert.Len(t, adapter.queue, 1)
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderCustom, p)

	p, err = ParseProvider(" Slack ")
	require.NoError(t, err)
	assert.Equal(t, ProviderSlack, p)

	_, err = ParseProvider("github")
	assert.Error(t, err)
}
