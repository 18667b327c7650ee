package vendormap

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "vendormap.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReplaceStreamsAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.ReplaceStreams(ctx, "vendor-a", []string{"Copper", "Steel", "Copper", "  ", "Steel"})
	if err != nil {
		t.Fatalf("failed to replace streams: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 streams after dedup, got %d", count)
	}

	streams, err := store.StreamsForVendor(ctx, "vendor-a")
	if err != nil {
		t.Fatalf("failed to fetch streams: %v", err)
	}
	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}
	if streams[0] != "Copper" || streams[1] != "Steel" {
		t.Fatalf("unexpected streams: %v", streams)
	}

	vendors, err := store.ListVendors(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list vendors: %v", err)
	}
	if len(vendors) != 1 || vendors[0].VendorID != "vendor-a" || vendors[0].StreamCount != 2 {
		t.Fatalf("unexpected vendor summaries: %+v", vendors)
	}
}

func TestReplaceStreamsOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.ReplaceStreams(ctx, "vendor-a", []string{"Copper", "Steel"}); err != nil {
		t.Fatalf("failed to seed streams: %v", err)
	}
	if _, err := store.ReplaceStreams(ctx, "vendor-a", []string{"Aluminum"}); err != nil {
		t.Fatalf("failed to replace streams: %v", err)
	}

	streams, err := store.StreamsForVendor(ctx, "vendor-a")
	if err != nil {
		t.Fatalf("failed to fetch streams: %v", err)
	}
	if len(streams) != 1 || streams[0] != "Aluminum" {
		t.Fatalf("expected replacement to win, got %v", streams)
	}
}

func TestDeleteVendor(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.ReplaceStreams(ctx, "vendor-a", []string{"Copper"}); err != nil {
		t.Fatalf("failed to seed streams: %v", err)
	}

	removed, err := store.DeleteVendor(ctx, "vendor-a")
	if err != nil {
		t.Fatalf("failed to delete vendor: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed row, got %d", removed)
	}

	streams, err := store.StreamsForVendor(ctx, "vendor-a")
	if err != nil {
		t.Fatalf("failed to fetch streams: %v", err)
	}
	if len(streams) != 0 {
		t.Fatalf("expected no streams after delete, got %v", streams)
	}
}

func TestPresetLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.UpsertPreset(ctx, "Overdue lots", "Lots past due", "processinglot", `{"status":"overdue"}`)
	if err != nil {
		t.Fatalf("failed to create preset: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive preset id, got %d", id)
	}

	got, err := store.GetPreset(ctx, id)
	if err != nil {
		t.Fatalf("failed to fetch preset: %v", err)
	}
	if got.Name != "Overdue lots" || got.RecordType != "processinglot" {
		t.Fatalf("unexpected preset: %+v", got)
	}

	// Upsert on the same name updates instead of duplicating.
	sameID, err := store.UpsertPreset(ctx, "Overdue lots", "Updated", "processedmaterial", `{"status":"all"}`)
	if err != nil {
		t.Fatalf("failed to upsert preset: %v", err)
	}

	items, err := store.ListPresets(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list presets: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 preset after upsert, got %d", len(items))
	}
	if items[0].Description != "Updated" || items[0].RecordType != "processedmaterial" {
		t.Fatalf("expected upsert to update fields, got %+v", items[0])
	}

	removed, err := store.DeletePreset(ctx, sameID)
	if err != nil {
		t.Fatalf("failed to delete preset: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed preset, got %d", removed)
	}

	if _, err := store.GetPreset(ctx, sameID); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestUpsertPresetValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpsertPreset(ctx, "", "", "processinglot", `{}`); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := store.UpsertPreset(ctx, "x", "", "shipment", `{}`); err == nil {
		t.Fatalf("expected error for unsupported record type")
	}
	if _, err := store.UpsertPreset(ctx, "x", "", "processinglot", ""); err == nil {
		t.Fatalf("expected error for empty config")
	}
}
