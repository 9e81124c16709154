package badger

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

func TestAuditAppendAndGet(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { auditRepo.Close(); chunkRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entry := &core.AuditEntry{
		UserId:  "alice",
		Action:  "document_uploaded",
		Details: "report.pdf",
	}

	added, err := auditRepo.AppendEntries(ctx, entry)
	if err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero sequence ID")
	}
	if added[0].Timestamp.IsZero() {
		t.Fatal("Expected timestamp to be set")
	}

	entries, err := auditRepo.GetEntries(ctx, storage.AuditFilter{})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Action != "document_uploaded" {
		t.Fatalf("Expected action to round-trip, got '%s'", entries[0].Action)
	}
}

func TestAuditFilters(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { auditRepo.Close(); chunkRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	entries := []*core.AuditEntry{
		{UserId: "alice", Action: "document_uploaded", Timestamp: now.Add(-3 * time.Hour)},
		{UserId: "bob", Action: "chat_request", Timestamp: now.Add(-2 * time.Hour)},
		{UserId: "alice", Action: "chat_request", Timestamp: now.Add(-1 * time.Hour)},
		{UserId: "bob", Action: "document_deleted", Timestamp: now},
	}

	if _, err := auditRepo.AppendEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to append entries: %v", err)
	}

	// Filter by user
	aliceEntries, err := auditRepo.GetEntries(ctx, storage.AuditFilter{UserId: "alice"})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(aliceEntries) != 2 {
		t.Fatalf("Expected 2 entries for alice, got %d", len(aliceEntries))
	}

	// Filter by action
	chats, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Action: "chat_request"})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("Expected 2 chat entries, got %d", len(chats))
	}

	// Time range
	recent, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Since: now.Add(-90 * time.Minute)})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 recent entries, got %d", len(recent))
	}

	// Limit with newest-first ordering
	limited, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(limited))
	}
	if limited[0].Action != "document_deleted" {
		t.Fatalf("Expected newest entry first, got '%s'", limited[0].Action)
	}
}

func TestAuditOffsetPaging(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { auditRepo.Close(); chunkRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	entries := []*core.AuditEntry{
		{UserId: "alice", Action: "first", Timestamp: now.Add(-3 * time.Hour)},
		{UserId: "alice", Action: "second", Timestamp: now.Add(-2 * time.Hour)},
		{UserId: "alice", Action: "third", Timestamp: now.Add(-1 * time.Hour)},
		{UserId: "alice", Action: "fourth", Timestamp: now},
	}
	if _, err := auditRepo.AppendEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to append entries: %v", err)
	}

	// Offset skips the newest entries; Limit bounds the page.
	page, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(page))
	}
	if page[0].Action != "third" || page[1].Action != "second" {
		t.Fatalf("Expected page [third second], got [%s %s]", page[0].Action, page[1].Action)
	}

	// Offset counts matching entries, so filters apply before paging
	filtered, err := auditRepo.GetEntries(ctx, storage.AuditFilter{UserId: "alice", Offset: 3})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(filtered))
	}
	if filtered[0].Action != "first" {
		t.Fatalf("Expected oldest entry, got '%s'", filtered[0].Action)
	}

	// An offset past the end yields an empty page
	empty, err := auditRepo.GetEntries(ctx, storage.AuditFilter{Offset: 10})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no entries, got %d", len(empty))
	}
}

func TestAuditCounts(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { auditRepo.Close(); chunkRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entries := []*core.AuditEntry{
		{UserId: "alice", Action: "document_uploaded"},
		{UserId: "alice", Action: "document_uploaded"},
		{UserId: "bob", Action: "chat_request"},
	}

	if _, err := auditRepo.AppendEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to append entries: %v", err)
	}

	total, err := auditRepo.CountEntries(ctx)
	if err != nil {
		t.Fatalf("Failed to count entries: %v", err)
	}
	if total != 3 {
		t.Fatalf("Expected 3 entries, got %d", total)
	}

	counts, err := auditRepo.ActionCounts(ctx)
	if err != nil {
		t.Fatalf("Failed to count actions: %v", err)
	}
	if counts["document_uploaded"] != 2 || counts["chat_request"] != 1 {
		t.Fatalf("Unexpected action counts: %v", counts)
	}
}

func TestAuditDeleteEntriesByUser(t *testing.T) {
	docRepo, chunkRepo, auditRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { auditRepo.Close(); chunkRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entries := []*core.AuditEntry{
		{UserId: "alice", Action: "document_uploaded"},
		{UserId: "alice", Action: "chat_request"},
		{UserId: "bob", Action: "chat_request"},
	}

	if _, err := auditRepo.AppendEntries(ctx, entries...); err != nil {
		t.Fatalf("Failed to append entries: %v", err)
	}

	deleted, err := auditRepo.DeleteEntriesByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to delete entries: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Expected 2 deletions, got %d", deleted)
	}

	remaining, err := auditRepo.GetEntries(ctx, storage.AuditFilter{})
	if err != nil {
		t.Fatalf("Failed to get entries: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 remaining entry, got %d", len(remaining))
	}
	if remaining[0].UserId != "bob" {
		t.Fatalf("Expected bob's entry to survive, got '%s'", remaining[0].UserId)
	}
}
