package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxFetchItems caps how many rows a single feed fetch reads.
const MaxFetchItems = 500

// Item types.
const (
	TypeGoal    = "goal"
	TypeRoutine = "routine"
	TypeTask    = "task"
	TypeEvent   = "event"
	TypeNote    = "note"
)

// ValidTypes is the set of item types the schema accepts.
var ValidTypes = map[string]bool{
	TypeGoal:    true,
	TypeRoutine: true,
	TypeTask:    true,
	TypeEvent:   true,
	TypeNote:    true,
}

// Item is a user's personal record as stored. Priority, Due, Frequency and
// RequiredTime are free text typed by the user.
type Item struct {
	ID                string `json:"id" yaml:"id"`
	UserID            string `json:"user_id" yaml:"user_id"`
	Type              string `json:"type" yaml:"type"`
	Content           string `json:"content" yaml:"content"`
	ContentShort      string `json:"content_short,omitempty" yaml:"content_short"`
	Priority          string `json:"priority,omitempty" yaml:"priority"`
	Status            string `json:"status,omitempty" yaml:"status"`
	Due               string `json:"due,omitempty" yaml:"due"`
	Frequency         string `json:"frequency,omitempty" yaml:"frequency"`
	RequiredTime      string `json:"required_time,omitempty" yaml:"required_time"`
	PerformanceStreak int    `json:"performance_streak" yaml:"performance_streak"`
	Stage             string `json:"stage,omitempty" yaml:"stage"`
	Archived          bool   `json:"archived" yaml:"archived"`
	CreatedAt         int64  `json:"created_at" yaml:"created_at"`
	UpdatedAt         int64  `json:"updated_at" yaml:"updated_at"`
}

// Created returns CreatedAt as a time.
func (it Item) Created() time.Time {
	return time.UnixMilli(it.CreatedAt)
}

// Modified returns UpdatedAt as a time, falling back to CreatedAt when the
// item has never been modified.
func (it Item) Modified() time.Time {
	if it.UpdatedAt == 0 {
		return it.Created()
	}
	return time.UnixMilli(it.UpdatedAt)
}

// ItemFilter narrows FetchItems. Empty fields match everything.
type ItemFilter struct {
	Type   string
	Status string
	Limit  int
}

func (f ItemFilter) limit() int {
	if f.Limit <= 0 || f.Limit > MaxFetchItems {
		return MaxFetchItems
	}
	return f.Limit
}

const itemColumns = `id, user_id, type, content, content_short, priority, status, due, frequency,
	required_time, performance_streak, stage, archived, created_at, updated_at`

func validateItem(it *Item) error {
	if it.UserID == "" {
		return fmt.Errorf("user_id required")
	}
	it.Type = strings.ToLower(strings.TrimSpace(it.Type))
	if !ValidTypes[it.Type] {
		return fmt.Errorf("invalid item type %q", it.Type)
	}
	return nil
}

// CreateItem inserts a new item. A missing ID is generated; zero timestamps
// are set to now.
func (db *DB) CreateItem(it *Item) error {
	if err := validateItem(it); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UnixMilli()
	if it.CreatedAt == 0 {
		it.CreatedAt = now
	}
	if it.UpdatedAt == 0 {
		it.UpdatedAt = it.CreatedAt
	}

	_, err := db.Exec(`
		INSERT INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''),
			NULLIF(?, ''), ?, NULLIF(?, ''), ?, ?, ?)
	`, it.ID, it.UserID, it.Type, it.Content, it.ContentShort, it.Priority, it.Status, it.Due, it.Frequency,
		it.RequiredTime, it.PerformanceStreak, it.Stage, boolInt(it.Archived), it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetItem returns a live (not deleted) item by ID, or nil if not found.
func (db *DB) GetItem(id string) (*Item, error) {
	row := db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ? AND deleted_at IS NULL`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

// UpdateItem rewrites an item's editable fields and bumps updated_at.
func (db *DB) UpdateItem(it *Item) error {
	if err := validateItem(it); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE items SET type = ?, content = ?, content_short = NULLIF(?, ''), priority = NULLIF(?, ''),
			status = NULLIF(?, ''), due = NULLIF(?, ''), frequency = NULLIF(?, ''), required_time = NULLIF(?, ''),
			performance_streak = ?, stage = NULLIF(?, ''), archived = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`, it.Type, it.Content, it.ContentShort, it.Priority,
		it.Status, it.Due, it.Frequency, it.RequiredTime,
		it.PerformanceStreak, it.Stage, boolInt(it.Archived), now,
		it.ID, it.UserID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("no item %s for user %s", it.ID, it.UserID)
	}
	it.UpdatedAt = now
	return nil
}

// ArchiveItem hides an item from the feed without deleting it.
func (db *DB) ArchiveItem(userID, id string) error {
	return db.touchState(userID, id, `archived = 1`, "archive item")
}

// DeleteItem soft-deletes an item.
func (db *DB) DeleteItem(userID, id string) error {
	return db.touchState(userID, id, `deleted_at = ?`, "delete item", time.Now().UnixMilli())
}

func (db *DB) touchState(userID, id, set, op string, args ...any) error {
	now := time.Now().UnixMilli()
	args = append(args, now, id, userID)
	result, err := db.Exec(`UPDATE items SET `+set+`, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: no item %s for user %s", op, id, userID)
	}
	return nil
}

// FetchItems returns a user's live, non-archived items, newest first with ID
// as the tiebreak, capped at MaxFetchItems.
func (db *DB) FetchItems(ctx context.Context, userID string, f ItemFilter) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE user_id = ? AND archived = 0 AND deleted_at IS NULL`
	args := []any{userID}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ?`
	args = append(args, f.limit())

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return items, nil
}

// CountItems returns the number of live items a user has, archived included.
func (db *DB) CountItems(userID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM items WHERE user_id = ? AND deleted_at IS NULL`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (Item, error) {
	var it Item
	var archived int
	var contentShort, priority, status, due, frequency, requiredTime, stage sql.NullString
	err := s.Scan(&it.ID, &it.UserID, &it.Type, &it.Content, &contentShort, &priority, &status, &due,
		&frequency, &requiredTime, &it.PerformanceStreak, &stage, &archived, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.ContentShort = contentShort.String
	it.Priority = priority.String
	it.Status = status.String
	it.Due = due.String
	it.Frequency = frequency.String
	it.RequiredTime = requiredTime.String
	it.Stage = stage.String
	it.Archived = archived != 0
	return it, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
