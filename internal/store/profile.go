package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// GetProfile returns the value stored under key. ok is false when the key
// is not set.
func (q *Queries) GetProfile(key string) (value string, ok bool, err error) {
	err = q.q.QueryRow("SELECT value FROM profile WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetProfile stores value under key, replacing any previous value.
func (q *Queries) SetProfile(key, value string) error {
	_, err := q.q.Exec(
		"INSERT INTO profile (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting profile %s: %w", key, err)
	}
	return nil
}

// SetProfileValues stores every pair in values in key order.
func (q *Queries) SetProfileValues(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := q.SetProfile(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// AllProfile returns the whole profile table.
func (q *Queries) AllProfile() (map[string]string, error) {
	rows, err := q.q.Query("SELECT key, value FROM profile")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
