package prefs

const createTableSQL = `
CREATE TABLE IF NOT EXISTS prefs (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
)
`

const upsertPrefSQL = `
INSERT INTO prefs (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`

const getPrefSQL = `SELECT value FROM prefs WHERE key = ?`

const deletePrefSQL = `DELETE FROM prefs WHERE key = ?`
