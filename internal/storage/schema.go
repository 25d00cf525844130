package storage

const schemaSQL = `
-- Tracked keywords with their per-day position history.
-- history, last_result and tags are JSON columns; last_update_error is a
-- JSON error descriptor and NULL while the last scrape succeeded.
CREATE TABLE IF NOT EXISTS keywords (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT NOT NULL,
    device TEXT NOT NULL DEFAULT 'desktop' CHECK (device IN ('desktop', 'mobile')),
    country TEXT NOT NULL DEFAULT 'US',
    city TEXT NOT NULL DEFAULT '',
    domain TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    history TEXT NOT NULL DEFAULT '{}',
    url TEXT NOT NULL DEFAULT '',
    last_result TEXT NOT NULL DEFAULT '[]',
    tags TEXT NOT NULL DEFAULT '[]',
    sticky INTEGER NOT NULL DEFAULT 0,
    updating INTEGER NOT NULL DEFAULT 0,
    last_updated DATETIME,
    last_update_error TEXT,
    added DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_keywords_domain ON keywords(domain);
CREATE INDEX IF NOT EXISTS idx_keywords_updating ON keywords(updating) WHERE updating = 1;

-- Retry queue: one row per queued keyword identifier. The primary key is
-- what makes enqueue/dequeue single-statement set operations, so two
-- overlapping refresh invocations cannot lose each other's updates.
CREATE TABLE IF NOT EXISTS retry_queue (
    keyword_id INTEGER PRIMARY KEY,
    queued_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- App meta table stores metadata as key-value pairs
CREATE TABLE IF NOT EXISTS app_meta (
    key TEXT PRIMARY KEY NOT NULL,
    value TEXT NOT NULL
);
`
