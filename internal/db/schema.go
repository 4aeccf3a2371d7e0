package db

// UpdateSchema creates the scheduler's persisted tables (§6 "Card SQL
// schema", "Revision log schema") plus the demo service's user table.
// Column names and the revlog signed-interval convention are preserved
// exactly as spec'd, since they are compatibility-critical.
func (s *Storage) UpdateSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		telegram_id INTEGER UNIQUE,
		username TEXT,
		avatar_url TEXT,
		name TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	);

	-- Groups are the deck hierarchy; name segments are joined with "::"
	-- (SUPPLEMENTED FEATURES: deck hierarchy). parent_id drives config
	-- inheritance (§4.C).
	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		parent_id INTEGER,
		name TEXT NOT NULL,
		new_cards_per_day INTEGER,
		config_block TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (parent_id) REFERENCES groups(id)
	);

	-- Notes are the fact a card's templates are instantiated from; the
	-- scheduler only needs note_id for sibling identification (§3 Note).
	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_id INTEGER NOT NULL,
		fields TEXT NOT NULL DEFAULT '{}',
		tags TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		FOREIGN KEY (group_id) REFERENCES groups(id)
	);

	-- cards(id, nid, gid, ord, type, queue, due, edue, ivl, factor, reps,
	-- lapses, streak, grade, cycles, mod, ...) — §6 Card SQL schema.
	CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nid INTEGER NOT NULL,
		gid INTEGER NOT NULL,
		ord INTEGER NOT NULL DEFAULT 0,
		type INTEGER NOT NULL DEFAULT 0,
		queue INTEGER NOT NULL DEFAULT 0,
		due INTEGER NOT NULL DEFAULT 0,
		edue INTEGER NOT NULL DEFAULT 0,
		ivl INTEGER NOT NULL DEFAULT 0,
		factor INTEGER NOT NULL DEFAULT 2500,
		reps INTEGER NOT NULL DEFAULT 0,
		lapses INTEGER NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		grade INTEGER NOT NULL DEFAULT 0,
		cycles INTEGER NOT NULL DEFAULT 0,
		timer_started REAL,
		cram_queue INTEGER,
		cram_due INTEGER,
		cram_ivl INTEGER,
		cram_factor INTEGER,
		mod INTEGER NOT NULL DEFAULT 0,
		deleted_at TIMESTAMP,
		FOREIGN KEY (nid) REFERENCES notes(id),
		FOREIGN KEY (gid) REFERENCES groups(id)
	);

	-- revlog(cid, time, grade, ivl, last_ivl, factor, taken, type) — §6
	-- Revision log schema. ivl/last_ivl: days if positive, seconds if
	-- negative.
	CREATE TABLE IF NOT EXISTS revlog (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cid INTEGER NOT NULL,
		time INTEGER NOT NULL,
		grade INTEGER NOT NULL,
		ivl INTEGER NOT NULL,
		last_ivl INTEGER NOT NULL,
		factor INTEGER NOT NULL,
		taken INTEGER NOT NULL,
		type INTEGER NOT NULL,
		FOREIGN KEY (cid) REFERENCES cards(id)
	);

	-- daily_counters(new_done_today, review_done_today, learn_done_today,
	-- time_today_ms) per day number (§3 Daily counters).
	CREATE TABLE IF NOT EXISTS daily_counters (
		day INTEGER PRIMARY KEY,
		new_done INTEGER NOT NULL DEFAULT 0,
		review_done INTEGER NOT NULL DEFAULT 0,
		learn_done INTEGER NOT NULL DEFAULT 0,
		time_today_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_cards_gid_queue ON cards(gid, queue);
	CREATE INDEX IF NOT EXISTS idx_cards_nid ON cards(nid);
	CREATE INDEX IF NOT EXISTS idx_cards_due ON cards(queue, due);
	CREATE INDEX IF NOT EXISTS idx_revlog_cid ON revlog(cid);
	CREATE INDEX IF NOT EXISTS idx_groups_user ON groups(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
