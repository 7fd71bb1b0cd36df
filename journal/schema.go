// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	stop_price REAL NOT NULL,
	target_price REAL NOT NULL,
	confidence REAL NOT NULL,
	strategy TEXT NOT NULL,
	regime TEXT NOT NULL,
	opened_at DATETIME NOT NULL,
	exit_price REAL,
	realized_pl REAL,
	close_reason TEXT,
	closed_at DATETIME
);

CREATE TABLE IF NOT EXISTS balance_history (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	trade_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS performance_metrics (
	time DATETIME NOT NULL,
	total_trades INTEGER NOT NULL,
	win_streak INTEGER NOT NULL,
	loss_streak INTEGER NOT NULL,
	profit_factor REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS market_analysis (
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	action TEXT NOT NULL,
	confidence REAL NOT NULL,
	raw_score REAL NOT NULL,
	regime TEXT NOT NULL,
	sentiment REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_instrument ON trades(instrument);
CREATE INDEX IF NOT EXISTS idx_balance_time ON balance_history(time);
CREATE INDEX IF NOT EXISTS idx_analysis_time ON market_analysis(time);
`
