package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists records to a local SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) SaveTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, side, units, entry_price, stop_price, target_price, confidence, strategy, regime, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Side, t.Units, t.EntryPrice,
		t.StopPrice, t.TargetPrice, t.Confidence, t.Strategy, t.Regime, t.Time,
	)
	return err
}

// RecordOutcome backfills the realized result onto an open trade row. It
// refuses to overwrite an already-closed trade.
func (j *SQLiteJournal) RecordOutcome(o Outcome) error {
	res, err := j.db.Exec(`
		UPDATE trades
		SET exit_price = ?, realized_pl = ?, close_reason = ?, closed_at = ?
		WHERE trade_id = ? AND closed_at IS NULL`,
		o.ExitPrice, o.RealizedPL, o.Reason, o.Time, o.TradeID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %s not found or already closed", o.TradeID)
	}
	return nil
}

func (j *SQLiteJournal) SaveBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balance_history (time, balance, trade_count)
		VALUES (?, ?, ?)`,
		b.Time, b.Balance, b.TradeCount,
	)
	return err
}

func (j *SQLiteJournal) SavePerformance(p PerformanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO performance_metrics (time, total_trades, win_streak, loss_streak, profit_factor)
		VALUES (?, ?, ?, ?, ?)`,
		p.Time, p.TotalTrades, p.WinStreak, p.LossStreak, p.ProfitFactor,
	)
	return err
}

func (j *SQLiteJournal) SaveAnalysis(a AnalysisRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO market_analysis (time, instrument, action, confidence, raw_score, regime, sentiment)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.Time, a.Instrument, a.Action, a.Confidence, a.RawScore, a.Regime, a.Sentiment,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
