package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MuhammadAkmal03/AlphaSignal/internal/sim"
)

// RunRow 表示一次已持久化的回测运行。
type RunRow struct {
	ID        int64           `json:"id"`
	Mode      string          `json:"mode"`
	StartedAt time.Time       `json:"started_at"`
	Summary   json.RawMessage `json:"summary"`
}

// RunStore 负责持久化回测运行的汇总与逐步台账。
type RunStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRunStore 初始化运行存储，创建所需表结构。
func NewRunStore(store *Store, logger *zap.Logger) (*RunStore, error) {
	if store == nil {
		return nil, fmt.Errorf("store: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RunStore{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *RunStore) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			summary TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trade_records (
			run_id INTEGER NOT NULL REFERENCES backtest_runs(id),
			step INTEGER NOT NULL,
			date TEXT NOT NULL,
			price REAL NOT NULL,
			action TEXT NOT NULL,
			position TEXT NOT NULL,
			raw_return REAL NOT NULL,
			net_return REAL NOT NULL,
			txn_cost REAL NOT NULL,
			slippage REAL NOT NULL,
			unrealized_pnl REAL NOT NULL,
			executed INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trade_records_run ON trade_records(run_id);`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: 初始化表结构失败: %w", err)
		}
	}

	return nil
}

// SaveRun 在单个事务中写入运行汇总与全部台账行，返回运行ID。
func (s *RunStore) SaveRun(ctx context.Context, mode string, startedAt time.Time, summary interface{}, records []sim.TradeRecord) (int64, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("store: 序列化汇总失败: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: 开启事务失败: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO backtest_runs (mode, started_at, summary) VALUES (?, ?, ?)`,
		mode, startedAt.UTC().Format(time.RFC3339), string(payload),
	)
	if err != nil {
		err = fmt.Errorf("store: 写入运行汇总失败: %w", err)
		return 0, err
	}

	runID, err := res.LastInsertId()
	if err != nil {
		err = fmt.Errorf("store: 获取运行ID失败: %w", err)
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trade_records
		 (run_id, step, date, price, action, position, raw_return, net_return, txn_cost, slippage, unrealized_pnl, executed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		err = fmt.Errorf("store: 预编译台账语句失败: %w", err)
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range records {
		executed := 0
		if rec.Executed {
			executed = 1
		}
		if _, err = stmt.ExecContext(ctx,
			runID, rec.Step, rec.Date.UTC().Format(time.RFC3339), rec.Price,
			rec.Action.String(), rec.Position.String(),
			rec.RawReturn, rec.NetReturn, rec.TxnCost, rec.Slippage, rec.Unrealized, executed,
		); err != nil {
			err = fmt.Errorf("store: 写入台账第%d步失败: %w", rec.Step, err)
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: 提交事务失败: %w", err)
	}

	s.logger.Debug("回测运行已持久化",
		zap.Int64("run_id", runID),
		zap.String("mode", mode),
		zap.Int("records", len(records)),
	)

	return runID, nil
}

// ListRuns 按时间倒序检索最近的运行汇总。
func (s *RunStore) ListRuns(ctx context.Context, mode string, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, mode, started_at, summary FROM backtest_runs`
	args := make([]interface{}, 0, 2)
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: 查询运行记录失败: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRow, 0, limit)
	for rows.Next() {
		var (
			row     RunRow
			started string
			summary string
		)
		if scanErr := rows.Scan(&row.ID, &row.Mode, &started, &summary); scanErr != nil {
			return nil, fmt.Errorf("store: 解析运行记录失败: %w", scanErr)
		}

		ts, parseErr := time.Parse(time.RFC3339, started)
		if parseErr != nil {
			ts = time.Now().UTC()
		}
		row.StartedAt = ts
		row.Summary = json.RawMessage(summary)

		runs = append(runs, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: 读取运行记录失败: %w", err)
	}

	return runs, nil
}
