package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// PGPredictionLog archives prediction blocks in Postgres. Rows are keyed by
// (block_seq, idx) so replayed blocks stay idempotent.
//
// Expected schema:
//
//	CREATE TABLE prediction_history (
//	    block_seq  BIGINT           NOT NULL,
//	    idx        INT              NOT NULL,
//	    node_id    TEXT             NOT NULL,
//	    risk_score DOUBLE PRECISION NOT NULL,
//	    stage_used INT              NOT NULL,
//	    ts         TIMESTAMPTZ      NOT NULL,
//	    PRIMARY KEY (block_seq, idx)
//	);
type PGPredictionLog struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

func NewPGPredictionLog(db *sql.DB, table string) *PGPredictionLog {
	if table == "" {
		table = "prediction_history"
	}
	return &PGPredictionLog{db: db, table: table, now: time.Now}
}

func (p *PGPredictionLog) Name() string { return "postgres" }

// Append inserts every entry of the block in one multi-row statement.
func (p *PGPredictionLog) Append(block []domain.Prediction) error {
	if len(block) == 0 {
		return nil
	}

	blockSeq := p.now().UnixNano()
	ts := p.now()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.table)
	b.WriteString(" (block_seq, idx, node_id, risk_score, stage_used, ts) VALUES ")

	args := make([]any, 0, len(block)*6)
	for i, pred := range block {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5, len(args)+6))
		args = append(args, blockSeq, i, pred.NodeID, pred.RiskScore, pred.StageUsed, ts)
	}

	b.WriteString(" ON CONFLICT (block_seq, idx) DO NOTHING")

	_, err := p.db.Exec(b.String(), args...)
	return err
}

// Recent returns up to max of the newest blocks, oldest first. Errors yield
// an empty history; durability here is best effort.
func (p *PGPredictionLog) Recent(max int) [][]domain.Prediction {
	if max <= 0 {
		max = 50
	}

	query := fmt.Sprintf(
		"SELECT block_seq, node_id, risk_score, stage_used FROM %s WHERE block_seq IN "+
			"(SELECT DISTINCT block_seq FROM %s ORDER BY block_seq DESC LIMIT $1) "+
			"ORDER BY block_seq ASC, idx ASC", p.table, p.table)

	rows, err := p.db.Query(query, max)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var (
		out     [][]domain.Prediction
		current []domain.Prediction
		lastSeq int64 = -1
	)
	for rows.Next() {
		var (
			seq  int64
			pred domain.Prediction
		)
		if err := rows.Scan(&seq, &pred.NodeID, &pred.RiskScore, &pred.StageUsed); err != nil {
			return nil
		}
		if seq != lastSeq && current != nil {
			out = append(out, current)
			current = nil
		}
		lastSeq = seq
		current = append(current, pred)
	}
	if current != nil {
		out = append(out, current)
	}
	if rows.Err() != nil {
		return nil
	}
	return out
}

var _ ports.PredictionLog = (*PGPredictionLog)(nil)
