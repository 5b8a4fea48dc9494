package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const (
	GameRecordsFile = "game_records.csv"
	MoveRecordsFile = "move_records.parquet"
)

// MoveRecord is one row of the move records file.
type MoveRecord struct {
	GameID       string  `parquet:"game_id,dict"`
	Ply          int32   `parquet:"ply"`
	Agent        int32   `parquet:"agent"`
	Action       string  `parquet:"action,dict"`
	ThinkTimeMs  float64 `parquet:"think_time_ms"`
	ScoreChange  float64 `parquet:"score_change"`
	Score        float64 `parquet:"score"`
	Stolen       bool    `parquet:"stolen"`
	Goroutines   int32   `parquet:"goroutines"`
	Episodes     int32   `parquet:"episodes"`
	FullPlayouts int32   `parquet:"full_playouts"`
	IsTreeReset  bool    `parquet:"is_tree_reset"`
}

func NewMoveRecords(gameID string, moves []MoveMetric) []MoveRecord {
	records := make([]MoveRecord, 0, len(moves))
	for _, m := range moves {
		records = append(records, MoveRecord{
			GameID:       gameID,
			Ply:          int32(m.Ply),
			Agent:        int32(m.Agent),
			Action:       string(m.Action),
			ThinkTimeMs:  float64(m.ThinkTime) / float64(time.Millisecond),
			ScoreChange:  m.ScoreChange,
			Score:        m.Score,
			Stolen:       m.Stolen,
			Goroutines:   int32(m.Goroutines),
			Episodes:     int32(m.Episodes),
			FullPlayouts: int32(m.FullPlayouts),
			IsTreeReset:  m.IsTreeReset,
		})
	}
	return records
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by the experiment and the
// current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteGameRecords(records []GameMetric) error {
	path := filepath.Join(w.baseDir, GameRecordsFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{
		"id", "layout", "agent1", "agent2", "score1", "score2", "time1", "time2",
		"winner", "reason", "crashed", "progress", "total_moves", "start_time", "end_time", "duration",
	}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.ID,
			record.Layout,
			record.Agents[0],
			record.Agents[1],
			strconv.FormatFloat(record.Scores[0], 'f', -1, 64),
			strconv.FormatFloat(record.Scores[1], 'f', -1, 64),
			record.AgentTimes[0].String(),
			record.AgentTimes[1].String(),
			strconv.Itoa(record.Winner),
			record.Reason,
			strconv.Itoa(record.Crashed),
			strconv.FormatFloat(record.Progress, 'f', 4, 64),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush game records: %w", err)
	}
	return nil
}

// WriteMoveRecords stores rows as zstd compressed parquet, written to a temp
// file and renamed into place.
func (w *Writer) WriteMoveRecords(rows []MoveRecord) error {
	path := filepath.Join(w.baseDir, MoveRecordsFile)
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "move_record_v1"),
	); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename move records: %w", err)
	}
	return nil
}

func ReadMoveRecords(path string) ([]MoveRecord, error) {
	rows, err := parquet.ReadFile[MoveRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read move records: %w", err)
	}
	return rows, nil
}
