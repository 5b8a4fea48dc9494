package metrics

import (
	"sync/atomic"
	"time"

	"pacduel/game"
)

type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	FullPlayouts int
	IsTreeReset  bool
}

type MoveMetric struct {
	Ply         int
	Agent       int
	Action      game.Direction
	ThinkTime   time.Duration
	ScoreChange float64
	Score       float64
	Stolen      bool // The mover stole from its competitor this ply
	SearchMetric
}

type GameMetric struct {
	ID         string
	Layout     string
	Agents     [game.NumPacmen]string
	Scores     [game.NumPacmen]float64
	AgentTimes [game.NumPacmen]time.Duration
	Winner     int // Agent index, -1 for a draw
	Reason     string
	Crashed    int // Agent index, -1 without a crash
	Progress   float64
	TotalMoves int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Collector gathers search statistics for one move. It is safe for
// concurrent use by search goroutines.
type Collector interface {
	Start(goroutines, cutoff int)
	SetTreeReset(value bool)
	AddFullPlayout()
	AddEpisode()
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	cutoff       int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	isTreeReset  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) Start(goroutines, cutoff int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff int) {}
func (m *dummyCollector) SetTreeReset(value bool)      {}
func (m *dummyCollector) AddFullPlayout()              {}
func (m *dummyCollector) AddEpisode()                  {}
func (m *dummyCollector) Complete() SearchMetric       { return SearchMetric{} }
