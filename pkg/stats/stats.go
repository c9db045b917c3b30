// Package stats implements core.StatsReporter sinks. Recording is
// fire-and-forget: sinks log their own failures and never return them.
package stats

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
)

// Series is the aggregate of every value recorded under one key.
type Series struct {
	Count int
	Sum   float64
	Last  float64
	Min   float64
	Max   float64
}

func (s Series) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Memory keeps per-key aggregates in process.
type Memory struct {
	mu     sync.RWMutex
	series map[string]Series
}

func NewMemory() *Memory {
	return &Memory{series: make(map[string]Series)}
}

func (m *Memory) Record(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.series[name]
	if !ok || value < s.Min {
		s.Min = value
	}
	if !ok || value > s.Max {
		s.Max = value
	}
	s.Count++
	s.Sum += value
	s.Last = value
	m.series[name] = s
}

func (m *Memory) Get(name string) (Series, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[name]
	return s, ok
}

// Keys returns the recorded keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.series))
	for k := range m.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Log writes each value as a structured log line.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

func (l *Log) Record(name string, value float64) {
	l.log.Info("stat", zap.String("metric", name), zap.Float64("value", value))
}

// Multi fans a value out to several reporters.
type Multi []core.StatsReporter

func (m Multi) Record(name string, value float64) {
	for _, r := range m {
		if r != nil {
			r.Record(name, value)
		}
	}
}

// CloseIfSupported closes r if it holds resources.
func CloseIfSupported(r core.StatsReporter) error {
	closer, ok := r.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
