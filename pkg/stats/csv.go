package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

var csvHeader = []string{"Seq", "Timestamp", "Metric", "Value"}

// CSV appends one row per recorded value.
type CSV struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	seq    int
	log    *zap.Logger
}

// NewCSVFile creates path (truncating it) and writes the header row.
func NewCSVFile(path string, log *zap.Logger) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats file: %w", err)
	}
	c, err := NewCSV(f, log)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	c.closer = f
	return c, nil
}

// NewCSV writes to w. The caller keeps ownership of w.
func NewCSV(w io.Writer, log *zap.Logger) (*CSV, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &CSV{w: csv.NewWriter(w), log: log}
	if err := c.w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write stats header: %w", err)
	}
	c.w.Flush()
	return c, c.w.Error()
}

func (c *CSV) Record(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	row := []string{
		strconv.Itoa(c.seq),
		time.Now().UTC().Format(time.RFC3339Nano),
		name,
		strconv.FormatFloat(value, 'g', -1, 64),
	}
	if err := c.w.Write(row); err != nil {
		c.log.Warn("failed to write stats row", zap.String("metric", name), zap.Error(err))
		return
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.log.Warn("failed to flush stats row", zap.String("metric", name), zap.Error(err))
	}
}

func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	if c.closer == nil {
		return c.w.Error()
	}
	return c.closer.Close()
}
