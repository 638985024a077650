package journal

import "path/filepath"

// Journal records every resolution step twice: a complete zstd JSONL trace
// and a queryable SQLite index.
type Journal struct {
	trace *JSONLZstdWriter
	index *SQLiteIndex
}

func Open(dir string) (*Journal, error) {
	idx, err := OpenSQLite(filepath.Join(dir, "steps.db"))
	if err != nil {
		return nil, err
	}
	return &Journal{
		trace: NewJSONLZstdWriter(filepath.Join(dir, "steps"), "steps"),
		index: idx,
	}, nil
}

func (j *Journal) WriteStep(e StepEntry) error {
	j.index.WriteStep(e)
	return j.trace.Write(e)
}

func (j *Journal) Index() *SQLiteIndex { return j.index }

func (j *Journal) Close() error {
	errTrace := j.trace.Close()
	if err := j.index.Close(); err != nil {
		return err
	}
	return errTrace
}
