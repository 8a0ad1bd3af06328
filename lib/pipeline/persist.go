package pipeline

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// FormatVersion is written into every record's metadata so consumers
// can tell which envelope shape they are reading.
const FormatVersion = "1.1"

type Metadata struct {
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Version   string    `json:"format_version"`
}

// Record is the envelope written to a sink. Written once per run,
// never mutated afterwards.
type Record struct {
	Metadata Metadata `json:"metadata"`
	Payload  any      `json:"payload"`

	// Bytes is how much was written to the sink. Observability only,
	// not part of the serialized record.
	Bytes int64 `json:"-"`
}

// Persist serializes the record and writes it to the sink path,
// creating the sink's directory if it does not exist yet. Directory
// creation and the write are one logical step: if creation fails the
// write is never attempted. The record lands via a temp file renamed
// into place, so the sink never holds a truncated record.
func Persist(rec Record, sink string) (int64, error) {
	serialized, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return 0, &Error{Stage: StagePersist, Kind: KindSerializationFailure, Err: err}
	}
	serialized = append(serialized, '\n')

	dir := filepath.Dir(sink)
	if dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return 0, &Error{Stage: StagePersist, Kind: classifyFileErr(err), Err: err}
		}
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return 0, &Error{Stage: StagePersist, Kind: classifyFileErr(err), Err: err}
	}
	_, err = tmp.Write(serialized)
	if err == nil {
		err = tmp.Chmod(0644)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), sink)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, &Error{Stage: StagePersist, Kind: classifyFileErr(err), Err: err}
	}
	return int64(len(serialized)), nil
}

func classifyFileErr(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		return KindDeviceFull
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		return KindInvalidPath
	}
	return KindInvalidPath
}
