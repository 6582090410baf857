package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"filmloc/internal/catalog"
	"filmloc/internal/logging"
)

const maxLineBytes = 1 << 20

// FileSource reads LocationRecords from a JSON-lines file. The cursor is the
// number of lines already consumed, so appending to the file and fetching
// again yields only the new records.
type FileSource struct {
	name   string
	path   string
	logger *slog.Logger
}

// NewFileSource returns a source named name that reads path.
func NewFileSource(name, path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FileSource{
		name:   name,
		path:   path,
		logger: logging.NewComponentLogger(logger, "file-source").With(logging.String(logging.FieldSource, name)),
	}
}

// Name implements Source.
func (f *FileSource) Name() string { return f.name }

// Fetch implements Source. Lines that cannot be decoded are logged and
// skipped; the cursor still moves past them.
func (f *FileSource) Fetch(ctx context.Context, cursor string) ([]catalog.LocationRecord, string, error) {
	skip := 0
	if strings.TrimSpace(cursor) != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
		skip = n
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	batch, err := ReadRecords(ctx, file, skip)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", f.path, err)
	}
	for _, bad := range batch.Skipped {
		logging.WarnWithContext(f.logger, "skipping undecodable line", "record_line_skipped",
			logging.String("path", f.path),
			logging.Int("line", bad.Line),
			logging.Error(bad.Err),
		)
	}
	if len(batch.Skipped) > 0 {
		f.logger.Info("file read with skipped lines",
			logging.Int("records", len(batch.Records)),
			logging.Int("skipped", len(batch.Skipped)),
		)
	}
	return batch.Records, strconv.Itoa(batch.Lines), nil
}

// SkippedLine is an input line that could not be decoded.
type SkippedLine struct {
	Line int
	Err  error
}

// Batch is what ReadRecords got out of a stream.
type Batch struct {
	Records []catalog.LocationRecord
	// Lines counts every line read, including skipped ones.
	Lines   int
	Skipped []SkippedLine
}

// ReadRecords decodes one LocationRecord per non-blank line, skipping the
// first skip lines. Malformed or oversized lines are reported in
// Batch.Skipped and do not stop the read.
func ReadRecords(ctx context.Context, r io.Reader, skip int) (Batch, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	var batch Batch
	for {
		raw, tooLong, err := readLine(reader, maxLineBytes)
		if err == io.EOF {
			return batch, nil
		}
		if err != nil {
			return batch, err
		}
		batch.Lines++
		if batch.Lines <= skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if tooLong {
			batch.Skipped = append(batch.Skipped, SkippedLine{
				Line: batch.Lines,
				Err:  catalog.Integrity("decode record", fmt.Errorf("line %d exceeds %d bytes", batch.Lines, maxLineBytes)),
			})
			continue
		}
		text := bytes.TrimSpace(raw)
		if len(text) == 0 || text[0] == '#' {
			continue
		}
		var record catalog.LocationRecord
		if err := json.Unmarshal(text, &record); err != nil {
			batch.Skipped = append(batch.Skipped, SkippedLine{
				Line: batch.Lines,
				Err:  catalog.Integrity("decode record", fmt.Errorf("line %d: %w", batch.Lines, err)),
			})
			continue
		}
		batch.Records = append(batch.Records, record)
	}
}

// readLine returns the next line without its terminator. Lines longer than
// limit are drained and reported as tooLong. io.EOF is returned only when no
// bytes remain.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(chunk) > limit+1 {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		switch {
		case err == nil:
			return bytes.TrimRight(line, "\r\n"), tooLong, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == io.EOF:
			if len(chunk) == 0 && len(line) == 0 && !tooLong {
				return nil, false, io.EOF
			}
			return bytes.TrimRight(line, "\r\n"), tooLong, nil
		default:
			return nil, false, err
		}
	}
}
