// Package ipc implements the process-local transport a running session
// exposes to external clients: a pair of length-prefixed JSON record
// files per session, guarded by advisory file locks instead of the
// original's shared-memory ring buffer (no such ring-buffer crate is
// available in this stack; gofrs/flock plus plain files gives the same
// single-writer, multi-reader-at-a-time guarantee). Grounded on
// original_source/kerbin-core/src/ipc.rs for the message shapes and
// session-path convention, and on the teacher's internal/socketdir
// (glob-based discovery) and internal/cmd/socket_guard.go
// (probe-before-connect) for session file lifecycle.
package ipc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Kind tags which variant of ClientMessage or ServerMessage a record holds.
type Kind string

const (
	KindCommand  Kind = "command"
	KindQuery    Kind = "query"
	KindResponse Kind = "response"
	KindError    Kind = "error"
)

// ClientMessage is a request sent from a client into a session's in-file.
type ClientMessage struct {
	ID      uuid.UUID `json:"id"`
	Kind    Kind      `json:"kind"`
	Command string    `json:"command,omitempty"`
	Query   string    `json:"query,omitempty"`
}

// NewCommandMessage builds a Command-kind client message with a fresh ID.
func NewCommandMessage(command string) ClientMessage {
	return ClientMessage{ID: uuid.New(), Kind: KindCommand, Command: command}
}

// NewQueryMessage builds a Query-kind client message with a fresh ID.
func NewQueryMessage(query string) ClientMessage {
	return ClientMessage{ID: uuid.New(), Kind: KindQuery, Query: query}
}

// ServerMessage is a reply written by a session into its out-file.
type ServerMessage struct {
	ID      uuid.UUID `json:"id"`
	Kind    Kind      `json:"kind"`
	Result  string    `json:"result,omitempty"`
	Message string    `json:"message,omitempty"`
}

// SessionPaths returns the in/out file paths for a session under dataDir,
// mirroring get_queue_paths's "<data>/kerbin/sessions/<session>.{in,out}"
// layout.
func SessionPaths(dataDir, sessionID string) (in, out string) {
	dir := filepath.Join(dataDir, "kerbin", "sessions")
	return filepath.Join(dir, sessionID+".in"), filepath.Join(dir, sessionID+".out")
}

// writeRecord appends a 4-byte big-endian length prefix followed by the
// record's JSON encoding, taking an exclusive lock on f for the duration
// of the write so concurrent writers never interleave a record.
func writeRecord(f *os.File, lock *flock.Flock, v any) error {
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("ipc: lock %s: %w", f.Name(), err)
	}
	defer lock.Unlock()

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ipc: encode record: %w", err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("ipc: seek %s: %w", f.Name(), err)
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := f.Write(prefix[:]); err != nil {
		return fmt.Errorf("ipc: write length prefix: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("ipc: write record: %w", err)
	}
	return nil
}

// readRecord reads the next length-prefixed JSON record from r starting
// at offset, returning the decoded bytes and the new offset. io.EOF means
// no further complete record is available yet.
func readRecord(r io.ReaderAt, offset int64) ([]byte, int64, error) {
	var prefix [4]byte
	if _, err := r.ReadAt(prefix[:], offset); err != nil {
		return nil, offset, io.EOF
	}
	n := binary.BigEndian.Uint32(prefix[:])
	body := make([]byte, n)
	if _, err := r.ReadAt(body, offset+4); err != nil {
		return nil, offset, io.EOF
	}
	return body, offset + 4 + int64(n), nil
}

// ServerIPC is the session-side endpoint: it receives ClientMessages from
// its in-file and sends ServerMessages into its out-file.
type ServerIPC struct {
	inPath, outPath string
	inFile, outFile *os.File
	inLock, outLock *flock.Flock
	readOffset      int64
}

// NewServerIPC creates (or truncates) the session's in/out files under
// dataDir and returns a ServerIPC bound to them.
func NewServerIPC(dataDir, sessionID string) (*ServerIPC, error) {
	inPath, outPath := SessionPaths(dataDir, sessionID)
	if err := os.MkdirAll(filepath.Dir(inPath), 0o755); err != nil {
		return nil, fmt.Errorf("ipc: create session dir: %w", err)
	}

	inFile, err := os.OpenFile(inPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ipc: create in-file: %w", err)
	}
	outFile, err := os.OpenFile(outPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		inFile.Close()
		return nil, fmt.Errorf("ipc: create out-file: %w", err)
	}

	return &ServerIPC{
		inPath:  inPath,
		outPath: outPath,
		inFile:  inFile,
		outFile: outFile,
		inLock:  flock.New(inPath + ".lock"),
		outLock: flock.New(outPath + ".lock"),
	}, nil
}

// TryRecv returns the next pending ClientMessage, if one has been fully
// written since the last call, without blocking.
func (s *ServerIPC) TryRecv() (ClientMessage, bool, error) {
	if err := s.inLock.RLock(); err != nil {
		return ClientMessage{}, false, fmt.Errorf("ipc: lock %s: %w", s.inPath, err)
	}
	defer s.inLock.Unlock()

	body, next, err := readRecord(s.inFile, s.readOffset)
	if err == io.EOF {
		return ClientMessage{}, false, nil
	}
	if err != nil {
		return ClientMessage{}, false, fmt.Errorf("ipc: read client message: %w", err)
	}
	s.readOffset = next

	var msg ClientMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return ClientMessage{}, false, fmt.Errorf("ipc: decode client message: %w", err)
	}
	return msg, true, nil
}

// SendResponse writes a Response record to the out-file.
func (s *ServerIPC) SendResponse(id uuid.UUID, result string) error {
	return writeRecord(s.outFile, s.outLock, ServerMessage{ID: id, Kind: KindResponse, Result: result})
}

// SendError writes an Error record to the out-file.
func (s *ServerIPC) SendError(id uuid.UUID, message string) error {
	return writeRecord(s.outFile, s.outLock, ServerMessage{ID: id, Kind: KindError, Message: message})
}

// Close closes and removes both session files, mirroring the original's
// Drop impl for ServerIpc.
func (s *ServerIPC) Close() error {
	s.inFile.Close()
	s.outFile.Close()
	os.Remove(s.inPath)
	os.Remove(s.outPath)
	os.Remove(s.inPath + ".lock")
	os.Remove(s.outPath + ".lock")
	return nil
}

// ClientIPC is the client-side endpoint for a named, already-running
// session.
type ClientIPC struct {
	session string
	inPath  string
	outPath string
}

// DialSession looks up a running session's files under dataDir, failing
// if the in-file doesn't exist (the session is not running).
func DialSession(dataDir, session string) (*ClientIPC, error) {
	inPath, outPath := SessionPaths(dataDir, session)
	if _, err := os.Stat(inPath); err != nil {
		return nil, fmt.Errorf("session %q not found", session)
	}
	return &ClientIPC{session: session, inPath: inPath, outPath: outPath}, nil
}

// SendCommand appends a Command message to the session's in-file.
func (c *ClientIPC) SendCommand(command string) (uuid.UUID, error) {
	msg := NewCommandMessage(command)
	return msg.ID, c.send(msg)
}

// SendQuery appends a Query message to the session's in-file.
func (c *ClientIPC) SendQuery(query string) (uuid.UUID, error) {
	msg := NewQueryMessage(query)
	return msg.ID, c.send(msg)
}

func (c *ClientIPC) send(msg ClientMessage) error {
	f, err := os.OpenFile(c.inPath, os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("session %q not found: %w", c.session, err)
	}
	defer f.Close()
	lock := flock.New(c.inPath + ".lock")
	return writeRecord(f, lock, msg)
}

// AwaitResponse polls the session's out-file for a Response or Error
// record matching id, returning an error if timeout elapses first. This
// implements the query timeout behavior called for by a client issuing a
// Query message.
func (c *ClientIPC) AwaitResponse(id uuid.UUID, timeout time.Duration) (ServerMessage, error) {
	deadline := time.Now().Add(timeout)
	f, err := os.Open(c.outPath)
	if err != nil {
		return ServerMessage{}, fmt.Errorf("session %q not found: %w", c.session, err)
	}
	defer f.Close()

	var offset int64
	for {
		body, next, rerr := readRecord(f, offset)
		if rerr == nil {
			offset = next
			var msg ServerMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				return ServerMessage{}, fmt.Errorf("ipc: decode server message: %w", err)
			}
			if msg.ID == id {
				return msg, nil
			}
			continue
		}
		if time.Now().After(deadline) {
			return ServerMessage{}, fmt.Errorf("ipc: query %s timed out after %s", id, timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ListSessions returns the session IDs with a live in-file under dataDir,
// discovered the way the teacher's socketdir.List globs socket files.
func ListSessions(dataDir string) ([]string, error) {
	dir := filepath.Join(dataDir, "kerbin", "sessions")
	matches, err := filepath.Glob(filepath.Join(dir, "*.in"))
	if err != nil {
		return nil, fmt.Errorf("ipc: list sessions: %w", err)
	}
	sessions := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		sessions = append(sessions, base[:len(base)-len(".in")])
	}
	return sessions, nil
}

// ProbeLive reports whether a session's in-file lock is held by another
// process at the moment of the probe. A server holds that lock only while
// TryRecv reads a record, and a client only while it writes one, so an
// idle live server reports false, the same as a stale file left behind by
// a crashed process. Mirrors the teacher's ensureAgentSocketAvailable
// probe-before-connect check.
func ProbeLive(dataDir, session string) (bool, error) {
	inPath, _ := SessionPaths(dataDir, session)
	lock := flock.New(inPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("ipc: probe %s: %w", session, err)
	}
	if ok {
		lock.Unlock()
		return false, nil
	}
	return true, nil
}
