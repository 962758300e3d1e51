package ipc

import (
	"testing"
	"time"
)

func TestServerIPCRoundTripsCommand(t *testing.T) {
	dir := t.TempDir()
	srv, err := NewServerIPC(dir, "sess1")
	if err != nil {
		t.Fatalf("NewServerIPC: %v", err)
	}
	defer srv.Close()

	client, err := DialSession(dir, "sess1")
	if err != nil {
		t.Fatalf("DialSession: %v", err)
	}

	id, err := client.SendCommand("write foo.txt")
	if err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	msg, ok, err := srv.TryRecv()
	if err != nil || !ok {
		t.Fatalf("TryRecv: msg=%+v ok=%v err=%v", msg, ok, err)
	}
	if msg.ID != id || msg.Kind != KindCommand || msg.Command != "write foo.txt" {
		t.Fatalf("msg = %+v, want id %s command %q", msg, id, "write foo.txt")
	}

	if err := srv.SendResponse(msg.ID, "ok"); err != nil {
		t.Fatalf("SendResponse: %v", err)
	}

	reply, err := client.AwaitResponse(msg.ID, time.Second)
	if err != nil {
		t.Fatalf("AwaitResponse: %v", err)
	}
	if reply.Kind != KindResponse || reply.Result != "ok" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestServerIPCTryRecvEmptyWithoutBlocking(t *testing.T) {
	dir := t.TempDir()
	srv, err := NewServerIPC(dir, "sess2")
	if err != nil {
		t.Fatalf("NewServerIPC: %v", err)
	}
	defer srv.Close()

	_, ok, err := srv.TryRecv()
	if err != nil || ok {
		t.Fatalf("expected no pending message, got ok=%v err=%v", ok, err)
	}
}

func TestDialSessionFailsForUnknownSession(t *testing.T) {
	dir := t.TempDir()
	if _, err := DialSession(dir, "ghost"); err == nil {
		t.Fatalf("expected error dialing a session with no in-file")
	}
}

func TestServerIPCCloseRemovesSessionFiles(t *testing.T) {
	dir := t.TempDir()
	srv, err := NewServerIPC(dir, "sess3")
	if err != nil {
		t.Fatalf("NewServerIPC: %v", err)
	}
	inPath, _ := SessionPaths(dir, "sess3")

	if err := srv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := DialSession(dir, "sess3"); err == nil {
		t.Fatalf("expected session to be gone after Close, in-file %s", inPath)
	}
}

func TestListSessionsFindsLiveSessions(t *testing.T) {
	dir := t.TempDir()
	srv, err := NewServerIPC(dir, "alpha")
	if err != nil {
		t.Fatalf("NewServerIPC: %v", err)
	}
	defer srv.Close()

	sessions, err := ListSessions(dir)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != "alpha" {
		t.Fatalf("sessions = %v, want [alpha]", sessions)
	}
}

func TestAwaitResponseTimesOutWithoutReply(t *testing.T) {
	dir := t.TempDir()
	srv, err := NewServerIPC(dir, "sess4")
	if err != nil {
		t.Fatalf("NewServerIPC: %v", err)
	}
	defer srv.Close()

	client, err := DialSession(dir, "sess4")
	if err != nil {
		t.Fatalf("DialSession: %v", err)
	}
	id, err := client.SendQuery("cursor-position")
	if err != nil {
		t.Fatalf("SendQuery: %v", err)
	}

	if _, err := client.AwaitResponse(id, 30*time.Millisecond); err == nil {
		t.Fatalf("expected timeout error when server never replies")
	}
}
