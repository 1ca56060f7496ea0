package main

import (
	"bytes"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/skybound-dev/ifconnect/internal/simserver"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

func startSimServer(t *testing.T, entries []simserver.Entry) *simserver.Server {
	t.Helper()
	srv := simserver.New(entries)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func executeCommand(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split addr %q: %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}

	buf := new(bytes.Buffer)
	root := RootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--host", host, "--port", strconv.Itoa(port)}, args...))
	err = root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "127.0.0.1:1", "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "ifconnectctl version") {
		t.Errorf("output = %q, want a version line", out)
	}
}

func TestManifestCommand(t *testing.T) {
	entries := []simserver.Entry{
		{ID: 1, Type: wiretype.Float, Name: "aircraft/0/alt"},
		{ID: 2, Type: wiretype.Integer, Name: "aircraft/0/onground"},
	}
	srv := startSimServer(t, entries)

	out, err := executeCommand(t, srv.Addr(), "manifest")
	if err != nil {
		t.Fatalf("manifest command failed: %v", err)
	}
	if !strings.Contains(out, "aircraft/0/alt") || !strings.Contains(out, "aircraft/0/onground") {
		t.Errorf("output = %q, want both entries", out)
	}
}

func TestGetCommand(t *testing.T) {
	entries := []simserver.Entry{{ID: 1, Type: wiretype.Float, Name: "aircraft/0/alt"}}
	srv := startSimServer(t, entries)
	srv.SetValue(1, wiretype.Float32(1234.5))

	out, err := executeCommand(t, srv.Addr(), "get", "aircraft/0/alt")
	if err != nil {
		t.Fatalf("get command failed: %v", err)
	}
	if !strings.Contains(out, "1234.5") {
		t.Errorf("output = %q, want the read value", out)
	}
}

func TestGetUnknownCommandErrors(t *testing.T) {
	srv := startSimServer(t, nil)
	_, err := executeCommand(t, srv.Addr(), "get", "no/such/name")
	if err == nil {
		t.Fatal("expected an error for an unknown command name")
	}
}

func TestSetCommandCoercesToDeclaredType(t *testing.T) {
	entries := []simserver.Entry{{ID: 7, Type: wiretype.String, Name: "aircraft/0/callsign"}}
	srv := startSimServer(t, entries)

	out, err := executeCommand(t, srv.Addr(), "set", "aircraft/0/callsign", "NINJA")
	if err != nil {
		t.Fatalf("set command failed: %v", err)
	}
	if !strings.Contains(out, "NINJA") {
		t.Errorf("output = %q, want the written value echoed", out)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := srv.Value(7); ok {
			got, _ := v.AsString()
			if got == "NINJA" {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the write to land on the server")
}

func TestRunCommandInvokesWithParsedArgs(t *testing.T) {
	entries := []simserver.Entry{{ID: 42, Type: wiretype.Command, Name: "commands/Autopilot.Engage"}}
	srv := startSimServer(t, entries)

	out, err := executeCommand(t, srv.Addr(), "run", "commands/Autopilot.Engage", "x=1")
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if !strings.Contains(out, "invoked") {
		t.Errorf("output = %q, want an invoked confirmation", out)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(srv.Invokes()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	invokes := srv.Invokes()
	if len(invokes) != 1 || invokes[0].Args[0].Name != "x" || invokes[0].Args[0].Value != "1" {
		t.Fatalf("Invokes() = %+v", invokes)
	}
}

func TestRunRejectsMalformedArgument(t *testing.T) {
	srv := startSimServer(t, nil)
	_, err := executeCommand(t, srv.Addr(), "run", "x", "not-a-kv-pair")
	if err == nil {
		t.Fatal("expected an error for a malformed key=value argument")
	}
}
