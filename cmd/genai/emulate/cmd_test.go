package emulatecmd

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/adamwoolhether/genai/cache"
	"github.com/adamwoolhether/genai/cmd/genai/shared"
	"github.com/adamwoolhether/genai/request"
)

func TestEmulate(t *testing.T) {
	c := qt.New(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	c.Assert(err, qt.IsNil)

	var out, logs bytes.Buffer
	cmd := New(&shared.Context{Stderr: &logs})
	cmd.listener = ln
	cmd.Cmd().SetOut(&out)
	cmd.Cmd().SetArgs([]string{"--require-key", "k"})

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- cmd.Cmd().ExecuteContext(ctx)
	}()

	m := cache.NewManager("k", request.WithBaseURL("http://"+ln.Addr().String()))

	var cc cache.CachedContent
	deadline := time.Now().Add(5 * time.Second)
	for {
		cc, err = m.Create(t.Context(), cache.CreateParams{Model: "models/m", TTL: time.Minute})
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.Assert(err, qt.IsNil)
	c.Assert(cc.Name, qt.Matches, "cachedContents/[0-9a-f]{32}")

	cancel()
	select {
	case err := <-errCh:
		c.Assert(err, qt.IsNil)
	case <-time.After(5 * time.Second):
		c.Fatal("emulator did not shut down")
	}

	c.Assert(out.String(), qt.Equals, "Emulator listening on http://"+ln.Addr().String()+"\n")
	c.Assert(logs.String(), qt.Contains, "shutdown complete")
}
