// The MIT License (MIT)
//
// Copyright (c) 2026 The qcp Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package control

import (
	"io"
	"sync"
	"testing"

	"github.com/qcp-project/qcp/internal/config"
)

// pipeConn implements io.ReadWriter over a pair of io.Pipes so the client
// and server sides of the handshake can run concurrently in one test,
// the way the teacher's own tests exercise client/server pairs over loopback.
type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }

func newPipePair() (pipeConn, pipeConn) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	return pipeConn{r: r1, w: w2}, pipeConn{r: r2, w: w1}
}

func TestHandshakeGreetingAndExchange(t *testing.T) {
	clientSide, serverSide := newPipePair()

	var wg sync.WaitGroup
	wg.Add(2)

	var clientErr, serverErr error
	var reply ServerMessage
	var clientMsg ClientMessage

	go func() {
		defer wg.Done()
		client, err := NewClient(clientSide)
		if err != nil {
			clientErr = err
			return
		}
		reply, clientErr = client.Exchange(ClientMessage{
			CertificateDER: []byte{1, 2, 3},
			Preferences:    config.TransportPreferences{RTTMillis: config.Some(uint32(50))},
			Direction:      DirectionGet,
			RemotePath:     "/tmp/file.bin",
		})
	}()

	go func() {
		defer wg.Done()
		server, err := NewServer(serverSide)
		if err != nil {
			serverErr = err
			return
		}
		clientMsg, serverErr = server.ReadClientMessage()
		if serverErr != nil {
			return
		}
		serverErr = server.Reply(ServerMessage{
			CertificateDER: []byte{4, 5, 6},
			Port:           51000,
			Negotiated:     config.Negotiate(clientMsg.Preferences, config.TransportPreferences{}, 60),
			Ok:             true,
		})
	}()

	wg.Wait()
	if clientErr != nil {
		t.Fatalf("client: %v", clientErr)
	}
	if serverErr != nil {
		t.Fatalf("server: %v", serverErr)
	}
	if clientMsg.RemotePath != "/tmp/file.bin" {
		t.Fatalf("got remote path %q", clientMsg.RemotePath)
	}
	if reply.Port != 51000 {
		t.Fatalf("got port %d", reply.Port)
	}
	if reply.Negotiated.RTTMillis != 50 {
		t.Fatalf("got rtt %d", reply.Negotiated.RTTMillis)
	}
}

func TestServerRejectionSurfacesAsError(t *testing.T) {
	clientSide, serverSide := newPipePair()

	var wg sync.WaitGroup
	wg.Add(2)
	var clientErr, serverErr error

	go func() {
		defer wg.Done()
		client, err := NewClient(clientSide)
		if err != nil {
			clientErr = err
			return
		}
		_, clientErr = client.Exchange(ClientMessage{RemotePath: "/nope"})
	}()

	go func() {
		defer wg.Done()
		server, err := NewServer(serverSide)
		if err != nil {
			serverErr = err
			return
		}
		if _, err := server.ReadClientMessage(); err != nil {
			serverErr = err
			return
		}
		serverErr = server.Reply(ServerMessage{Ok: false, FailureReason: "file not found"})
	}()

	wg.Wait()
	if serverErr != nil {
		t.Fatalf("server: %v", serverErr)
	}
	if clientErr == nil {
		t.Fatal("expected client to see rejection as an error")
	}
}
