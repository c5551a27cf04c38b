// Command client is a line-oriented TCP client for the chat server. It
// splits reading and writing across two goroutines and reacts to the
// server's file-transfer control tokens (/send_ok, /send_bad_user,
// /sending <path>) instead of leaving that handshake to the user.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const transferBufferSize = 2048

// clientState tracks the file transfer this client most recently offered
// via /send, shared between the stdin-reading and server-reading
// goroutines.
type clientState struct {
	mu            sync.Mutex
	pendingTarget string
	pendingPath   string
}

func (cs *clientState) setPending(target, path string) {
	cs.mu.Lock()
	cs.pendingTarget = target
	cs.pendingPath = path
	cs.mu.Unlock()
}

func (cs *clientState) takePending() (target, path string) {
	cs.mu.Lock()
	target, path = cs.pendingTarget, cs.pendingPath
	cs.pendingTarget, cs.pendingPath = "", ""
	cs.mu.Unlock()
	return target, path
}

func main() {
	addr := flag.String("addr", "localhost:9001", "host:port of the channel to connect to")
	name := flag.String("name", "", "username to register with")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "client: -name is required")
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("client: dial %s: %v", *addr, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", *name); err != nil {
		log.Fatalf("client: send name: %v", err)
	}

	state := &clientState{}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		readServer(conn, state)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "/send ") {
			parts := strings.SplitN(strings.TrimPrefix(line, "/send "), " ", 2)
			if len(parts) == 2 {
				state.setPending(parts[0], parts[1])
			}
		}
		fmt.Fprintf(conn, "%s\n", line)
	}

	conn.Close()
	wg.Wait()
}

// readServer is the client's receive loop: it reads lines from the server
// and reacts to the three file-transfer control tokens in place, printing
// everything else straight to stdout.
func readServer(conn net.Conn, state *clientState) {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			text := strings.TrimRight(line, "\r\n")
			switch {
			case text == "/send_ok":
				_, path := state.takePending()
				pushFile(conn, path)
			case text == "/send_bad_user":
				target, path := state.takePending()
				fmt.Printf("client: %s is not here.\n", target)
				checkLocalPath(path)
			case strings.HasPrefix(text, "/sending "):
				path := strings.TrimPrefix(text, "/sending ")
				receiveFile(reader, path)
			default:
				fmt.Print(line)
			}
		}
		if err != nil {
			return
		}
	}
}

// checkLocalPath is a courtesy check run after a /send_bad_user reply: even
// though the transfer can't proceed, the user may also have mistyped the
// local path, so report that too instead of only naming the absent peer.
func checkLocalPath(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("client: %s does not exist.\n", path)
		return
	}
	f.Close()
}

// pushFile is called once the server has confirmed the recipient exists.
// It sends one buffered read's worth of the local file's contents, or the
// literal control token /bad_path if the file cannot be opened.
func pushFile(conn net.Conn, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprint(conn, "/bad_path")
		return
	}
	defer f.Close()

	buf := make([]byte, transferBufferSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		fmt.Fprint(conn, "/bad_path")
		return
	}
	conn.Write(buf[:n])
}

// receiveFile reads the payload that immediately follows a /sending <path>
// line and writes it to a local file of the same base name.
func receiveFile(reader *bufio.Reader, path string) {
	buf := make([]byte, transferBufferSize)
	n, err := reader.Read(buf)
	if err != nil && n == 0 {
		fmt.Fprintf(os.Stderr, "client: file transfer read error: %v\n", err)
		return
	}

	out, err := os.Create(filepath.Base(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: cannot create %s: %v\n", path, err)
		return
	}
	defer out.Close()

	if _, err := out.Write(buf[:n]); err != nil {
		fmt.Fprintf(os.Stderr, "client: write %s: %v\n", path, err)
		return
	}
	fmt.Printf("client: received %s (%d bytes)\n", path, n)
}
