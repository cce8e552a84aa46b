package server

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/helados/internal/adapter/handler"
)

const (
	defaultReadBufferSize = 1024
	connQueueFactor       = 4
)

type Config struct {
	// ReadBufferSize bounds the single read taken from each connection.
	ReadBufferSize int
	// Workers is the number of connections handled at once. 1 keeps the
	// accept loop strictly sequential.
	Workers int
}

// TCPServer reads one request per connection, writes one response and closes
// the connection.
type TCPServer struct {
	router *handler.Router
	config Config
}

func NewTCPServer(router *handler.Router, config Config) *TCPServer {
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaultReadBufferSize
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &TCPServer{router: router, config: config}
}

// Serve accepts connections until ctx is cancelled. Connections already
// accepted are finished before Serve returns.
func (s *TCPServer) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	// Requests keep running after shutdown starts.
	reqCtx := context.WithoutCancel(ctx)

	if s.config.Workers == 1 {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				log.Printf("Unable to connect: %v", err)
				continue
			}
			s.handleConnection(reqCtx, conn)
		}
	}

	queue := make(chan net.Conn, s.config.Workers*connQueueFactor)
	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.workerLoop(reqCtx, queue)
		}()
	}
	log.Printf("started %d connection workers", s.config.Workers)

	defer func() {
		close(queue)
		wg.Wait()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Unable to connect: %v", err)
			continue
		}
		queue <- conn
	}
}

func (s *TCPServer) workerLoop(ctx context.Context, queue <-chan net.Conn) {
	for conn := range queue {
		s.handleConnection(ctx, conn)
	}
}

func (s *TCPServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	requestID := uuid.NewString()

	buffer := make([]byte, s.config.ReadBufferSize)
	n, err := conn.Read(buffer)
	if err != nil {
		log.Printf("request %s: unable to read stream: %v", requestID, err)
		return
	}

	req := handler.ParseRequest(buffer[:n])
	resp := s.router.Dispatch(ctx, req)

	if _, err := conn.Write(resp.Bytes()); err != nil {
		log.Printf("request %s: unable to write response: %v", requestID, err)
		return
	}
	log.Printf("request %s: %s %s -> %s", requestID, req.Method, req.Path, statusCode(resp.StatusLine))
}

// statusCode returns the numeric code of a status line such as "HTTP/1.1 200 OK".
func statusCode(statusLine string) string {
	if len(statusLine) < 12 {
		return statusLine
	}
	return statusLine[9:12]
}
