package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/internal/utils"
	"github.com/bastiangx/suggestd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// IPCServer answers msgpack completion requests read from r with responses
// written to w, one at a time.
type IPCServer struct {
	suggester suggest.Suggester
	timeout   time.Duration
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	out       *bufio.Writer
	log       *log.Logger
}

// NewIPCServer creates an IPC server, usually over os.Stdin and os.Stdout.
func NewIPCServer(s suggest.Suggester, r io.Reader, w io.Writer, timeout time.Duration) *IPCServer {
	out := bufio.NewWriter(w)
	return &IPCServer{
		suggester: s,
		timeout:   timeout,
		dec:       msgpack.NewDecoder(bufio.NewReader(r)),
		enc:       msgpack.NewEncoder(out),
		out:       out,
		log:       logger.New("ipc"),
	}
}

// Start processes requests until the input ends or ctx is done. A clean EOF
// returns nil.
func (s *IPCServer) Start(ctx context.Context) error {
	s.log.Debug("Starting IPC server")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req CompletionRequest
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			// the stream position is unknown after a bad frame
			s.send(CompletionError{Error: "invalid request", Code: 400})
			return err
		}
		s.handleRequest(ctx, req)
	}
}

func (s *IPCServer) handleRequest(ctx context.Context, req CompletionRequest) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	words, err := s.suggester.Suggestions(ctx, req.Prefix)
	elapsed := time.Since(start)
	if err != nil {
		s.log.Error("suggest failed", "id", req.ID, "err", err)
		s.send(CompletionError{ID: req.ID, Error: err.Error(), Code: StatusFor(err)})
		return
	}

	ranks := utils.CreateRankList(len(words))
	suggestions := make([]CompletionSuggestion, len(words))
	for i, w := range words {
		suggestions[i] = CompletionSuggestion{Word: w, Rank: ranks[i]}
	}
	s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *IPCServer) send(v any) {
	if err := s.enc.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}
