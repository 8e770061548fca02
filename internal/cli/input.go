// Package cli provides the interactive query prompt used for debugging the
// completion index in real time.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
)

// InputHandler reads prefixes line by line and prints the suggestions for
// each one as a table.
type InputHandler struct {
	suggester    suggest.Suggester
	timeout      time.Duration
	in           io.Reader
	out          io.Writer
	requestCount int
	log          *log.Logger
}

// NewInputHandler creates a handler. A positive timeout bounds each lookup.
func NewInputHandler(s suggest.Suggester, timeout time.Duration, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		suggester: s,
		timeout:   timeout,
		in:        in,
		out:       out,
		log:       logger.New("cli"),
	}
}

// Start begins the prompt loop. It returns nil when the input ends.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, "type a prefix and press Enter to see suggestions (Ctrl+D to exit):")
	reader := bufio.NewReader(h.in)

	for {
		fmt.Fprint(h.out, "> ")
		line, err := reader.ReadString('\n')
		prefix := strings.TrimSpace(line)
		if prefix != "" {
			if qerr := h.Query(ctx, prefix); qerr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				h.log.Error("query failed", "prefix", prefix, "err", qerr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

// Query runs one lookup and renders it.
func (h *InputHandler) Query(ctx context.Context, prefix string) error {
	h.requestCount++
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	suggestions, err := h.suggester.Suggestions(ctx, prefix)
	if err != nil {
		return err
	}
	h.log.Debugf("Took [ %v ] for prefix '%s' (request #%d)", time.Since(start), prefix, h.requestCount)

	if len(suggestions) == 0 {
		fmt.Fprintf(h.out, "no suggestions for %q\n", prefix)
		return nil
	}
	return h.render(suggestions)
}

func (h *InputHandler) render(suggestions []string) error {
	rows := make([][]string, len(suggestions))
	for i, s := range suggestions {
		rows[i] = []string{strconv.Itoa(i + 1), s}
	}

	table := tablewriter.NewWriter(h.out)
	table.Header("#", "Suggestion")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
