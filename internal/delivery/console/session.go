package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wbscout/wbscout/internal/usecase"
)

// DefaultExitKeyword ends the session (compared case-insensitively)
const DefaultExitKeyword = "quit"

// MaxLineBytes is the longest input line accepted as a query. Longer lines
// are reported and skipped.
const MaxLineBytes = 1 << 20

// State is the state of an interactive session
type State int

const (
	StateAwaitingQuery State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingQuery:
		return "awaiting-query"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Searcher runs one query end to end
type Searcher interface {
	SearchAndSave(ctx context.Context, query string) (*usecase.SearchOutcome, error)
}

// Session reads queries line by line and runs each through the Searcher
// until the exit keyword, end of input, or context cancellation.
type Session struct {
	searcher    Searcher
	in          io.Reader
	out         io.Writer
	exitKeyword string
	state       State
}

// NewSession creates an interactive session
func NewSession(searcher Searcher, in io.Reader, out io.Writer, exitKeyword string) *Session {
	if exitKeyword == "" {
		exitKeyword = DefaultExitKeyword
	}
	return &Session{
		searcher:    searcher,
		in:          in,
		out:         out,
		exitKeyword: exitKeyword,
		state:       StateAwaitingQuery,
	}
}

// State returns the current session state
func (s *Session) State() State {
	return s.state
}

// IsExit reports whether the input line is the exit keyword
func (s *Session) IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), s.exitKeyword)
}

// Run drives the session until it terminates. Cancelling ctx (e.g. on SIGINT)
// terminates it even while it is waiting for input.
func (s *Session) Run(ctx context.Context) error {
	log := zerolog.Ctx(ctx).With().Str("component", "console").Logger()

	lines := make(chan inputLine)
	readErr := make(chan error, 1)
	go s.readLines(ctx, lines, readErr)

	for s.state == StateAwaitingQuery {
		if ctx.Err() != nil {
			s.terminate("\nProgram terminated by user. Goodbye!")
			break
		}

		fmt.Fprintf(s.out, "\nEnter search query (or '%s' to exit): ", s.exitKeyword)

		select {
		case <-ctx.Done():
			s.terminate("\nProgram terminated by user. Goodbye!")
		case line, ok := <-lines:
			switch {
			case !ok:
				s.terminate("\nGoodbye!")
			case line.tooLong:
				log.Warn().Int("max_bytes", MaxLineBytes).Msg("Skipped oversized input line")
				fmt.Fprintf(s.out, "Query is too long (over %d bytes), skipped.\n", MaxLineBytes)
			case s.IsExit(line.text):
				s.terminate("Goodbye!")
			case strings.TrimSpace(line.text) == "":
				// nothing to search for, prompt again
			default:
				s.runQuery(ctx, strings.TrimSpace(line.text))
			}
		}
	}

	select {
	case err := <-readErr:
		if err != nil {
			log.Error().Err(err).Msg("Failed to read input")
			return fmt.Errorf("reading input: %w", err)
		}
	default:
	}
	return nil
}

func (s *Session) terminate(farewell string) {
	fmt.Fprintln(s.out, farewell)
	s.state = StateTerminated
}

type inputLine struct {
	text    string
	tooLong bool
}

// readLines feeds input lines to the session until EOF or cancellation
func (s *Session) readLines(ctx context.Context, lines chan<- inputLine, readErr chan<- error) {
	defer close(lines)

	reader := bufio.NewReader(s.in)
	for {
		line, err := readLine(reader, MaxLineBytes)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			readErr <- err
			return
		}

		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// readLine reads up to the next newline. A line longer than max is consumed
// in full but only reported as too long. The final line may lack a newline.
func readLine(r *bufio.Reader, max int) (inputLine, error) {
	var (
		buf     []byte
		tooLong bool
		read    bool
	)

	for {
		chunk, err := r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			if len(buf)+len(chunk) > max+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && read:
		case err != nil:
			return inputLine{}, err
		}

		text := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
		return inputLine{text: text, tooLong: tooLong}, nil
	}
}

// runQuery handles one query. Errors and panics are reported and swallowed so
// the session keeps going.
func (s *Session) runQuery(ctx context.Context, query string) {
	logger := zerolog.Ctx(ctx).With().
		Str("component", "console").
		Str("search_id", uuid.NewString()).
		Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("query", query).Msg("Recovered from panic while handling query")
			fmt.Fprintf(s.out, "\nAn unexpected error occurred: %v\n", r)
		}
	}()

	fmt.Fprintln(s.out, "Fetching products...")

	outcome, err := s.searcher.SearchAndSave(ctx, query)
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return
	case err != nil && outcome != nil:
		fmt.Fprintf(s.out, "Error saving results: %v\n", err)
		return
	case err != nil:
		logger.Error().Err(err).Str("query", query).Msg("Query failed")
		fmt.Fprintf(s.out, "An unexpected error occurred: %v\n", err)
		return
	}

	if outcome.Result.Len() == 0 {
		fmt.Fprintln(s.out, "No products found or an error occurred.")
	}
	fmt.Fprintf(s.out, "Results saved to %s (%d products)\n", outcome.Path, outcome.Page.Cards)
}
