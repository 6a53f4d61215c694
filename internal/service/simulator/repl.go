package simulator

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mkravchuk/telecore/internal/domain/call"
	"github.com/mkravchuk/telecore/internal/logger"
	"github.com/mkravchuk/telecore/internal/service/calls"
	"github.com/mkravchuk/telecore/internal/service/callservice"
	"github.com/mkravchuk/telecore/internal/service/ringer"
)

const replUsage = `commands:
  add <handle> [ringtone]   incoming call starts ringing
  place <handle>            outgoing call, forwarded to the bound peer
  answer <n>                accept ringing call n
  reject <n> [message...]   decline ringing call n
  state <n> <state>         set call n state (ringing/answered/rejected/active/disconnected)
  remove <n>                drop call n from the live table
  fg <n|none>               set the foreground call
  silence                   stop all notification output
  list                      show tracked calls
  quit                      exit`

// session holds the interactive loop's view of the simulation. Calls are
// addressed by the small number printed when they are created; numbers are
// never reused within a session.
type session struct {
	mgr   *calls.Manager
	rng   *ringer.Ringer
	proxy *callservice.Proxy

	// byNumber maps user-facing call numbers to live calls.
	byNumber map[int]*call.Call
	// next is the number assigned to the next created call.
	next int
}

// runREPL reads commands from stdin and applies them to the simulation until
// quit, end of input, or context cancellation.
func runREPL(ctx context.Context, mgr *calls.Manager, rng *ringer.Ringer, proxy *callservice.Proxy) error {
	s := &session{
		mgr:      mgr,
		rng:      rng,
		proxy:    proxy,
		byNumber: make(map[int]*call.Call),
		next:     1,
	}

	fmt.Println(replUsage)

	scanner := bufio.NewScanner(os.Stdin)
	for prompt(); scanner.Scan(); prompt() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}

		if err := s.execute(ctx, fields[0], fields[1:]); err != nil {
			fmt.Println("error:", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	logger.Info(ctx, "Leaving interactive mode")

	return nil
}

// prompt prints the input marker.
func prompt() {
	fmt.Print("> ")
}

// execute runs a single parsed command.
//
//nolint:cyclop // Plain command dispatch, one case per verb.
func (s *session) execute(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "help":
		fmt.Println(replUsage)

		return nil
	case "add":
		return s.add(ctx, args)
	case "place":
		return s.place(ctx, args)
	case "answer":
		c, err := s.lookup(args)
		if err != nil {
			return err
		}

		s.mgr.AnswerCall(ctx, c)

		return nil
	case "reject":
		return s.reject(ctx, args)
	case "state":
		return s.setState(ctx, args)
	case "remove":
		c, err := s.lookup(args)
		if err != nil {
			return err
		}

		s.mgr.RemoveCall(ctx, c)

		return nil
	case "fg":
		return s.setForeground(ctx, args)
	case "silence":
		s.rng.Silence(ctx)

		return nil
	case "list":
		s.list()

		return nil
	default:
		return fmt.Errorf("unknown command %q, try help", verb)
	}
}

// add creates an incoming ringing call.
func (s *session) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <handle> [ringtone]")
	}

	c := call.New(call.DirectionIncoming, args[0])
	if len(args) > 1 {
		c.Ringtone = args[1]
	}

	c.SetState(call.StateRinging)

	n := s.track(c)
	s.mgr.AddCall(ctx, c)

	fmt.Printf("call %d ringing: %s\n", n, c.Handle)

	return nil
}

// place creates an outgoing call and forwards it to the bound peer, if any.
func (s *session) place(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: place <handle>")
	}

	c := call.New(call.DirectionOutgoing, args[0])
	n := s.track(c)
	s.mgr.AddCall(ctx, c)

	switch {
	case s.proxy == nil:
	case s.proxy.Bound():
		s.proxy.IsCompatibleWith(ctx, c.ToInfo())
		s.proxy.Call(ctx, c.ToInfo())
	default:
		fmt.Println("peer not bound, call kept local")
	}

	fmt.Printf("call %d placed: %s\n", n, c.Handle)

	return nil
}

// reject declines a ringing call, with an optional trailing message.
func (s *session) reject(ctx context.Context, args []string) error {
	c, err := s.lookup(args)
	if err != nil {
		return err
	}

	message := strings.Join(args[1:], " ")
	s.mgr.RejectCall(ctx, c, message != "", message)

	return nil
}

// setState transitions a call's lifecycle state.
func (s *session) setState(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: state <n> <state>")
	}

	c, err := s.lookup(args[:1])
	if err != nil {
		return err
	}

	newState, err := parseState(args[1])
	if err != nil {
		return err
	}

	s.mgr.SetCallState(ctx, c, newState)

	if newState == call.StateDisconnected && s.proxy != nil && s.proxy.Bound() {
		s.proxy.Disconnect(ctx, c.ID.String())
	}

	return nil
}

// setForeground switches the foreground call, "none" clears it.
func (s *session) setForeground(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "none" {
		s.mgr.SetForegroundCall(ctx, nil)

		return nil
	}

	c, err := s.lookup(args)
	if err != nil {
		return err
	}

	s.mgr.SetForegroundCall(ctx, c)

	return nil
}

// list prints the tracked calls with their numbers.
func (s *session) list() {
	foreground := s.mgr.ForegroundCall()

	for n := 1; n < s.next; n++ {
		c, ok := s.byNumber[n]
		if !ok {
			continue
		}

		if _, live := s.mgr.Call(c.ID); !live {
			continue
		}

		marker := " "
		if c == foreground {
			marker = "*"
		}

		fmt.Printf("%s %d  %-9s %-12s %s\n", marker, n, c.State(), c.Direction, c.Handle)
	}
}

// track assigns the next number to a call.
func (s *session) track(c *call.Call) int {
	n := s.next
	s.next++
	s.byNumber[n] = c

	return n
}

// lookup resolves a call number argument to a live call.
func (s *session) lookup(args []string) (*call.Call, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing call number")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid call number %q", args[0])
	}

	c, ok := s.byNumber[n]
	if !ok {
		return nil, fmt.Errorf("no call numbered %d", n)
	}

	if _, live := s.mgr.Call(c.ID); !live {
		return nil, fmt.Errorf("call %d is no longer tracked", n)
	}

	return c, nil
}

// parseState maps a command argument to a lifecycle state.
func parseState(s string) (call.State, error) {
	switch strings.ToLower(s) {
	case "created":
		return call.StateCreated, nil
	case "ringing":
		return call.StateRinging, nil
	case "answered":
		return call.StateAnswered, nil
	case "rejected":
		return call.StateRejected, nil
	case "active":
		return call.StateActive, nil
	case "disconnected":
		return call.StateDisconnected, nil
	default:
		return 0, fmt.Errorf("unknown state %q", s)
	}
}
