package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/phasestarra7/GroundZero/internal/combat"
	"github.com/phasestarra7/GroundZero/internal/match"
	"github.com/phasestarra7/GroundZero/internal/session"
	"github.com/phasestarra7/GroundZero/internal/validation"
	"github.com/phasestarra7/GroundZero/internal/vote"
)

var (
	ErrQuit           = errors.New("quit requested")
	ErrUnknownCommand = errors.New("unknown command")
)

const helpText = `commands:
  join <name> [world x z]       connect a player, optionally at a location
  leave <name>                  disconnect a player
  move <name> <world> <x> <z>   set a player's location
  start [name]                  start a match
  cancel [name]                 cancel a match that is not running yet
  end [name]                    end the running match
  reset [name]                  force everything back to idle
  vote <name> <map|income|mode> <key>
  hit <victim> <attacker|-> <kind> <amount> [weapon]
  death <name>                  report a participant's death
  status                        print the status board
  players                       list connected players
  quit                          stop the server`

// PlayerID derives a stable id from a console player name.
func PlayerID(name string) session.PlayerID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("groundzero:player:"+strings.ToLower(name)))
}

// Shell turns console lines into match operations. Execute must run on the
// scheduler goroutine.
type Shell struct {
	match *match.Manager
	world *World
	out   io.Writer
}

func NewShell(m *match.Manager, world *World, out io.Writer) *Shell {
	return &Shell{match: m, world: world, out: out}
}

func (s *Shell) println(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Shell) requester(args []string) session.PlayerID {
	if len(args) == 0 {
		return match.Console
	}
	return PlayerID(args[0])
}

func (s *Shell) known(name string) (session.PlayerID, error) {
	p, ok := s.match.Roster().Lookup(name)
	if !ok {
		return session.PlayerID{}, fmt.Errorf("no player named %q", name)
	}
	return p.ID, nil
}

func parseLocation(args []string) (Location, error) {
	if len(args) != 3 {
		return Location{}, errors.New("location needs <world> <x> <z>")
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid x: %w", err)
	}
	z, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return Location{}, fmt.Errorf("invalid z: %w", err)
	}
	if !validation.IsValidCoordinate(x, z) {
		return Location{}, fmt.Errorf("location (%v, %v) is out of range", x, z)
	}
	return Location{World: args[0], X: x, Z: z}, nil
}

// Execute runs one command line. ErrQuit asks the caller to stop.
func (s *Shell) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		s.println("%s", helpText)
	case "quit", "exit", "stop":
		return ErrQuit
	case "join":
		return s.join(args)
	case "leave":
		if len(args) != 1 {
			return errors.New("usage: leave <name>")
		}
		id, err := s.known(args[0])
		if err != nil {
			return err
		}
		s.match.Leave(id)
		s.world.Forget(id)
	case "move":
		if len(args) != 4 {
			return errors.New("usage: move <name> <world> <x> <z>")
		}
		id, err := s.known(args[0])
		if err != nil {
			return err
		}
		loc, err := parseLocation(args[1:])
		if err != nil {
			return err
		}
		s.world.SetLocation(id, loc)
	case "start":
		s.match.Start(s.requester(args))
	case "cancel":
		s.match.Cancel(s.requester(args))
	case "end":
		s.match.EndGame(s.requester(args))
	case "reset":
		s.match.ForceResetToIdle(s.requester(args))
	case "vote":
		return s.vote(args)
	case "hit":
		return s.hit(args)
	case "death", "die":
		if len(args) != 1 {
			return errors.New("usage: death <name>")
		}
		id, err := s.known(args[0])
		if err != nil {
			return err
		}
		if _, ok := s.match.HandleDeath(id); !ok {
			return fmt.Errorf("%s is not in a running match", args[0])
		}
	case "status":
		for _, l := range s.match.Status() {
			s.println("%s", l)
		}
	case "players":
		for _, id := range s.match.Roster().Online() {
			role := "spectator"
			if s.match.Session().IsParticipant(id) {
				role = "participant"
			}
			s.println("%s (%s)", s.match.Roster().Name(id), role)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
	return nil
}

func (s *Shell) join(args []string) error {
	if len(args) != 1 && len(args) != 4 {
		return errors.New("usage: join <name> [world x z]")
	}
	name := args[0]
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	id := PlayerID(name)
	if len(args) == 4 {
		loc, err := parseLocation(args[1:])
		if err != nil {
			return err
		}
		s.world.SetLocation(id, loc)
	}
	s.match.Join(id, name)
	return nil
}

func (s *Shell) vote(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: vote <name> <map|income|mode> <key>")
	}
	id, err := s.known(args[0])
	if err != nil {
		return err
	}
	kind, ok := vote.ParseKind(args[1])
	if !ok {
		return fmt.Errorf("unknown vote %q", args[1])
	}
	s.match.CastVote(kind, id, args[2])
	return nil
}

func (s *Shell) hit(args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return errors.New("usage: hit <victim> <attacker|-> <kind> <amount> [weapon]")
	}
	victim, err := s.known(args[0])
	if err != nil {
		return err
	}

	// An attacker that does not resolve is recorded as environmental damage.
	attacker := uuid.Nil
	if args[1] != "-" {
		if id, err := s.known(args[1]); err == nil {
			attacker = id
		} else {
			s.println("unknown attacker %q, recording hit without attacker", args[1])
		}
	}

	amount, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if !validation.IsValidDamage(amount) {
		return fmt.Errorf("damage %v is out of range", amount)
	}
	weapon := ""
	if len(args) == 5 {
		weapon = args[4]
	}

	if !s.match.RecordHit(victim, attacker, combat.ParseKind(args[2]), weapon, amount) {
		return fmt.Errorf("hit on %s ignored", args[0])
	}
	return nil
}
