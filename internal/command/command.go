// Package command implements the recognized command vocabulary: parsing a
// RESP array into a typed Command, and executing it against a keyspace and
// configuration to produce a reply.
package command

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redislite/redislite/internal/config"
	"github.com/redislite/redislite/internal/keyspace"
	"github.com/redislite/redislite/internal/resp"
)

// ErrMalformedCommand is returned for a recognized command name used with
// the wrong shape of arguments.
var ErrMalformedCommand = errors.New("command: malformed command")

// ErrUnsupportedCommand is returned for a command name outside the
// recognized vocabulary.
var ErrUnsupportedCommand = errors.New("command: unsupported command")

// Kind identifies which command a Command holds.
type Kind int

const (
	Ping Kind = iota
	CommandDocs
	Echo
	Set
	Get
	ConfigGet
)

// Command is the parsed form of one client request.
type Command struct {
	Kind Kind

	EchoValue resp.Value

	Key     string // Set, Get
	Value   resp.Value
	Options keyspace.SetOptions

	ConfigKey string
}

// FromValue parses a RESP array (as produced by resp.Parse for a client
// request) into a Command. v must be a non-null array whose first element
// is a bulk string naming the command.
func FromValue(v resp.Value) (Command, error) {
	if v.Kind != resp.KindArray || v.IsNull() || len(v.Array) == 0 {
		return Command{}, ErrMalformedCommand
	}

	name, ok := bulkText(v.Array[0])
	if !ok {
		return Command{}, ErrMalformedCommand
	}

	switch strings.ToUpper(name) {
	case "PING":
		return Command{Kind: Ping}, nil

	case "COMMAND":
		return Command{Kind: CommandDocs}, nil

	case "ECHO":
		if len(v.Array) != 2 {
			return Command{}, ErrMalformedCommand
		}
		return Command{Kind: Echo, EchoValue: v.Array[1]}, nil

	case "GET":
		if len(v.Array) != 2 {
			return Command{}, ErrMalformedCommand
		}
		key, ok := bulkText(v.Array[1])
		if !ok {
			return Command{}, ErrMalformedCommand
		}
		return Command{Kind: Get, Key: key}, nil

	case "SET":
		return parseSet(v.Array[1:])

	case "CONFIG":
		return parseConfig(v.Array[1:])

	default:
		return Command{}, ErrUnsupportedCommand
	}
}

func parseConfig(args []resp.Value) (Command, error) {
	if len(args) != 2 {
		return Command{}, ErrMalformedCommand
	}
	sub, ok := bulkText(args[0])
	if !ok || !strings.EqualFold(sub, "GET") {
		return Command{}, ErrUnsupportedCommand
	}
	key, ok := bulkText(args[1])
	if !ok {
		return Command{}, ErrMalformedCommand
	}
	return Command{Kind: ConfigGet, ConfigKey: key}, nil
}

func parseSet(args []resp.Value) (Command, error) {
	if len(args) < 2 {
		return Command{}, ErrMalformedCommand
	}
	key, ok := bulkText(args[0])
	if !ok {
		return Command{}, ErrMalformedCommand
	}
	value := args[1]

	opts := keyspace.SetOptions{}
	now := time.Now()

	tokens := args[2:]
	for i := 0; i < len(tokens); i++ {
		tok, ok := bulkText(tokens[i])
		if !ok {
			return Command{}, ErrMalformedCommand
		}
		switch strings.ToUpper(tok) {
		case "EX":
			secs, err := intArg(tokens, &i)
			if err != nil {
				return Command{}, err
			}
			t := now.Add(time.Duration(secs) * time.Second)
			opts.ExpiresAt = &t

		case "PX":
			ms, err := intArg(tokens, &i)
			if err != nil {
				return Command{}, err
			}
			t := now.Add(time.Duration(ms) * time.Millisecond)
			opts.ExpiresAt = &t

		case "EXAT":
			secs, err := intArg(tokens, &i)
			if err != nil {
				return Command{}, err
			}
			t := time.Unix(secs, 0)
			opts.ExpiresAt = &t

		case "PXAT":
			ms, err := intArg(tokens, &i)
			if err != nil {
				return Command{}, err
			}
			t := time.UnixMilli(ms)
			opts.ExpiresAt = &t

		case "NX":
			opts.Condition = keyspace.IfNotExists

		case "XX":
			opts.Condition = keyspace.IfExists

		case "KEEPTTL":
			opts.KeepTTL = true

		case "GET":
			opts.Get = true

		default:
			return Command{}, ErrMalformedCommand
		}
	}

	return Command{Kind: Set, Key: key, Value: value, Options: opts}, nil
}

// intArg reads the argument following tokens[*i], advancing *i past it.
func intArg(tokens []resp.Value, i *int) (int64, error) {
	*i++
	if *i >= len(tokens) {
		return 0, ErrMalformedCommand
	}
	text, ok := bulkText(tokens[*i])
	if !ok {
		return 0, ErrMalformedCommand
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, ErrMalformedCommand
	}
	return n, nil
}

func bulkText(v resp.Value) (string, bool) {
	if v.Kind != resp.KindBulkString || v.IsNull() {
		return "", false
	}
	return string(v.Bulk), true
}

// Execute runs cmd against ks and cfg, producing the RESP reply.
func Execute(cmd Command, ks *keyspace.Keyspace, cfg *config.Config) resp.Value {
	switch cmd.Kind {
	case Ping:
		return resp.SimpleString("PONG")

	case CommandDocs:
		return resp.SimpleString("OK")

	case Echo:
		return cmd.EchoValue

	case Get:
		v, ok := ks.Get(cmd.Key)
		if !ok {
			return resp.NullBulkString()
		}
		return v

	case Set:
		prior, hadPrior, _ := ks.Set(cmd.Key, cmd.Value, cmd.Options)
		if cmd.Options.Get {
			if !hadPrior {
				return resp.NullBulkString()
			}
			return prior
		}
		return resp.SimpleString("OK")

	case ConfigGet:
		value, ok := cfg.Get(cmd.ConfigKey)
		if !ok {
			return resp.NullBulkString()
		}
		return resp.Array(resp.BulkStringFromString(cmd.ConfigKey), resp.BulkStringFromString(value))

	default:
		return resp.Errorf("ERR unsupported command")
	}
}
