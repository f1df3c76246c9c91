// Package command maps parsed Array frames onto the four typed commands
// (GET, SET, DEL, CREATE) and executes them against a keyspace manager.
package command

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/segment-dev/segment/connection"
	"github.com/segment-dev/segment/frame"
	"github.com/segment-dev/segment/keyspace"
)

// Command is a parsed, executable request. Exec writes its own response
// (including any ERREXEC error frame) to conn.
type Command interface {
	Exec(conn *connection.Connection, km *keyspace.Manager) error
}

// Get is `GET keyspace key`.
type Get struct {
	Keyspace string
	Key      string
}

// Set is `SET keyspace key value`.
type Set struct {
	Keyspace string
	Key      string
	Value    []byte
}

// Del is `DEL keyspace key`.
type Del struct {
	Keyspace string
	Key      string
}

// Create is `CREATE keyspace [EV {RANDOM|NOOP|LRU}] [SS N]`.
type Create struct {
	Keyspace            string
	Evictor             keyspace.Evictor
	MaxMemorySampleSize int
}

// New parses f (which must be a top-level Array frame) into a Command.
// Parse failures are ERRPARSE-classified errors.
func New(f frame.Frame) (Command, error) {
	parser, err := NewParser(f)
	if err != nil {
		return nil, err
	}

	name, ok, err := parser.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE no command was provided to be executed")
	}

	switch strings.ToUpper(name) {
	case "GET":
		return parseGet(parser)
	case "SET":
		return parseSet(parser)
	case "DEL":
		return parseDel(parser)
	case "CREATE":
		return parseCreate(parser)
	default:
		return nil, errors.Errorf("ERRPARSE unknown command '%s'", name)
	}
}

func parseGet(p *Parser) (Command, error) {
	keyspaceName, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEYSPACE'")
	}
	key, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEY'")
	}
	if !p.Consumed() {
		return nil, errors.New("ERRPARSE invalid command, wrong number of arguments for 'GET'")
	}
	return Get{Keyspace: keyspaceName, Key: key}, nil
}

func parseDel(p *Parser) (Command, error) {
	keyspaceName, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEYSPACE'")
	}
	key, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEY'")
	}
	if !p.Consumed() {
		return nil, errors.New("ERRPARSE invalid command, wrong number of arguments for 'DEL'")
	}
	return Del{Keyspace: keyspaceName, Key: key}, nil
}

func parseSet(p *Parser) (Command, error) {
	keyspaceName, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEYSPACE'")
	}
	key, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEY'")
	}
	value, ok, err := p.NextBlob()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'VALUE'")
	}
	if !p.Consumed() {
		return nil, errors.New("ERRPARSE invalid command, wrong number of arguments for 'SET'")
	}
	return Set{Keyspace: keyspaceName, Key: key, Value: value}, nil
}

const maxCreateOptionTokens = 4

func parseCreate(p *Parser) (Command, error) {
	keyspaceName, ok, err := p.NextString()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("ERRPARSE invalid command, missing argument 'KEYSPACE'")
	}

	cmd := Create{Keyspace: keyspaceName, Evictor: keyspace.EvictorNoop}
	var sampleSizeSet bool

	var tokens []string
	for !p.Consumed() {
		if len(tokens) > maxCreateOptionTokens {
			return nil, errors.New("ERRPARSE invalid command, wrong number of arguments for 'CREATE'")
		}
		tok, ok, err := p.NextString()
		if err != nil {
			return nil, err
		}
		if ok {
			tokens = append(tokens, tok)
		}
	}

	if len(tokens) == 0 {
		return cmd, nil
	}
	if len(tokens)%2 != 0 {
		return nil, errors.New("ERRPARSE invalid command, wrong number of arguments for 'CREATE'")
	}

	for i := 0; i < len(tokens)-1; i += 2 {
		arg := strings.ToUpper(tokens[i])
		val := strings.ToUpper(tokens[i+1])

		switch arg {
		case "EV":
			evictor, ok := keyspace.ParseEvictor(val)
			if !ok {
				return nil, errors.Errorf("ERRPARSE invalid value '%s' for 'EVICTOR'", val)
			}
			cmd.Evictor = evictor
		case "SS":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return nil, errors.Errorf("ERRPARSE invalid value '%s' for 'SAMPLE SIZE'", val)
			}
			cmd.MaxMemorySampleSize = n
			sampleSizeSet = true
		default:
			return nil, errors.Errorf("ERRPARSE invalid argument '%s'", arg)
		}
	}

	switch {
	case cmd.Evictor == keyspace.EvictorNoop && sampleSizeSet:
		return nil, errors.New("ERRPARSE invalid command, 'SAMPLE SIZE' not applicable for 'NOOP' evictor")
	case cmd.Evictor != keyspace.EvictorNoop && !sampleSizeSet:
		cmd.MaxMemorySampleSize = keyspace.DefaultMaxMemorySampleSize
	}

	return cmd, nil
}

// Exec implements Command.
func (c Get) Exec(conn *connection.Connection, km *keyspace.Manager) error {
	var (
		value []byte
		found bool
	)
	err := km.WithKeyspace(c.Keyspace, func(ks *keyspace.Keyspace) error {
		value, found = ks.Get(c.Key)
		return nil
	})
	if err != nil {
		return conn.WriteError("ERREXEC " + err.Error())
	}
	if !found {
		return conn.WriteNull()
	}
	return conn.WriteBlob(value)
}

// Exec implements Command.
func (c Set) Exec(conn *connection.Connection, km *keyspace.Manager) error {
	var result int
	err := km.WithKeyspace(c.Keyspace, func(ks *keyspace.Keyspace) error {
		result = ks.Set(c.Key, c.Value)
		return nil
	})
	if err != nil {
		return conn.WriteError("ERREXEC " + err.Error())
	}
	return conn.WriteInteger(int64(result))
}

// Exec implements Command.
func (c Del) Exec(conn *connection.Connection, km *keyspace.Manager) error {
	var result int
	err := km.WithKeyspace(c.Keyspace, func(ks *keyspace.Keyspace) error {
		result = ks.Del(c.Key)
		return nil
	})
	if err != nil {
		return conn.WriteError("ERREXEC " + err.Error())
	}
	return conn.WriteInteger(int64(result))
}

// Exec implements Command.
func (c Create) Exec(conn *connection.Connection, km *keyspace.Manager) error {
	result := km.Create(c.Keyspace, c.Evictor, c.MaxMemorySampleSize)
	return conn.WriteInteger(int64(result))
}
