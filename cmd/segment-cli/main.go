// Command segment-cli is an interactive REPL client for segment-server.
package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/segment-dev/segment/connection"
	"github.com/segment-dev/segment/frame"
)

func main() {
	var (
		host string
		port uint16
	)

	cmd := &cobra.Command{
		Use:   "segment-cli",
		Short: "Interactive client for segment-server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "server host")
	cmd.Flags().Uint16Var(&port, "port", 9890, "server port")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(host string, port uint16) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	c := connection.New(conn)
	defer c.Close()

	rl, err := readline.New(fmt.Sprintf("%s:%d> ", host, port))
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF (Ctrl-D) or readline.ErrInterrupt (Ctrl-C)
			return nil
		}

		tokens := tokenizeCommand(line)
		if len(tokens) == 0 {
			continue
		}

		if err := c.WriteFrame(frame.Array(tokens)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil
		}

		resp, err := c.ReadFrame()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if resp == nil {
			fmt.Println("(null)")
			continue
		}
		fmt.Println(resp.String())
	}
}

// tokenizeCommand splits a line of input into String frames, honoring
// double-quoted segments, which may contain spaces.
func tokenizeCommand(cmd string) []frame.Frame {
	var tokens []frame.Frame
	var token strings.Builder
	isOpenQuote := false

	for _, c := range strings.TrimSpace(cmd) {
		switch {
		case c == '"' && isOpenQuote:
			isOpenQuote = false
			tokens = append(tokens, frame.String(token.String()))
			token.Reset()
		case c == '"' && !isOpenQuote:
			isOpenQuote = true
		case c == ' ' && isOpenQuote:
			token.WriteRune(c)
		case c == ' ' && !isOpenQuote:
			if token.Len() > 0 {
				tokens = append(tokens, frame.String(token.String()))
				token.Reset()
			}
		default:
			token.WriteRune(c)
		}
	}

	if token.Len() > 0 {
		tokens = append(tokens, frame.String(token.String()))
	}

	return tokens
}
