package capability

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gorilla/websocket"

	chaterr "yggdrasil/internal/errors"
	"yggdrasil/internal/transport"
	"yggdrasil/util"
)

// Console bridges line-oriented I/O to a relay server: every input line
// becomes one text frame, every received text frame becomes one output
// line.
type Console struct {
	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	Stdin  io.Reader
	Stdout io.Writer
	Logger *util.Logger

	// Interactive prefixes received lines with "< " so they stand out
	// from what the user is typing.
	Interactive bool
}

func (c *Console) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Console) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Console) logger() *util.Logger {
	if c.Logger == nil {
		return util.NewLogger(0)
	}
	return c.Logger
}

// Handle runs until the server closes the connection.  When input is
// exhausted it starts the closing handshake and keeps printing frames
// until the server answers, so replies to the last lines are not lost.
func (c *Console) Handle(ctx context.Context, conn *transport.Conn) error {
	defer conn.Close()
	log := c.logger()

	recvDone := make(chan error, 1)
	go func() { recvDone <- c.receive(conn) }()

	// Input reads cannot be interrupted; this goroutine may outlive
	// Handle while blocked on a terminal.
	go func() {
		err := util.ForEachLine(c.stdin(), conn.WriteText)
		if err != nil && !util.IsHarmless(err) {
			log.Verbose("input: %v", err)
		}
		conn.CloseWith(websocket.CloseNormalClosure, "") //nolint:errcheck
	}()

	select {
	case err := <-recvDone:
		return err
	case <-ctx.Done():
		conn.CloseWith(websocket.CloseNormalClosure, "") //nolint:errcheck
		select {
		case err := <-recvDone:
			return err
		case <-time.After(shutdownWait):
			return nil
		}
	}
}

func (c *Console) receive(conn *transport.Conn) error {
	out := c.stdout()
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			if chaterr.Is(err, chaterr.ErrConnClosed) {
				return nil
			}
			return err
		}
		if frame.Kind != transport.TextFrame {
			continue
		}
		line := frame.Text
		if c.Interactive {
			line = "< " + line
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
}
