// Package closeflag provides a stop flag that can be closed from any
// goroutine, any number of times.
package closeflag

import (
	"context"
	"errors"
	"sync"
)

// CloseFlag closes a channel the first time Close is called
type CloseFlag struct {
	mutex     sync.Mutex
	closed    bool
	closeChan chan struct{}

	// CloseFunc runs once, on the first Close. It may call Close itself.
	CloseFunc func() error
}

// ErrorClosed is returned by every Close after the first
var ErrorClosed = errors.New("CloseFlag was already closed")

// Chan returns a channel that is closed together with the flag
func (c *CloseFlag) Chan() <-chan struct{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closeChan == nil {
		c.closeChan = make(chan struct{})
		if c.closed {
			close(c.closeChan)
		}
	}
	return c.closeChan
}

func (c *CloseFlag) IsClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

// Close closes the flag. Only the first call runs CloseFunc.
func (c *CloseFlag) Close() error {
	c.mutex.Lock()
	closed := c.closed
	c.closed = true

	if !closed && c.closeChan != nil {
		close(c.closeChan)
	}
	c.mutex.Unlock()

	if closed {
		return ErrorClosed
	}
	if c.CloseFunc != nil {
		return c.CloseFunc()
	}
	return nil
}

// Context derives a context from parent that is cancelled when the flag is
// closed. Calling cancel stops watching the flag.
func (c *CloseFlag) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	done := c.Chan()

	go func() {
		select {
		case <-done:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
