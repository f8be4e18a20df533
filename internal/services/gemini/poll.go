package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dubsync/internal/logging"
	"dubsync/internal/services"
)

// WaitForActive polls file until it is ACTIVE. A FAILED file is an external
// tool error; exceeding the poll timeout is services.ErrTimeout.
func (c *Client) WaitForActive(ctx context.Context, file File) (File, error) {
	pollCtx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	started := time.Now()
	delay := c.cfg.PollInterval
	for attempt := 1; ; attempt++ {
		switch file.State {
		case StateActive:
			c.logger.Debug("file active",
				logging.String("file_name", file.Name),
				logging.Int("polls", attempt-1),
				logging.Duration("waited", time.Since(started)),
			)
			return file, nil
		case StateFailed:
			reason := "processing failed"
			if file.Error != nil && file.Error.Message != "" {
				reason = file.Error.Message
			}
			return file, services.Wrap(services.ErrExternalTool, "gemini", "wait for file", file.Name+": "+reason, nil)
		}

		if err := sleep(pollCtx, delay); err != nil {
			return file, c.pollError(ctx, file, err)
		}
		next, err := c.GetFile(pollCtx, file.Name)
		if err != nil {
			if pollCtx.Err() != nil {
				return file, c.pollError(ctx, file, pollCtx.Err())
			}
			return file, err
		}
		file = next
		delay = min(delay*2, c.cfg.PollMaxInterval)
	}
}

func (c *Client) pollError(parent context.Context, file File, err error) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "gemini", "wait for file",
			fmt.Sprintf("%s still %s after %s", file.Name, file.State, c.cfg.PollTimeout), nil)
	}
	return services.Wrap(services.ErrTransient, "gemini", "wait for file", file.Name, err)
}

func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
