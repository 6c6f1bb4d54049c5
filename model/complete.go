package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studybuddy/tutormesh/core"
)

// ErrEmptyResponse is returned by Complete when the model produced no text.
var ErrEmptyResponse = errors.New("empty response")

// Complete drives m to completion and returns the final text. Partial chunks
// are concatenated when the model never emits a final response. Any provider
// failure, panic or empty reply is reported as core.ErrBackendUnavailable.
func Complete(ctx context.Context, m Model, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = core.NewError(core.ErrBackendUnavailable, "model.complete", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", core.NewError(core.ErrBackendUnavailable, "model.complete", err)
	}

	respCh, errCh := m.Generate(ctx, req)

	var (
		final    string
		gotFinal bool
		partial  strings.Builder
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", core.NewError(core.ErrBackendUnavailable, "model.complete", ctx.Err())
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				partial.WriteString(resp.Text)
				continue
			}
			final, gotFinal = resp.Text, true
		case genErr, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if genErr != nil {
				return "", core.NewError(core.ErrBackendUnavailable, "model.complete", genErr)
			}
		}
	}

	if !gotFinal {
		final = partial.String()
	}
	if strings.TrimSpace(final) == "" {
		return "", core.NewError(core.ErrBackendUnavailable, "model.complete", ErrEmptyResponse)
	}
	return final, nil
}
