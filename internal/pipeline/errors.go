// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidArguments indicates an unusable input or output path,
// detected before any external tool is invoked.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrMetadataMissing indicates the metadata tool did not produce a
// usable page count. A missing outline is tolerated; a missing page
// count is not, since every later stage is sized by it.
var ErrMetadataMissing = errors.New("page count missing from metadata output")

// FSError marks a failure to create, write, or move a local file or
// directory on behalf of the job.
type FSError struct {
	Op  string
	Err error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("filesystem error: %s: %v", e.Op, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }

// StageError attributes a fatal failure to the stage that produced it.
// The underlying error keeps the tool's diagnostic text verbatim so the
// caller can surface it for troubleshooting.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
