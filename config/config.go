// Package config loads slicebench workload files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Allocator kinds.
const (
	AllocatorGo    = "go"
	AllocatorPool  = "pool"
	AllocatorArena = "arena"
	AllocatorLimit = "limit"
)

// Operation kinds.
const (
	OpAppend      = "append"
	OpFrontAppend = "front_append"
	OpPop         = "pop"
	OpFrontPop    = "front_pop"
	OpResize      = "resize"
	OpSet         = "set"
	OpGet         = "get"
)

var (
	validAllocators = map[string]bool{
		AllocatorGo: true, AllocatorPool: true, AllocatorArena: true,
		AllocatorLimit: true,
	}
	validOps = map[string]bool{
		OpAppend: true, OpFrontAppend: true, OpPop: true, OpFrontPop: true,
		OpResize: true, OpSet: true, OpGet: true,
	}
	validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid workload")

// Workload describes a scripted run against one container.
type Workload struct {
	Name            string      `yaml:"name"`
	Allocator       string      `yaml:"allocator"`
	InitialCapacity int         `yaml:"initial_capacity"`
	LimitElements   int         `yaml:"limit_elements"`
	ArenaBlock      int         `yaml:"arena_block"`
	Seed            int64       `yaml:"seed"`
	LogLevel        string      `yaml:"log_level"`
	Metrics         bool        `yaml:"metrics"`
	Operations      []Operation `yaml:"operations"`
}

// Operation is one step of a workload. Count repeats the step; Size is the
// target length for resize; Index addresses set and get.
type Operation struct {
	Op    string `yaml:"op"`
	Count int    `yaml:"count"`
	Size  int    `yaml:"size"`
	Index int    `yaml:"index"`
}

// Default returns a small mixed workload.
func Default() *Workload {
	return &Workload{
		Name:            "default",
		Allocator:       AllocatorGo,
		InitialCapacity: 16,
		Seed:            1,
		LogLevel:        "info",
		Operations: []Operation{
			{Op: OpAppend, Count: 1000},
			{Op: OpFrontAppend, Count: 10},
			{Op: OpPop, Count: 100},
			{Op: OpFrontPop, Count: 10},
			{Op: OpResize, Count: 1, Size: 64},
		},
	}
}

// Load reads and validates the workload file at path.
func Load(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return w, nil
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Workload, error) {
	w := &Workload{}
	if err := yaml.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	w.applyDefaults()
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workload) applyDefaults() {
	d := Default()
	if w.Name == "" {
		w.Name = d.Name
	}
	if w.Allocator == "" {
		w.Allocator = d.Allocator
	}
	w.Allocator = strings.ToLower(w.Allocator)
	if w.LogLevel == "" {
		w.LogLevel = d.LogLevel
	}
	w.LogLevel = strings.ToLower(w.LogLevel)
	if w.Seed == 0 {
		w.Seed = d.Seed
	}
	for i := range w.Operations {
		w.Operations[i].Op = strings.ToLower(w.Operations[i].Op)
		if w.Operations[i].Count == 0 {
			w.Operations[i].Count = 1
		}
	}
}

// Validate reports every problem in the workload at once.
func (w *Workload) Validate() error {
	var errs *multierror.Error
	if !validAllocators[w.Allocator] {
		errs = multierror.Append(errs, fmt.Errorf("%w: unknown allocator %q", ErrInvalid, w.Allocator))
	}
	if w.InitialCapacity < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: initial_capacity must not be negative", ErrInvalid))
	}
	if w.Allocator == AllocatorLimit && w.LimitElements <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: limit_elements must be positive for the limit allocator", ErrInvalid))
	}
	if w.ArenaBlock < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: arena_block must not be negative", ErrInvalid))
	}
	if !validLevels[w.LogLevel] {
		errs = multierror.Append(errs, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, w.LogLevel))
	}
	if len(w.Operations) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: no operations", ErrInvalid))
	}
	for i, op := range w.Operations {
		if !validOps[op.Op] {
			errs = multierror.Append(errs, fmt.Errorf("%w: operations[%d]: unknown op %q", ErrInvalid, i, op.Op))
			continue
		}
		if op.Count < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%w: operations[%d]: count must not be negative", ErrInvalid, i))
		}
		if op.Op == OpResize && op.Size < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%w: operations[%d]: size must not be negative", ErrInvalid, i))
		}
		if (op.Op == OpSet || op.Op == OpGet) && op.Index < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%w: operations[%d]: index must not be negative", ErrInvalid, i))
		}
	}
	return errs.ErrorOrNil()
}

// Marshal encodes the workload as YAML.
func (w *Workload) Marshal() ([]byte, error) {
	return yaml.Marshal(w)
}
