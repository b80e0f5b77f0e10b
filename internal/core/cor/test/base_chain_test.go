// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor_test exercises the chain-of-responsibility primitives that
// the generation workflow is built on: output-to-input piping between
// commands, error short-circuiting, and the shared context state.
package cor_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-prompt-studio/internal/core/cor"
	"github.com/zeebo/assert"
)

// appendCommand is a minimal command for testing the pipeline mechanics.
// It reads a string from its input parameter, appends its suffix, and
// writes the result to its output parameter. When fail is set it records
// an error instead.
type appendCommand struct {
	cor.BaseCommand
	suffix string
	fail   bool
	ran    bool
}

func newAppendCommand(name string, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(context cor.Context) {
	c.ran = true
	if c.fail {
		context.AddError(c.GetName(), fmt.Errorf("command %s failed", c.GetName()))
		return
	}
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

// TestChainPipesOutputToInput verifies the flip-flop at the heart of the
// chain: each command's output becomes the next command's input, and the
// final output is available under the standard output key.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("piping")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, "seed")

	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	// The last command's output was flipped to CtxIn after the loop.
	assert.Equal(t, "seed-a-b", chCtx.Get(cor.CtxIn))
	assert.Nil(t, chCtx.Get(cor.CtxOut))
}

// TestChainStopsOnError verifies that a failing command halts the chain
// before later commands run, and that the failure is recorded under the
// failing command's name.
func TestChainStopsOnError(t *testing.T) {
	first := newAppendCommand("first", "-a")
	first.fail = true
	second := newAppendCommand("second", "-b")

	chain := cor.NewBaseChain("short-circuit")
	chain.AddCommand(first)
	chain.AddCommand(second)

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, "seed")

	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.True(t, first.ran)
	assert.False(t, second.ran)
	assert.NotNil(t, chCtx.GetErrors()["first"])
}

// tickCommand records that it ran. It needs no input, so it stays
// executable even after an earlier command failed and left the pipeline
// empty.
type tickCommand struct {
	cor.BaseCommand
	ran bool
}

func (c *tickCommand) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil
}

func (c *tickCommand) Execute(_ cor.Context) {
	c.ran = true
}

// TestChainContinueOnFailure verifies that a chain configured with
// ContinueOnFailure keeps running commands after a failure.
func TestChainContinueOnFailure(t *testing.T) {
	first := newAppendCommand("first", "-a")
	first.fail = true
	second := &tickCommand{BaseCommand: *cor.NewBaseCommand("second")}

	chain := cor.NewBaseChain("lenient")
	chain.ContinueOnFailure(true)
	chain.AddCommand(first)
	chain.AddCommand(second)

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())
	chCtx.Add(cor.CtxIn, "seed")

	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.True(t, second.ran)
}

// TestChainSkipsNonExecutableCommand verifies the precondition check: a
// command whose input is missing is skipped rather than executed.
func TestChainSkipsNonExecutableCommand(t *testing.T) {
	command := newAppendCommand("needs-input", "-a")

	chain := cor.NewBaseChain("preconditions")
	chain.AddCommand(command)

	chCtx := cor.NewBaseContext()
	chCtx.SetContext(context.Background())

	chain.Execute(chCtx)

	assert.False(t, command.ran)
	assert.False(t, chCtx.HasErrors())
}

// TestContextState verifies the property-bag behavior of the shared
// context: add, get, remove, and error collection.
func TestContextState(t *testing.T) {
	chCtx := cor.NewBaseContext()
	chCtx.Add("key", "value").Add("other", 42)

	assert.Equal(t, "value", chCtx.Get("key"))
	assert.Equal(t, 42, chCtx.Get("other"))
	assert.Nil(t, chCtx.Get("missing"))

	chCtx.Remove("key")
	assert.Nil(t, chCtx.Get("key"))

	assert.False(t, chCtx.HasErrors())
	chCtx.AddError("step", fmt.Errorf("boom"))
	assert.True(t, chCtx.HasErrors())
}
