// Package shbin provides a Pure Go assembler for PICA200 vertex and
// geometry shaders.
//
// shbin translates shader assembly text into a DVLB container ("shbin"
// file): one shared program section plus one entry-point section per
// shader stage.
//
// Example usage:
//
//	source := `
//	.out o0, result.position, 0xf
//	.opdesc xyzw, xyzw
//	main:
//	    mov o0, v0 (0x0)
//	    end
//	endmain:
//	.vsh main, endmain
//	`
//	data, err := shbin.Assemble(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Assembly errors carry line and column information. Use errors.As with
// asm.SourceErrors to get every diagnostic and FormatAll for caret context.
//
// The lower-level packages are usable on their own: isa encodes and decodes
// single instruction words, dvl builds and parses containers, and asm runs
// the two-pass assembly over any asm.Source.
package shbin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gogpu/shbin/asm"
	"github.com/gogpu/shbin/dvl"
)

// Options configures assembly.
type Options struct {
	// MaxErrors stops assembly after this many diagnostics (0: unlimited)
	MaxErrors int

	// Logger receives debug pass summaries (default: no-op)
	Logger *zap.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		MaxErrors: 0,
		Logger:    zap.NewNop(),
	}
}

// Assemble assembles shader source to a DVLB container using default options.
func Assemble(source string) ([]byte, error) {
	return AssembleWithOptions(source, DefaultOptions())
}

// AssembleWithOptions assembles shader source to a DVLB container with
// custom options.
func AssembleWithOptions(source string, opts Options) ([]byte, error) {
	return assembleSource(asm.NewStringSource("<input>", source), opts)
}

// AssembleFile assembles the shader source file at path. The file is read
// once per assembly pass.
func AssembleFile(path string, opts Options) ([]byte, error) {
	return assembleSource(asm.FileSource{Path: path}, opts)
}

// Build runs both assembly passes over src and returns the resolved
// container without serializing it.
func Build(src asm.Source, opts Options) (*dvl.Container, error) {
	session := asm.NewSession(src, asm.Options{
		MaxErrors: opts.MaxErrors,
		Logger:    opts.Logger,
	})
	c, err := session.Run()
	if err != nil {
		return nil, fmt.Errorf("assembly error: %w", err)
	}
	return c, nil
}

// Decode parses a DVLB container.
func Decode(data []byte) (*dvl.Container, error) {
	c, err := dvl.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return c, nil
}

func assembleSource(src asm.Source, opts Options) ([]byte, error) {
	c, err := Build(src, opts)
	if err != nil {
		return nil, err
	}
	data := c.Encode()
	if opts.Logger != nil {
		opts.Logger.Debug("container encoded",
			zap.String("source", src.Name()),
			zap.Int("bytes", len(data)),
			zap.Int("entries", len(c.Entries)),
		)
	}
	return data, nil
}
