package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gogpu/shbin/dvl"
	"github.com/gogpu/shbin/isa"
)

// Source provides the assembly text. It is opened once per pass.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// StringSource is an in-memory Source.
type StringSource struct {
	name string
	text string
}

// NewStringSource creates a Source over text.
func NewStringSource(name, text string) *StringSource {
	return &StringSource{name: name, text: text}
}

// Name returns the source name used in diagnostics.
func (s *StringSource) Name() string { return s.name }

// Open returns a reader over the text.
func (s *StringSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.text)), nil
}

// FileSource reads the assembly text from a file.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (f FileSource) Name() string { return f.Path }

// Open opens the file.
func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Options configures a Session.
type Options struct {
	// MaxErrors stops assembly once this many errors are collected.
	// Zero means no limit.
	MaxErrors int

	// Logger receives debug-level pass summaries. Nil disables logging.
	Logger *zap.Logger
}

const (
	passLabels = 1 // directives and labels
	passCode   = 2 // instructions
)

// Session assembles one source into one container. A Session is single-use.
type Session struct {
	src  Source
	opts Options
	log  *zap.Logger

	container *dvl.Container
	vertex    *dvl.EntryPoint
	vsh, gsh  *entryDecl

	errs SourceErrors
	used bool
}

// NewSession creates an assembly session for src.
func NewSession(src Source, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		src:       src,
		opts:      opts,
		log:       log.With(zap.String("source", src.Name())),
		container: dvl.NewContainer(),
		vertex:    dvl.NewEntryPoint(dvl.StageVertex),
	}
}

// Run performs both passes and resolves the entry points. Assembly errors
// are returned together as SourceErrors ordered by line; I/O errors are
// returned as is.
// No container is returned when any error occurred.
func (s *Session) Run() (*dvl.Container, error) {
	if s.used {
		return nil, ErrSessionUsed
	}
	s.used = true

	if err := s.runPass(passLabels); err != nil {
		return nil, err
	}
	s.log.Debug("label pass complete",
		zap.Uint32("code_words", s.container.Program.CodeLength()),
		zap.Int("labels", len(s.vertex.Labels)),
		zap.Int("constants", len(s.vertex.Constants)),
		zap.Int("opdescs", len(s.container.Program.Opdescs)),
		zap.Int("errors", s.errs.Len()),
	)
	s.container.Program.ClearCode()

	if !s.full() {
		if err := s.runPass(passCode); err != nil {
			return nil, err
		}
		s.log.Debug("code pass complete",
			zap.Uint32("code_words", s.container.Program.CodeLength()),
			zap.Int("errors", s.errs.Len()),
		)
	}

	if !s.errs.HasErrors() {
		s.resolveEntries()
	}
	if s.errs.HasErrors() {
		sort.SliceStable(s.errs, func(i, j int) bool {
			return s.errs[i].Span.Start.Line < s.errs[j].Span.Start.Line
		})
		return nil, s.errs
	}
	return s.container, nil
}

// Errors returns the diagnostics collected so far.
func (s *Session) Errors() SourceErrors {
	return s.errs
}

func (s *Session) runPass(pass int) (err error) {
	rc, err := s.src.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", s.src.Name(), err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for n := 1; scanner.Scan() && !s.full(); n++ {
		s.processLine(pass, n, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.src.Name(), err)
	}
	return nil
}

func (s *Session) processLine(pass, n int, text string) {
	l, err := lexLine(n, text)
	if err != nil {
		if pass == passLabels {
			s.fail(l, l.NameCol, err)
		}
		return
	}

	if l.Label != "" && pass == passLabels {
		if _, err := s.vertex.AddLabel(l.Label, s.container.Program.CodeLength()); err != nil {
			s.fail(l, l.LabelCol, errorf(isa.KindDuplicate, "%v", err))
		}
	}

	switch l.Kind {
	case StmtDirective:
		if pass == passLabels {
			s.directive(l)
		}
	case StmtInstruction:
		s.instruction(pass, l)
	}
}

func (s *Session) directive(l Line) {
	fn, ok := directives[l.Name]
	if !ok {
		s.fail(l, l.NameCol, errorf(isa.KindUnknownSymbol, ".%s: no such directive", l.Name))
		return
	}
	args, err := splitArgs(l.Args)
	if err == nil {
		err = fn(s, l, args)
	}
	if err != nil {
		s.fail(l, l.NameCol, err)
	}
}

// instruction encodes one instruction. In the label pass every statement
// occupies one word so labels get their final offsets; failures there are
// reported by the code pass.
func (s *Session) instruction(pass int, l Line) {
	m, ok := isa.Lookup(l.Name)
	if !ok {
		if pass == passCode {
			s.fail(l, l.NameCol, errorf(isa.KindUnknownSymbol, "%s: no such instruction", l.Name))
		}
		s.container.Program.AddInstruction(0)
		return
	}

	var labels isa.Labels = s.vertex
	if pass == passLabels {
		labels = lenientLabels{s.vertex}
	}
	word, err := isa.Encode(m, l.Args, labels)
	if err != nil && pass == passCode {
		s.fail(l, l.NameCol, err)
	}
	s.container.Program.AddInstruction(word)
}

// lenientLabels resolves labels not yet declared to address 0.
type lenientLabels struct {
	isa.Labels
}

func (l lenientLabels) LabelAddress(name string) (uint32, bool) {
	addr, _ := l.Labels.LabelAddress(name)
	return addr, true
}

// resolveEntries sets the main range of the vertex entry point and derives
// the geometry entry point when one was declared.
func (s *Session) resolveEntries() {
	if s.vsh == nil {
		s.errs.Add(&SourceError{
			Kind:    isa.KindUnresolvedLabel,
			Message: "no .vsh entry point declared",
			Span:    Span{Source: s.src.Name()},
		})
		return
	}
	s.resolveEntry(s.vertex, s.vsh)
	s.container.AddEntryPoint(s.vertex)

	if s.gsh != nil {
		geometry := s.vertex.Derive(dvl.StageGeometry)
		s.resolveEntry(geometry, s.gsh)
		s.container.AddEntryPoint(geometry)
	}
	s.log.Debug("entry points resolved", zap.Int("entries", len(s.container.Entries)))
}

func (s *Session) resolveEntry(e *dvl.EntryPoint, decl *entryDecl) {
	var ok bool
	if e.Main, ok = e.LabelAddress(decl.main); !ok {
		s.fail(decl.line, decl.line.ArgsCol, errorf(isa.KindUnresolvedLabel, "undefined label %q", decl.main))
	}
	if e.EndMain, ok = e.LabelAddress(decl.end); !ok {
		s.fail(decl.line, decl.line.ArgsCol, errorf(isa.KindUnresolvedLabel, "undefined label %q", decl.end))
	}
}

func (s *Session) fail(l Line, col int, err error) {
	if s.full() {
		return
	}
	s.errs.Add(newSourceError(s.src.Name(), l, col, err))
}

func (s *Session) full() bool {
	return s.opts.MaxErrors > 0 && s.errs.Len() >= s.opts.MaxErrors
}
