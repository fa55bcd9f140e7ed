package smrender

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// ErrMalformed is returned when an element could not be bounded (an
// unclosed tag, or a tag too large to fit the read buffer).
var ErrMalformed = errors.New("smrender: malformed xml element")

// mmapPages is the number of pages advised/released per block, mirroring
// the original libhpxml.c's MMAP_PAGES tuning knob.
const mmapPages = 64

// sourceMode selects how a Parser's backing bytes are obtained.
type sourceMode int

const (
	modeBuffer sourceMode = iota
	modeReader
	modeMmap
)

// Parser is the HPX pull parser's control block: it scans one XML
// element at a time out of a byte source — a caller-owned buffer, a
// refilling io.Reader, or an mmapped file region — without building a
// DOM. It is not safe for concurrent use by multiple goroutines.
type Parser struct {
	mode sourceMode

	buf []byte // current readable window [0:fill)
	pos int    // read cursor into buf
	fill int   // valid bytes in buf

	line  int
	inTag bool
	// lastOpen is the most recently opened element's name, used to
	// decide whether a literal immediately preceding a close tag should
	// be taken verbatim (no trimming).
	lastOpen string

	// reader mode
	r         io.Reader
	chunkSize int
	readEOF   bool

	// mmap mode
	f        *os.File
	mapped   []byte
	pageSize int
	blockLen int
	advised  int // offset up to which WILLNEED has been issued
	released int // offset up to which DONTNEED has been issued
}

// NewBufferParser creates a Parser reading from a pre-owned, already
// fully available in-memory buffer. The buffer is not copied.
func NewBufferParser(data []byte) *Parser {
	return &Parser{
		mode: modeBuffer,
		buf:  data,
		fill: len(data),
		line: 1,
	}
}

// NewReaderParser creates a Parser that refills an internal buffer of
// the given chunk size from r as needed.
func NewReaderParser(r io.Reader, chunkSize int) *Parser {
	if chunkSize <= 0 {
		chunkSize = 65536
	}
	return &Parser{
		mode:      modeReader,
		r:         r,
		chunkSize: chunkSize,
		buf:       make([]byte, 0, chunkSize*2),
		line:      1,
	}
}

// NewMmapParser maps the first n bytes of f read-only and private, and
// returns a Parser scanning that region. Callers must Close the Parser
// when done to release the mapping.
func NewMmapParser(f *os.File, n int) (*Parser, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	pageSize := os.Getpagesize()
	p := &Parser{
		mode:     modeMmap,
		f:        f,
		mapped:   data,
		buf:      data,
		fill:     len(data),
		line:     1,
		pageSize: pageSize,
		blockLen: pageSize * mmapPages,
	}
	first := p.blockLen
	if first > len(data) {
		first = len(data)
	}
	_ = unix.Madvise(data[:first], unix.MADV_WILLNEED)
	p.advised = first
	return p, nil
}

// Close releases resources held by the parser (the mmap region, if
// any). It is a no-op for buffer and reader mode parsers.
func (p *Parser) Close() error {
	if p.mode == modeMmap && p.mapped != nil {
		err := unix.Munmap(p.mapped)
		p.mapped = nil
		return err
	}
	return nil
}

// Lineno reports the 1-based line number at the current read position,
// i.e. just past the most recently returned element. The line an element
// started on is returned by NextElement and carried in Token.Line.
func (p *Parser) Lineno() int {
	return p.line
}

// Pos reports the read cursor's byte offset into the parser's current
// buffer, for progress reporting (see loader.go's SIGUSR1 handling). For
// buffer and mmap parsers this is the offset into the source; a reader
// parser compacts its buffer on refill, so there the value is relative to
// the retained window and is not an absolute source offset.
func (p *Parser) Pos() int64 {
	return int64(p.pos)
}

// adviseWindow issues madvise hints as the read cursor crosses block
// boundaries in mmap mode: WILLNEED for the upcoming block, DONTNEED for
// the one just finished. This is purely an optimization hint.
func (p *Parser) adviseWindow() {
	if p.mode != modeMmap || p.blockLen == 0 {
		return
	}
	for p.pos >= p.advised && p.advised < len(p.mapped) {
		end := p.advised + p.blockLen
		if end > len(p.mapped) {
			end = len(p.mapped)
		}
		_ = unix.Madvise(p.mapped[p.advised:end], unix.MADV_WILLNEED)
		prevStart := p.advised - p.blockLen
		if prevStart >= p.released {
			_ = unix.Madvise(p.mapped[p.released:p.advised], unix.MADV_DONTNEED)
			p.released = p.advised
		}
		p.advised = end
	}
}

// ensure makes at least n more bytes available past pos, refilling from
// the underlying reader in reader mode. It returns false if fewer than n
// bytes will ever be available (EOF reached first).
func (p *Parser) ensure(n int) bool {
	if p.fill-p.pos >= n {
		return true
	}
	if p.mode != modeReader {
		return p.fill-p.pos >= n
	}
	for p.fill-p.pos < n {
		if p.readEOF {
			return false
		}
		// compact: drop already-consumed bytes
		if p.pos > 0 {
			copy(p.buf[0:], p.buf[p.pos:p.fill])
			p.fill -= p.pos
			p.pos = 0
		}
		if cap(p.buf)-p.fill < p.chunkSize {
			grown := make([]byte, p.fill, cap(p.buf)+p.chunkSize)
			copy(grown, p.buf[:p.fill])
			p.buf = grown
		}
		p.buf = p.buf[:cap(p.buf)]
		read, err := p.r.Read(p.buf[p.fill:cap(p.buf)])
		p.buf = p.buf[:p.fill+read]
		if read > 0 {
			p.fill += read
		}
		if err != nil {
			p.readEOF = true
			if err != io.EOF && read == 0 {
				return false
			}
		}
		if read == 0 && p.readEOF {
			return p.fill-p.pos >= n
		}
	}
	return true
}

func (p *Parser) peekAt(off int) (byte, bool) {
	if !p.ensure(off + 1) {
		return 0, false
	}
	return p.buf[p.pos+off], true
}

func (p *Parser) countNewlines(from, to int) {
	for i := from; i < to; i++ {
		if p.buf[p.pos+i] == '\n' {
			p.line++
		}
	}
}

// rawElement scans the next complete element span: either a full markup
// construct beginning with '<' and ending at its matching '>' (tags,
// instructions, comments, CDATA, doctype), or a run of literal text up
// to the next '<'. It returns the span as a BString aliasing the
// parser's buffer, or ok=false at end of input.
func (p *Parser) rawElement() (BString, bool, error) {
	b0, ok := p.peekAt(0)
	if !ok {
		return BString{}, false, nil
	}

	if b0 != '<' {
		// literal: scan until next '<' or EOF
		i := 0
		for {
			c, ok := p.peekAt(i)
			if !ok || c == '<' {
				break
			}
			i++
		}
		start := p.pos
		p.countNewlines(0, i)
		p.pos += i
		return NewBString(p.buf, start, i), true, nil
	}

	// markup: find matching '>' honoring comment/CDATA terminators
	terminator := ">"
	if c1, ok := p.peekAt(1); ok && c1 == '!' {
		if p.matchAt(1, "!--") {
			terminator = "-->"
		} else if p.matchAt(1, "![CDATA[") {
			terminator = "]]>"
		}
	}

	end := p.findTerminator(terminator)
	if end < 0 {
		return BString{}, false, ErrMalformed
	}
	start := p.pos
	span := end + len(terminator)
	p.countNewlines(0, span)
	p.pos += span
	return NewBString(p.buf, start, span), true, nil
}

// matchAt reports whether the literal s occurs at offset off from pos.
func (p *Parser) matchAt(off int, s string) bool {
	if !p.ensure(off + len(s)) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if p.buf[p.pos+off+i] != s[i] {
			return false
		}
	}
	return true
}

// findTerminator returns the offset (from pos) at which term begins, or
// -1 if it never appears before EOF.
func (p *Parser) findTerminator(term string) int {
	i := 0
	for {
		if !p.matchAt(i, term) {
			if _, ok := p.peekAt(i); !ok {
				return -1
			}
			i++
			continue
		}
		return i
	}
}

// NextElement returns the next raw element span along with the in_tag
// flag (true if the span is markup, false if literal) and the line
// number the span started on. It returns ok=false at end of input.
func (p *Parser) NextElement() (span BString, isTag bool, lineno int, ok bool, err error) {
	lineno = p.line
	span, ok, err = p.rawElement()
	if !ok || err != nil {
		return
	}
	isTag = span.Len() > 0 && span.Bytes()[0] == '<'
	p.inTag = isTag
	p.adviseWindow()
	return
}
